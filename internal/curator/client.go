package curator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/model"
	"github.com/Veraticus/depressurize/internal/service"
)

// DefaultBaseURL is the Steam store origin.
const DefaultBaseURL = "https://store.steampowered.com"

// maxPages bounds the number of pages read for one curator.
const maxPages = 500

// Config configures a Client.
type Config struct {
	Logger            *slog.Logger
	BaseURL           string
	Retry             service.RetryOptions
	Timeout           time.Duration
	PageSize          int
	RequestsPerMinute int
}

// Client fetches curator recommendations from the Steam store.
type Client struct {
	httpClient *http.Client
	limiter    *rateLimiter
	logger     *slog.Logger
	baseURL    string
	retry      service.RetryOptions
	pageSize   int
}

// NewClient creates a Client, filling unset options with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		pageSize: cfg.PageSize,
		retry:    cfg.Retry,
		limiter:  newRateLimiter(cfg.RequestsPerMinute),
		logger:   cfg.Logger,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// pageResponse is one page of the filtered recommendations endpoint.
type pageResponse struct {
	ResultsHTML string `json:"results_html"`
	Success     int    `json:"success"`
	TotalCount  int    `json:"total_count"`
}

// FetchRecommendations returns every recommendation the curator has published.
func (c *Client) FetchRecommendations(ctx context.Context, curatorID int64) (map[int]model.CuratorRecommendation, error) {
	if curatorID <= 0 {
		return nil, fmt.Errorf("invalid curator id %d", curatorID)
	}

	recs := make(map[int]model.CuratorRecommendation)
	for start, page := 0, 0; page < maxPages; page++ {
		var resp *pageResponse
		err := common.WithRetry(ctx, func() error {
			var fetchErr error
			resp, fetchErr = c.fetchPage(ctx, curatorID, start)
			return fetchErr
		}, c.retry)
		if err != nil {
			return nil, fmt.Errorf("curator %d page at %d: %w", curatorID, start, err)
		}

		found, err := parseRecommendations(resp.ResultsHTML)
		if err != nil {
			return nil, fmt.Errorf("curator %d page at %d: %w", curatorID, start, err)
		}
		for id, rec := range found {
			recs[id] = rec
		}

		c.logger.Debug("Fetched curator page",
			"curator_id", curatorID,
			"start", start,
			"found", len(found),
			"total", resp.TotalCount)

		start += c.pageSize
		if len(found) == 0 || start >= resp.TotalCount {
			break
		}
	}

	return recs, nil
}

func (c *Client) pageURL(curatorID int64, start int) string {
	q := url.Values{}
	q.Set("query", "")
	q.Set("start", strconv.Itoa(start))
	q.Set("count", strconv.Itoa(c.pageSize))
	return fmt.Sprintf("%s/curator/%d/ajaxgetfilteredrecommendations/render/?%s", c.baseURL, curatorID, q.Encode())
}

func (c *Client) fetchPage(ctx context.Context, curatorID int64, start int) (*pageResponse, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return nil, &common.RetryableError{Err: err, Retryable: false}
	}

	pageURL := c.pageURL(curatorID, start)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("failed to create request: %w", err), Retryable: false}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("request failed: %w: %w", common.ErrSteamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &common.HTTPStatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnexpectedReply, err)
	}
	if page.Success != 1 {
		return nil, fmt.Errorf("%w: success=%d", common.ErrUnexpectedReply, page.Success)
	}
	return &page, nil
}
