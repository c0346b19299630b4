// Package storage provides the SQLite persistence layer for game metadata.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/depressurize/internal/model"
)

// Validation errors.
var (
	ErrNilContext            = errors.New("context cannot be nil")
	ErrEmptyString           = errors.New("string parameter cannot be empty")
	ErrNilParameter          = errors.New("parameter cannot be nil")
	ErrEmptySlice            = errors.New("slice cannot be empty")
	ErrInvalidGameID         = errors.New("invalid game id")
	ErrInvalidMetadata       = errors.New("invalid game metadata")
	ErrInvalidRecommendation = errors.New("invalid curator recommendation")
	ErrUnsupportedFormat     = errors.New("unsupported metadata file format")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateGameID(id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidGameID, id)
	}
	return nil
}

// validateMetadataList validates a batch of metadata entries.
func validateMetadataList(entries []model.GameMetadata) error {
	if entries == nil {
		return fmt.Errorf("%w: entries", ErrNilParameter)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: entries", ErrEmptySlice)
	}
	for i := range entries {
		if err := validateMetadata(&entries[i]); err != nil {
			return fmt.Errorf("entry at index %d: %w", i, err)
		}
	}
	return nil
}

func validateMetadata(m *model.GameMetadata) error {
	if m == nil {
		return fmt.Errorf("%w: metadata", ErrNilParameter)
	}
	if m.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrInvalidMetadata, m.ID)
	}
	if m.ReviewPositivePercentage < 0 || m.ReviewPositivePercentage > 100 {
		return fmt.Errorf("%w: review percentage %d out of range", ErrInvalidMetadata, m.ReviewPositivePercentage)
	}
	if m.ReviewTotal < 0 || m.HltbMain < 0 || m.HltbExtras < 0 || m.HltbCompletionist < 0 {
		return fmt.Errorf("%w: negative count for game %d", ErrInvalidMetadata, m.ID)
	}
	return nil
}
