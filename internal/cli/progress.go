package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// Progress renders a progress bar per AutoCat rule run.
type Progress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewProgress creates a Progress writing to w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{writer: w}
}

// Start begins a bar for rule over total games. Empty runs draw nothing.
func (p *Progress) Start(rule string, total int) {
	if total <= 0 {
		p.bar = nil
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]%s[reset]", rule)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Advance moves the bar forward by n games.
func (p *Progress) Advance(n int) {
	if p.bar == nil {
		return
	}
	if err := p.bar.Add(n); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar and ends its line.
func (p *Progress) Finish() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		slog.Warn("Failed to write newline after progress bar", "error", err)
	}
	p.bar = nil
}
