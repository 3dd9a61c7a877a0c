package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/desertthunder/iptvx/internal/shared"
	"github.com/desertthunder/iptvx/internal/source"
	"github.com/desertthunder/iptvx/internal/tasks"
	"golang.org/x/time/rate"
)

// ProgressBar renders engine progress to a terminal line.
type ProgressBar struct {
	w       io.Writer
	bar     progress.Model
	limiter rate.Sometimes
	last    tasks.ProgressUpdate
	drawn   bool
}

// NewProgressBar creates a [ProgressBar] that redraws at most once per interval.
// The first and the final download updates are always drawn.
func NewProgressBar(w io.Writer, interval time.Duration) *ProgressBar {
	return &ProgressBar{
		w:       w,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		limiter: rate.Sometimes{First: 1, Interval: interval},
	}
}

// Handle consumes a single update.
func (p *ProgressBar) Handle(u tasks.ProgressUpdate) {
	if u.Phase != tasks.Download {
		p.Finish()
		if u.Message != "" {
			fmt.Fprintln(p.w, Muted(u.Message))
		}
		return
	}

	p.last = u
	if u.Total > 0 && u.Received >= u.Total {
		p.draw()
		return
	}
	p.limiter.Do(p.draw)
}

// Consume handles updates until ch is closed.
func (p *ProgressBar) Consume(ch <-chan tasks.ProgressUpdate) {
	for u := range ch {
		p.Handle(u)
	}
	p.Finish()
}

// Finish redraws the latest state and ends the progress line.
func (p *ProgressBar) Finish() {
	if !p.drawn {
		return
	}
	p.draw()
	fmt.Fprintln(p.w)
	p.drawn = false
}

func (p *ProgressBar) draw() {
	fmt.Fprintf(p.w, "\r%s", p.line())
	p.drawn = true
}

func (p *ProgressBar) line() string {
	fraction := source.Progress{Received: p.last.Received, Total: p.last.Total}.Fraction()
	if fraction < 0 {
		return fmt.Sprintf("downloaded %s", shared.FormatBytes(p.last.Received))
	}
	return fmt.Sprintf("%s %s / %s", p.bar.ViewAs(fraction), shared.FormatBytes(p.last.Received), shared.FormatBytes(p.last.Total))
}
