// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress reports pipeline completion counts. The pipeline sees
// only the Reporter interface; the CLI wires in a terminal tracker.
package progress

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// Reporter receives monotonically increasing completed-count updates.
// Purely observational; implementations must not fail.
type Reporter interface {
	Increment(n int64)
}

// Null discards all updates.
type Null struct{}

func (Null) Increment(int64) {}

// Tracker renders a terminal progress bar for one pipeline phase.
type Tracker struct {
	writer  progress.Writer
	tracker *progress.Tracker
}

// NewTracker starts rendering a bar with the given message and total on
// out. Call Done when the phase finishes.
func NewTracker(message string, total int64, out io.Writer) *Tracker {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetTrackerLength(25)
	pw.SetUpdateFrequency(250 * time.Millisecond)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.Style().Visibility.ETA = true

	tr := &progress.Tracker{Message: message, Total: total, Units: progress.UnitsDefault}
	pw.AppendTracker(tr)
	go pw.Render()

	return &Tracker{writer: pw, tracker: tr}
}

// Increment advances the bar by n completed items.
func (t *Tracker) Increment(n int64) {
	t.tracker.Increment(n)
}

// Done marks the bar complete and stops the renderer.
func (t *Tracker) Done() {
	t.tracker.MarkAsDone()
	t.writer.Stop()
	for t.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
