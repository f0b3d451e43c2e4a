package drive

import (
	"context"
	"time"

	models "dropzone/internal/domain/models/drive"
)

// ProgressTask simulates an upload by advancing progress in fixed steps.
// The cancel signal (ctx) is checked at every suspension point, so a
// cancelled task never reports progress again.
type ProgressTask struct {
	Step     int
	Interval time.Duration

	// OnProgress is called after every tick with the new progress value.
	// Returning an error stops the task with that error.
	OnProgress func(progress int) error
}

// Run reports 0, Step, 2*Step, ... up to 100, waiting Interval before each
// report. It returns ctx.Err() when cancelled.
func (t *ProgressTask) Run(ctx context.Context) error {
	step := t.Step
	if step <= 0 {
		step = models.ProgressMax
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	progress := models.ProgressMin
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		// Both channels may be ready at once; cancellation wins
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := t.OnProgress(progress); err != nil {
			return err
		}
		if progress == models.ProgressMax {
			return nil
		}
		progress = models.ClampProgress(progress + step)
	}
}
