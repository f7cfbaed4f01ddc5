// Package batch drives resumable, idempotent batch scans.
//
// A step processes one page of rows whose primary key is >= the cursor and
// reports where the next page starts. Steps are written so that touching a
// row twice is a no-op, which lets a scan restart from 0 after a crash
// without double-applying anything.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Step processes one page starting at cursor and returns the cursor for
// the next page. Returning 0 means there is no more work; returning an
// error aborts the whole invocation and discards the in-flight cursor.
type Step func(ctx context.Context, cursor int) (next int, err error)

// Job is a named batch scan with a single-process reentrancy guard: if a
// scheduled trigger fires while the previous run is still going, the new
// trigger is skipped entirely. The guard does not coordinate across
// service instances; multi-instance deployments need an external lock
// instead of it.
type Job struct {
	name    string
	step    Step
	running atomic.Bool
}

func NewJob(name string, step Step) *Job {
	return &Job{name: name, step: step}
}

func (j *Job) Name() string {
	return j.name
}

// Run drains all available pages, one step at a time, starting at cursor 0.
func (j *Job) Run(ctx context.Context) error {
	if !j.running.CompareAndSwap(false, true) {
		slog.Debug("previous run still in progress, skipping", slog.String("job", j.name))
		return nil
	}
	defer j.running.Store(false)

	t0 := time.Now()

	cursor := 0
	for {
		next, err := j.step(ctx, cursor)
		if err != nil {
			return fmt.Errorf("can't run step of job %s at cursor %d: %w", j.name, cursor, err)
		}

		if next == 0 {
			break
		}

		cursor = next
	}

	slog.Debug("job drained", slog.String("job", j.name), slog.Duration("delay", time.Since(t0)))

	return nil
}
