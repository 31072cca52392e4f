// Package execute runs features and turns every fault into a failed result.
package execute

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/workbench/internal/logging"
	"github.com/dshills/workbench/internal/plugin"
)

// ErrUnknownEntry is reported for an entry point the executor cannot drive.
var ErrUnknownEntry = errors.New("feature has no runnable entry point")

// Run describes one completed execution.
type Run struct {
	ID       string
	Feature  string
	Result   plugin.Result
	Started  time.Time
	Duration time.Duration
}

// Recorder receives every completed run.
type Recorder interface {
	Record(ctx context.Context, run Run) error
}

// Executor invokes feature entry points.
//
// Blocking entries run on the caller's goroutine. Suspending entries are
// driven on a goroutine owned by the single call; the caller waits for the
// final result. There are no retries and no timeout.
type Executor struct {
	recorder Recorder
	now      func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithRecorder sets the run recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Executor) {
		e.recorder = r
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// New creates an executor.
func New(opts ...Option) *Executor {
	e := &Executor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs f and always returns a completed result.
func (e *Executor) Execute(ctx context.Context, f *plugin.Feature, fc *plugin.Context) plugin.Result {
	if f == nil {
		return plugin.Fail("feature failed", errors.New("no feature given"))
	}

	runID := uuid.NewString()
	logger := logging.Component(ctx, "execute").With("feature", f.Name(), "run_id", runID)

	started := e.now()
	logger.Debug("run started", "kind", f.Entry().Kind)

	var (
		res plugin.Result
		err error
	)
	entry := f.Entry()
	switch {
	case !entry.Valid():
		err = ErrUnknownEntry
	case entry.Kind == plugin.EntryBlocking:
		res, err = callBlocking(ctx, entry.Call, fc)
	default:
		res, err = driveTask(ctx, entry.Start, fc)
	}

	if err != nil {
		res = plugin.Fail(fmt.Sprintf("%s failed", displayName(f)), err)
		logger.Warn("run failed", "error", err)
	}
	res = res.Normalize()

	run := Run{
		ID:       runID,
		Feature:  f.Name(),
		Result:   res,
		Started:  started,
		Duration: e.now().Sub(started),
	}
	logger.Info("run finished", "success", res.Success, "duration", run.Duration)

	if e.recorder != nil {
		if rerr := e.recorder.Record(ctx, run); rerr != nil {
			logger.Error("failed to record run", "error", rerr)
		}
	}

	return res
}

// callBlocking runs fn on the calling goroutine.
func callBlocking(ctx context.Context, fn plugin.BlockingFunc, fc *plugin.Context) (res plugin.Result, err error) {
	defer recoverInto(&err)
	return fn(ctx, fc)
}

type outcome struct {
	res plugin.Result
	err error
}

// driveTask starts a task and resumes it to completion on its own goroutine.
func driveTask(ctx context.Context, start plugin.TaskFunc, fc *plugin.Context) (plugin.Result, error) {
	done := make(chan outcome, 1)

	go func() {
		var out outcome
		defer func() { done <- out }()
		defer recoverInto(&out.err)

		task, err := start(ctx, fc)
		if err != nil {
			out.err = err
			return
		}
		if task == nil {
			out.err = plugin.ErrNoResult
			return
		}

		for {
			finished, res, err := task.Resume(ctx)
			if err != nil {
				out.err = err
				return
			}
			if finished {
				out.res = res
				return
			}
		}
	}()

	out := <-done
	return out.res, out.err
}

// recoverInto converts a panic into an error.
func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = &PanicError{Value: r, Stack: debug.Stack()}
	}
}

// PanicError is a panic raised inside a feature.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func displayName(f *plugin.Feature) string {
	if m := f.Manifest(); m.DisplayName != "" {
		return m.DisplayName
	}
	return f.Name()
}
