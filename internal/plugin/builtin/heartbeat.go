package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/workbench/internal/plugin"
)

func init() {
	Register("heartbeat", newHeartbeat)
}

// newHeartbeat emits a fixed number of beats, pausing between them.
// Each beat is one suspension point.
func newHeartbeat(params map[string]any) (plugin.Entry, error) {
	beats, err := intParam(params, "beats", 3)
	if err != nil {
		return plugin.Entry{}, err
	}
	if beats < 1 {
		return plugin.Entry{}, fmt.Errorf("heartbeat: beats must be positive, got %d", beats)
	}
	intervalMS, err := intParam(params, "interval_ms", 0)
	if err != nil {
		return plugin.Entry{}, err
	}
	interval := time.Duration(intervalMS) * time.Millisecond

	return plugin.Suspending(func(_ context.Context, fc *plugin.Context) (plugin.Task, error) {
		steps := make([]func(context.Context) (plugin.Result, error), beats)
		for i := range steps {
			n := i + 1
			steps[i] = func(ctx context.Context) (plugin.Result, error) {
				if n > 1 && interval > 0 {
					timer := time.NewTimer(interval)
					defer timer.Stop()
					select {
					case <-ctx.Done():
						return plugin.Result{}, ctx.Err()
					case <-timer.C:
					}
				}
				fc.Print(fmt.Sprintf("beat %d/%d\n", n, beats))
				return plugin.OK(fmt.Sprintf("%d beats", n), map[string]any{"beats": n}), nil
			}
		}
		return plugin.NewStepTask(steps...), nil
	}), nil
}
