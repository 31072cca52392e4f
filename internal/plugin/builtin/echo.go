package builtin

import (
	"context"
	"fmt"

	"github.com/dshills/workbench/internal/plugin"
)

func init() {
	Register("echo", newEcho)
}

// newEcho prints a message and returns it. The feature's own "message"
// setting overrides the descriptor's.
func newEcho(params map[string]any) (plugin.Entry, error) {
	message, err := stringParam(params, "message", "")
	if err != nil {
		return plugin.Entry{}, err
	}

	return plugin.Blocking(func(_ context.Context, fc *plugin.Context) (plugin.Result, error) {
		text := message
		if s, ok := fc.Settings()["message"].(string); ok {
			text = s
		}
		if text == "" {
			return plugin.Result{}, fmt.Errorf("echo: no message configured")
		}
		fc.Print(text + "\n")
		return plugin.OK(text, map[string]any{"length": len(text)}), nil
	}), nil
}
