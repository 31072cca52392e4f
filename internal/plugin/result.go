package plugin

import "fmt"

// Result is the outcome of running a feature.
// Error is set exactly when Success is false.
type Result struct {
	Success bool
	Message string
	Data    any
	Error   string
}

// OK returns a successful result.
func OK(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

// Fail returns a failed result carrying err's text.
func Fail(message string, err error) Result {
	text := "unknown error"
	if err != nil {
		text = err.Error()
	}
	return Result{Success: false, Message: message, Error: text}
}

// Normalize enforces the Success/Error invariant.
// A failed result without error text borrows its message; a successful
// result drops any error text.
func (r Result) Normalize() Result {
	if r.Success {
		r.Error = ""
		return r
	}
	if r.Error == "" {
		r.Error = r.Message
	}
	if r.Error == "" {
		r.Error = "feature reported failure"
	}
	return r
}

// String returns a one-line summary of the result.
func (r Result) String() string {
	if r.Success {
		return fmt.Sprintf("ok: %s", r.Message)
	}
	return fmt.Sprintf("failed: %s (%s)", r.Message, r.Error)
}
