package plugin

import "context"

// EntryKind tells the executor how to drive an entry point.
type EntryKind int

const (
	// EntryBlocking runs to completion on the caller's goroutine.
	EntryBlocking EntryKind = iota

	// EntrySuspending returns a Task that is resumed until done.
	EntrySuspending
)

// String returns a string representation of the kind.
func (k EntryKind) String() string {
	switch k {
	case EntryBlocking:
		return "blocking"
	case EntrySuspending:
		return "suspending"
	default:
		return "unknown"
	}
}

// BlockingFunc is a synchronous entry point.
type BlockingFunc func(ctx context.Context, fc *Context) (Result, error)

// TaskFunc starts a suspending entry point.
type TaskFunc func(ctx context.Context, fc *Context) (Task, error)

// Task is a unit of work that can suspend.
//
// Resume advances the task to its next suspension point. It returns
// done=true together with the final result once the task has finished.
// Resume is never called again after it reports done or an error.
type Task interface {
	Resume(ctx context.Context) (done bool, res Result, err error)
}

// Entry is a feature's entry point: exactly one of Call or Start is set,
// according to Kind.
type Entry struct {
	Kind  EntryKind
	Call  BlockingFunc
	Start TaskFunc
}

// Blocking wraps a synchronous entry point.
func Blocking(fn BlockingFunc) Entry {
	return Entry{Kind: EntryBlocking, Call: fn}
}

// Suspending wraps an entry point that returns a Task.
func Suspending(fn TaskFunc) Entry {
	return Entry{Kind: EntrySuspending, Start: fn}
}

// Valid reports whether the function matching Kind is set.
func (e Entry) Valid() bool {
	switch e.Kind {
	case EntryBlocking:
		return e.Call != nil
	case EntrySuspending:
		return e.Start != nil
	default:
		return false
	}
}

// StepTask is a Task built from a sequence of steps. Each Resume runs one
// step; the last step's result completes the task.
type StepTask struct {
	steps []func(ctx context.Context) (Result, error)
	next  int
}

// NewStepTask creates a task that runs steps in order, one per Resume.
func NewStepTask(steps ...func(ctx context.Context) (Result, error)) *StepTask {
	return &StepTask{steps: steps}
}

// Resume runs the next step.
func (t *StepTask) Resume(ctx context.Context) (bool, Result, error) {
	if t.next >= len(t.steps) {
		return true, Result{}, ErrNoResult
	}
	step := t.steps[t.next]
	t.next++
	res, err := step(ctx)
	if err != nil {
		return true, Result{}, err
	}
	return t.next == len(t.steps), res, nil
}
