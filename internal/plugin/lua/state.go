package lua

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps gopher-lua for one feature module.
//
// gopher-lua's LState is not goroutine-safe. Every method takes the state's
// mutex, so calls from different goroutines are serialized. Coroutines created
// with NewThread share the parent's globals and are resumed under the same lock.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	dir    string
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithModuleDir adds dir to package.path so the module can require its siblings.
func WithModuleDir(dir string) StateOption {
	return func(s *State) {
		s.dir = dir
	}
}

// NewState creates a Lua state with the standard libraries opened.
func NewState(opts ...StateOption) *State {
	state := &State{}
	for _, opt := range opts {
		opt(state)
	}

	state.L = lua.NewState()

	if state.dir != "" {
		pkg, ok := state.L.GetGlobal("package").(*lua.LTable)
		if ok {
			current := lua.LVAsString(pkg.RawGetString("path"))
			local := filepath.Join(state.dir, "?.lua")
			pkg.RawSetString("path", lua.LString(strings.Join([]string{local, current}, ";")))
		}
	}

	return state
}

// DoFile executes a Lua file.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.doWithRecovery(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua chunk.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Global returns a global variable value.
func (s *State) Global(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}

	return s.L.GetGlobal(name)
}

// Function returns the global function name, or nil if it is not defined.
// A global of another type is an error.
func (s *State) Function(name string) (*lua.LFunction, error) {
	v := s.Global(name)
	switch fn := v.(type) {
	case *lua.LFunction:
		return fn, nil
	case *lua.LNilType:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotFunction, name, v.Type())
	}
}

// Call calls fn with arguments built by args on the locked state.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) Call(fn *lua.LFunction, args func(L *lua.LState) []lua.LValue) (ret []lua.LValue, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	stackTop := s.L.GetTop()

	s.L.Push(fn)
	var argv []lua.LValue
	if args != nil {
		argv = args(s.L)
	}
	for _, arg := range argv {
		s.L.Push(arg)
	}

	defer func() {
		if r := recover(); r != nil {
			s.L.SetTop(stackTop)
			ret, err = nil, fmt.Errorf("lua panic: %v", r)
		}
	}()
	if err := s.L.PCall(len(argv), lua.MultRet, nil); err != nil {
		return nil, err
	}

	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)

	return results, nil
}

// Thread is a coroutine running one function on a State.
type Thread struct {
	state   *State
	co      *lua.LState
	fn      *lua.LFunction
	args    []lua.LValue
	started bool
	done    bool
}

// NewThread prepares fn to run as a coroutine. args builds the first-resume
// arguments on the locked state.
func (s *State) NewThread(fn *lua.LFunction, args func(L *lua.LState) []lua.LValue) (*Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	co, _ := s.L.NewThread()
	t := &Thread{state: s, co: co, fn: fn}
	if args != nil {
		t.args = args(s.L)
	}
	return t, nil
}

// Resume runs the coroutine until it yields or returns. done is true once
// the function has returned or raised an error; values are what it yielded
// or returned.
func (t *Thread) Resume() (done bool, values []lua.LValue, err error) {
	if t.done {
		return true, nil, nil
	}

	s := t.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		t.done = true
		return true, nil, ErrStateClosed
	}

	defer func() {
		if r := recover(); r != nil {
			t.done = true
			done, values, err = true, nil, fmt.Errorf("lua panic: %v", r)
		}
	}()

	var args []lua.LValue
	if !t.started {
		args = t.args
		t.started = true
	}

	st, rerr, vals := s.L.Resume(t.co, t.fn, args...)
	switch st {
	case lua.ResumeError:
		t.done = true
		return true, nil, rerr
	case lua.ResumeOK:
		t.done = true
		return true, vals, nil
	default:
		return false, vals, nil
	}
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases all resources associated with the Lua state.
// After Close is called, all other methods will return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}
