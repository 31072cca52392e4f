package plugin

import "io"

// Context is what a feature's entry point receives.
//
// Every collaborator is owned by the host. The discovery engine, the
// registry and the executor pass them through untouched.
type Context struct {
	// Feature is the name of the feature being run.
	Feature string

	// Console is the display sink. May be nil.
	Console io.Writer

	// LLM is the completion client.
	LLM any

	// History is the history store.
	History any

	// Config is the configuration visible to the feature.
	Config any

	// Analytics is the analytics sink.
	Analytics any

	// PromptBuilder is the prompt currently being built.
	PromptBuilder any
}

// Print writes to the console if one is attached.
func (c *Context) Print(s string) {
	if c == nil || c.Console == nil {
		return
	}
	_, _ = io.WriteString(c.Console, s)
}

// Settings returns Config as a string-keyed map, or nil.
func (c *Context) Settings() map[string]any {
	if c == nil {
		return nil
	}
	m, _ := c.Config.(map[string]any)
	return m
}
