// Package machine models the execution-context primitives of the kernel
// core: the saved context a switch restores, the trap frame captured on
// kernel entry, and the context-switch contract itself.
package machine

// Context is an opaque saved execution context. A context created with an
// entry function starts that function on first activation; subsequent
// activations resume it where it last suspended.
//
// A "return" from a switch into this context is in fact a resumption
// triggered by another context switching back to it, never an ordinary
// function return.
type Context struct {
	resume  chan struct{}
	entry   func()
	started bool
}

// NewContext creates a context that runs entry on first activation.
func NewContext(entry func()) *Context {
	return &Context{resume: make(chan struct{}, 1), entry: entry}
}

// NewIdleContext creates the dispatcher's own anchor context. It is never
// started; it only ever suspends and resumes.
func NewIdleContext() *Context {
	return &Context{resume: make(chan struct{}, 1), started: true}
}

// Activate transfers control into this context: the first activation launches
// the entry function, later ones unblock a pending Suspend. Intended for
// Switcher implementations only.
func (c *Context) Activate() {
	if !c.started {
		c.started = true
		go c.entry()
		return
	}
	c.resume <- struct{}{}
}

// Suspend blocks the calling flow until another context activates this one.
// Intended for Switcher implementations only.
func (c *Context) Suspend() {
	<-c.resume
}
