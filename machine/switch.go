package machine

// Switcher is the context-switch primitive. Switch does not return to its
// caller in the ordinary sense: control comes back to the save context only
// when some later switch targets it again.
type Switcher interface {
	// Switch suspends the calling flow into save and transfers control to
	// restore.
	Switch(save, restore *Context)

	// Handoff transfers control to restore without suspending the caller.
	// Used on the exit path, where the calling flow is about to terminate
	// and will never be resumed.
	Handoff(restore *Context)
}
