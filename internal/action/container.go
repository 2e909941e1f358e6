package action

import "slices"

// Mode is how a container combines its children.
type Mode int

// Mode constants.
const (
	// Sequential starts a child only after the previous one is DONE.
	Sequential Mode = iota
	// Concurrent starts every child at once.
	Concurrent
)

// Container is a composite action.
type Container struct {
	name     string
	mode     Mode
	children []Action
	state    State
	err      error

	// pruneFinished lets Cleanup drop finished children while the
	// container itself is still running. Only the root does this: its
	// children are independent batches, whereas the children of a nested
	// container must survive until the container is finished so they can
	// be undone together.
	pruneFinished bool
}

// NewSequence creates a sequential container.
func NewSequence(name string, children ...Action) *Container {
	return &Container{name: name, mode: Sequential, children: children}
}

// NewConcurrent creates a concurrent container.
func NewConcurrent(name string, children ...Action) *Container {
	return &Container{name: name, mode: Concurrent, children: children}
}

// NewRoot creates the root of an action tree.
func NewRoot() *Container {
	return &Container{name: "root", mode: Sequential, pruneFinished: true}
}

// Name implements Action.
func (c *Container) Name() string { return c.name }

// State implements Action.
func (c *Container) State() State { return c.state }

// Err implements Action.
func (c *Container) Err() error { return c.err }

// Append adds children at the end.
func (c *Container) Append(children ...Action) {
	c.children = append(c.children, children...)
}

// IsEmpty reports whether the container holds no children.
func (c *Container) IsEmpty() bool { return len(c.children) == 0 }

// Len returns the number of children.
func (c *Container) Len() int { return len(c.children) }

// Children returns a copy of the child list.
func (c *Container) Children() []Action { return slices.Clone(c.children) }

// Execute runs the children according to the container mode. A container
// that failed or is being undone ignores Execute; a finished container
// that got new children runs again.
func (c *Container) Execute() {
	switch c.state {
	case StateErrorStopped, StateUndoing, StateUndone:
		return
	}
	c.state = StateRunning
	if c.mode == Concurrent {
		c.executeConcurrent()
	} else {
		c.executeSequential()
	}
}

func (c *Container) executeSequential() {
	for _, child := range c.children {
		if child.State().Finished() {
			continue
		}
		child.Execute()
		switch child.State() {
		case StateDone:
			continue
		case StateErrorStopped:
			c.fail(child)
			return
		default:
			return
		}
	}
	c.state = StateDone
}

func (c *Container) executeConcurrent() {
	worst := StateDone
	for _, child := range c.children {
		if !child.State().Finished() {
			child.Execute()
		}
		switch child.State() {
		case StateDone, StateUndone:
		case StateErrorStopped:
			if worst != StateErrorStopped {
				c.err = child.Err()
			}
			worst = StateErrorStopped
		default:
			if worst == StateDone {
				worst = StateRunning
			}
		}
	}
	c.state = worst
}

func (c *Container) fail(child Action) {
	c.err = child.Err()
	c.state = StateErrorStopped
}

// Undo reverts the children that got started, last first. In sequential
// mode it waits for each child to finish undoing before moving to the one
// before it; in concurrent mode all children undo at once.
func (c *Container) Undo() {
	switch c.state {
	case StateNotStarted, StateUndone:
		return
	}
	c.state = StateUndoing
	busy := false
	for i := len(c.children) - 1; i >= 0; i-- {
		child := c.children[i]
		switch child.State() {
		case StateNotStarted, StateUndone:
			continue
		}
		child.Undo()
		if child.State() == StateUndoing {
			busy = true
			if c.mode == Sequential {
				break
			}
		}
	}
	if !busy {
		c.state = StateUndone
	}
}

// Cleanup drops what is finished. A failed or undoing container keeps all
// its children for Undo. A finished container releases its children and
// becomes NOT_STARTED again; the root also drops finished children while
// it runs. The root keeps batches that were appended but never started, so
// they run on the next Execute.
func (c *Container) Cleanup() {
	switch c.state {
	case StateErrorStopped, StateUndoing:
		return
	case StateDone, StateUndone:
		c.release()
		return
	}
	if !c.pruneFinished {
		return
	}
	kept := c.children[:0]
	for _, child := range c.children {
		if child.State().Finished() {
			child.Cleanup()
			continue
		}
		kept = append(kept, child)
	}
	clear(c.children[len(kept):])
	c.children = kept
	if len(c.children) == 0 {
		c.reset()
	}
}

func (c *Container) release() {
	kept := c.children[:0]
	for _, child := range c.children {
		if c.pruneFinished && child.State() == StateNotStarted {
			kept = append(kept, child)
			continue
		}
		child.Cleanup()
	}
	clear(c.children[len(kept):])
	c.children = kept
	c.reset()
}

func (c *Container) reset() {
	c.state = StateNotStarted
	c.err = nil
}
