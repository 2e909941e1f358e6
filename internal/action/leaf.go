package action

import (
	"errors"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/handle"
)

// Waiter lets an Operation park its leaf on an asynchronous request.
type Waiter interface {
	// Wait binds h to the leaf. done, if not nil, is called with the routing
	// side's result when h is acknowledged; the error it returns is what the
	// leaf records.
	Wait(h audio.Handle, done func(result error) error) error
}

// Operation is the domain-specific work of a Leaf.
type Operation interface {
	Execute(w Waiter) error
	Undo(w Waiter) error
}

// Aborter is implemented by operations that can cancel an in-flight request
// on the routing side. It is called for every handle still outstanding when
// the leaf is undone.
type Aborter interface {
	Abort(h audio.Handle)
}

// Funcs adapts two functions to an Operation. A nil Revert makes Undo a
// no-op.
type Funcs struct {
	Run    func(w Waiter) error
	Revert func(w Waiter) error
}

// Execute implements Operation.
func (f Funcs) Execute(w Waiter) error {
	if f.Run == nil {
		return nil
	}
	return f.Run(w)
}

// Undo implements Operation.
func (f Funcs) Undo(w Waiter) error {
	if f.Revert == nil {
		return nil
	}
	return f.Revert(w)
}

// Leaf runs one Operation.
type Leaf struct {
	name    string
	op      Operation
	handles *handle.Store
	state   State
	err     error
	pending map[audio.Handle]func(error) error
}

// NewLeaf creates a leaf that binds its asynchronous requests in handles.
func NewLeaf(name string, op Operation, handles *handle.Store) *Leaf {
	return &Leaf{
		name:    name,
		op:      op,
		handles: handles,
		pending: make(map[audio.Handle]func(error) error),
	}
}

// Name implements Action.
func (l *Leaf) Name() string { return l.name }

// State implements Action.
func (l *Leaf) State() State { return l.state }

// Err implements Action.
func (l *Leaf) Err() error { return l.err }

// Pending returns the number of outstanding handles.
func (l *Leaf) Pending() int { return len(l.pending) }

// Execute runs the operation the first time it is called. Later calls are
// no-ops: a waiting leaf is moved on by Resolve.
func (l *Leaf) Execute() {
	if l.state != StateNotStarted {
		return
	}
	l.state = StateRunning
	if err := l.op.Execute(l); err != nil {
		l.err = err
		l.state = StateErrorStopped
		return
	}
	l.settle()
}

// Wait implements Waiter.
func (l *Leaf) Wait(h audio.Handle, done func(result error) error) error {
	if err := l.handles.Bind(h, l); err != nil {
		return err
	}
	l.pending[h] = done
	return nil
}

// Resolve implements handle.Waiter.
func (l *Leaf) Resolve(h audio.Handle, result error) {
	done, ok := l.pending[h]
	if !ok {
		return
	}
	delete(l.pending, h)
	if done != nil {
		result = done(result)
	}
	if result != nil {
		switch l.state {
		case StateRunning:
			if l.err == nil {
				l.err = result
			}
		default:
			l.err = errors.Join(l.err, result)
		}
	}
	l.settle()
}

// settle moves the leaf on once nothing is outstanding.
func (l *Leaf) settle() {
	if len(l.pending) > 0 {
		return
	}
	switch l.state {
	case StateRunning:
		if l.err != nil {
			l.state = StateErrorStopped
		} else {
			l.state = StateDone
		}
	case StateUndoing:
		l.state = StateUndone
	}
}

// Undo aborts outstanding requests and runs the operation's undo.
func (l *Leaf) Undo() {
	switch l.state {
	case StateRunning, StateDone, StateErrorStopped:
	default:
		return
	}
	l.abortPending()
	l.state = StateUndoing
	if err := l.op.Undo(l); err != nil {
		l.err = errors.Join(l.err, err)
		l.abortPending()
	}
	l.settle()
}

func (l *Leaf) abortPending() {
	aborter, canAbort := l.op.(Aborter)
	for h := range l.pending {
		l.handles.Release(h)
		if canAbort {
			aborter.Abort(h)
		}
		delete(l.pending, h)
	}
}

// Cleanup implements Action. A leaf has nothing to drop.
func (l *Leaf) Cleanup() {}
