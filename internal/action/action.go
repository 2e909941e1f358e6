package action

// Action is a unit of work in the action tree.
type Action interface {
	// Name identifies the action in logs.
	Name() string

	// State returns the current lifecycle state.
	State() State

	// Err returns the error that stopped the action, joined with any error
	// met while undoing it.
	Err() error

	// Execute starts or resumes the action. It never blocks.
	Execute()

	// Undo reverts an action that got at least as far as RUNNING.
	Undo()

	// Cleanup drops finished children. It is idempotent.
	Cleanup()
}
