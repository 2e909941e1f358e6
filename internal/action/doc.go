// Package action implements the composite action state machine that carries
// out what the policy engine asks for.
//
// Every action moves through the same states:
//
//	NOT_STARTED --Execute--> RUNNING --ok--> DONE
//	                            |
//	                            +--fail--> ERROR_STOPPED --Undo--> UNDOING --> UNDONE
//
// A Leaf wraps an Operation, the domain-specific work. An operation that has
// to wait for the routing side registers the handle it was given; the leaf
// then stays RUNNING across further Execute calls until every handle is
// resolved through the handle store.
//
// A Container holds child actions and runs them either one after another
// (Sequential) or all at once (Concurrent), reflecting the worst child state
// upwards. Undo walks the children in reverse order and skips the ones that
// never started. Cleanup drops finished children so the tree can accept the
// next batch.
//
// Nothing here blocks or spawns goroutines: the tree is polled by the
// controller's dispatch loop.
package action
