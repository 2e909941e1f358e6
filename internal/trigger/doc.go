// Package trigger defines the events the controller forwards to the policy
// engine and the FIFO queue that holds them until the action tree is idle.
//
// Every trigger is a small value type carrying exactly the fields of the
// matching policy hook. Triggers are pushed when an event is observed and
// popped by the dispatch loop, which forwards each one once and drops it.
package trigger
