// Package controller is the decision core of the audio daemon.
//
// A Controller owns the element stores, the action tree, the trigger queue
// and the handle store. Every event it receives, from the routing side or
// from a client, becomes a trigger. Triggers are forwarded to the policy
// engine one at a time and only while the action tree is idle; the actions
// the policy installs are executed before the next trigger is looked at.
//
// The controller is not safe for concurrent use. All calls must come from
// one goroutine, normally the one running a Runner.
package controller
