// Package api implements the HTTP REST API and WebSocket server of the
// audio controller.
//
// This package provides:
//   - REST endpoints for the element registry, main connections, volumes,
//     mute, sound properties and system properties
//   - WebSocket hub broadcasting the controller's change events
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The controller owns all element state and runs on a single goroutine.
// Every handler submits its work through Caller.Call and waits for it, so
// reads and user hooks never race the trigger loop. User requests are
// asynchronous in the controller: a 202 Accepted means the request was
// queued, and its outcome is reported on the WebSocket channels.
package api
