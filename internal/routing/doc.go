// Package routing is the controller's view of the routing side.
//
// ElementDB is the element database: it hands out IDs when elements are
// registered (statically configured IDs below the boundary, dynamic ones at
// or above it), removes them again and computes routes between a source
// and a sink across domain gateways.
//
// Adapter talks to the routing adapters over MQTT. Every asynchronous
// request is published as a Command on the owning bus and answered by an
// Ack carrying the same handle; the adapters also publish Events for
// registrations and state changes. Acks and events are handed to the
// controller through an Executor so the controller only ever runs on its
// own goroutine.
package routing
