// Package element is the in-process registry of audio elements.
//
// Six element kinds exist: domains, sources, sinks, gateways, classes and
// main connections. Each kind lives in its own Store, a generic factory that
// builds elements from their configuration, enters them into the routing
// side's element database and indexes them by name and by the ID that
// database assigns. The Store is the sole owner of its elements; everything
// else refers to an element by name or ID and resolves it again when needed.
//
// Stores are not safe for concurrent use. The controller owns them and
// accesses them from its single runner goroutine.
//
// Usage:
//
//	sinks := element.NewSinkStore(db)
//	sink, err := sinks.Create(element.SinkConfig{
//	    EndpointConfig: element.EndpointConfig{Name: "amp", Domain: "VirtDSP"},
//	})
//	if errors.Is(err, audio.ErrAlreadyExists) {
//	    // a sink called "amp" is already registered
//	}
package element
