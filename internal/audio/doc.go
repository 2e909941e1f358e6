// Package audio holds the value types shared by every layer of the audio
// controller: element IDs, connection and availability states, sound and
// system properties, asynchronous operation handles and the error codes
// exchanged with the routing side and the policy engine.
//
// The package has no dependencies on the rest of the module so that the
// registry, the action engine and the wire adapters can all import it.
//
// Usage:
//
//	h := audio.Handle{Type: audio.HandleConnect, Index: 7}
//	if errors.Is(err, audio.ErrNonExistent) {
//	    // element vanished while the action was queued
//	}
package audio
