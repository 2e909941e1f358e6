package mqtt

import (
	"encoding/json"
	"time"
)

// Controller presence values published retained on Topics.SystemStatus.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"

	ReasonUnexpected = "unexpected_disconnect"
	ReasonShutdown   = "graceful_shutdown"
)

// StatusMessage is the retained presence message routing adapters and the
// remote policy engine watch to learn whether the controller is up. While
// it is offline their acks and events have nobody to go to.
type StatusMessage struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// statusPayload encodes a presence message stamped at now.
func statusPayload(status, clientID, reason string, now time.Time) []byte {
	payload, err := json.Marshal(StatusMessage{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		// Only strings are encoded.
		return []byte(`{"status":"` + status + `"}`)
	}
	return payload
}
