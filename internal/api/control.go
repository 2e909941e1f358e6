package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// ConnectRequest is the body of POST /connections.
type ConnectRequest struct {
	Source audio.ID `json:"source_id"`
	Sink   audio.ID `json:"sink_id"`
}

// VolumeRequest is the body of PUT /sinks/{id}/volume. Exactly one of
// Volume and Step must be set.
type VolumeRequest struct {
	Volume *audio.MainVolume `json:"volume,omitempty"`
	Step   *int16            `json:"step,omitempty"`
}

// MuteRequest is the body of PUT /sinks/{id}/mute.
type MuteRequest struct {
	Muted bool `json:"muted"`
}

// accepted is returned for requests the controller queued. The outcome is
// reported on the WebSocket channels.
func accepted(w http.ResponseWriter, body map[string]any) {
	if body == nil {
		body = map[string]any{}
	}
	body["status"] = "accepted"
	writeJSON(w, http.StatusAccepted, body)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// hook runs a user hook on the controller and writes the response.
func (s *Server) hook(w http.ResponseWriter, r *http.Request, fn func() error) {
	var err error
	if !s.call(w, r, func() { err = fn() }) {
		return
	}
	if err != nil {
		writeAudioError(w, err)
		return
	}
	accepted(w, nil)
}

// handleConnect asks the policy to connect a source to a sink.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Source == audio.IDUnknown || req.Sink == audio.IDUnknown {
		writeBadRequest(w, "source_id and sink_id are required")
		return
	}

	var id audio.ID
	var err error
	if !s.call(w, r, func() { id, err = s.core.HookUserConnectionRequest(req.Source, req.Sink) }) {
		return
	}
	if err != nil {
		writeAudioError(w, err)
		return
	}
	accepted(w, map[string]any{"id": id})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	s.hook(w, r, func() error { return s.core.HookUserDisconnectionRequest(id) })
}

func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	var req VolumeRequest
	if !decode(w, r, &req) {
		return
	}
	switch {
	case req.Volume != nil && req.Step == nil:
		v := *req.Volume
		s.hook(w, r, func() error { return s.core.HookUserSetVolume(id, v) })
	case req.Step != nil && req.Volume == nil:
		step := *req.Step
		s.hook(w, r, func() error { return s.core.HookUserVolumeStep(id, step) })
	default:
		writeBadRequest(w, "exactly one of volume and step is required")
	}
}

func (s *Server) handleSetMute(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	var req MuteRequest
	if !decode(w, r, &req) {
		return
	}
	state := audio.Unmuted
	if req.Muted {
		state = audio.Muted
	}
	s.hook(w, r, func() error { return s.core.HookUserSetSinkMuteState(id, state) })
}

func (s *Server) handleSetSinkSoundProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	var p audio.MainSoundProperty
	if !decode(w, r, &p) {
		return
	}
	s.hook(w, r, func() error { return s.core.HookUserSetSinkMainSoundProperty(id, p) })
}

func (s *Server) handleSetSourceSoundProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	var p audio.MainSoundProperty
	if !decode(w, r, &p) {
		return
	}
	s.hook(w, r, func() error { return s.core.HookUserSetSourceMainSoundProperty(id, p) })
}

func (s *Server) handleSetSinkNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	var c audio.NotificationConfiguration
	if !decode(w, r, &c) {
		return
	}
	s.hook(w, r, func() error { return s.core.HookUserSetMainSinkNotificationConfiguration(id, c) })
}

func (s *Server) handleSetSourceNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	var c audio.NotificationConfiguration
	if !decode(w, r, &c) {
		return
	}
	s.hook(w, r, func() error { return s.core.HookUserSetMainSourceNotificationConfiguration(id, c) })
}

func (s *Server) handleSetSystemProperty(w http.ResponseWriter, r *http.Request) {
	var p audio.SystemProperty
	if !decode(w, r, &p) {
		return
	}
	s.hook(w, r, func() error { return s.core.HookUserSetSystemProperty(p) })
}
