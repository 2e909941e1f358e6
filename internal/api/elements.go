package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/policy"
)

// ConnectionView is the JSON form of a main connection.
type ConnectionView struct {
	ID        audio.ID               `json:"id"`
	Name      string                 `json:"name"`
	Source    string                 `json:"source"`
	Sink      string                 `json:"sink"`
	Class     string                 `json:"class"`
	State     audio.ConnectionState  `json:"state"`
	Volume    audio.MainVolume       `json:"volume"`
	MuteState audio.MuteState        `json:"mute_state"`
	Priority  int32                  `json:"priority"`
	Route     []audio.RoutingElement `json:"route,omitempty"`
}

// ClassView is the JSON form of a class.
type ClassView struct {
	element.ClassConfig
	Connections []string `json:"connections"`
}

var pluralKinds = map[string]element.Kind{
	"domains":     element.KindDomain,
	"sources":     element.KindSource,
	"sinks":       element.KindSink,
	"gateways":    element.KindGateway,
	"classes":     element.KindClass,
	"connections": element.KindConnection,
}

func parseKindParam(s string) (element.Kind, error) {
	if k, ok := pluralKinds[s]; ok {
		return k, nil
	}
	return element.ParseKind(s)
}

// parseID reads the {id} URL parameter.
func parseID(r *http.Request) (audio.ID, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 16)
	if err != nil || n == 0 {
		return audio.IDUnknown, false
	}
	return audio.ID(n), true
}

func connectionView(c *element.Connection) ConnectionView {
	return ConnectionView{
		ID:        c.ID(),
		Name:      c.Name(),
		Source:    c.SourceName(),
		Sink:      c.SinkName(),
		Class:     c.ClassName(),
		State:     c.State(),
		Volume:    c.Volume(),
		MuteState: c.MuteState(),
		Priority:  c.Priority(),
		Route:     c.Route(),
	}
}

// elements lists every element of kind. It must run on the controller.
func (s *Server) elements(kind element.Kind) any {
	switch kind {
	case element.KindDomain:
		return views(s.core.Domains().List(nil), (*element.Domain).Config)
	case element.KindSource:
		return views(s.core.Sources().List(nil), (*element.Source).Config)
	case element.KindSink:
		return views(s.core.Sinks().List(nil), (*element.Sink).Config)
	case element.KindGateway:
		return views(s.core.Gateways().List(nil), (*element.Gateway).Config)
	case element.KindClass:
		return views(s.core.Classes().List(nil), func(c *element.Class) ClassView {
			return ClassView{ClassConfig: c.Config(), Connections: c.Connections()}
		})
	default:
		return views(s.core.Connections().List(nil), connectionView)
	}
}

func views[E any, V any](in []E, view func(E) V) []V {
	out := make([]V, len(in))
	for i, e := range in {
		out[i] = view(e)
	}
	return out
}

// handleStatus returns the dispatch loop state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status any
	if !s.call(w, r, func() { status = s.core.Status() }) {
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleListElements returns all registered elements of one kind.
func (s *Server) handleListElements(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKindParam(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, ErrCodeUnknownKind, err.Error())
		return
	}

	var list any
	if !s.call(w, r, func() { list = s.elements(kind) }) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"kind":     kind.String(),
		"elements": list,
	})
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	var list any
	if !s.call(w, r, func() { list = s.elements(element.KindConnection) }) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": list})
}

func (s *Server) handleSinkConnections(w http.ResponseWriter, r *http.Request) {
	s.endpointConnections(w, r, element.KindSink)
}

func (s *Server) handleSourceConnections(w http.ResponseWriter, r *http.Request) {
	s.endpointConnections(w, r, element.KindSource)
}

// endpointConnections lists the main connections of one source or sink,
// ordered by the "order" query parameter (oldest first by default).
func (s *Server) endpointConnections(w http.ResponseWriter, r *http.Request, kind element.Kind) {
	id, ok := parseID(r)
	if !ok {
		writeBadRequest(w, "invalid id")
		return
	}
	order, err := policy.ParseOrder(r.URL.Query().Get("order"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var list []policy.ConnectionInfo
	var callErr error
	if !s.call(w, r, func() {
		name, found := s.endpointName(kind, id)
		if !found {
			callErr = audio.ErrNonExistent
			return
		}
		list, callErr = s.core.ListMainConnections(kind, name, order)
	}) {
		return
	}
	if callErr != nil {
		writeAudioError(w, callErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": list})
}

// endpointName must run on the controller.
func (s *Server) endpointName(kind element.Kind, id audio.ID) (string, bool) {
	if kind == element.KindSink {
		if e, ok := s.core.Sinks().GetByID(id); ok {
			return e.Name(), true
		}
		return "", false
	}
	if e, ok := s.core.Sources().GetByID(id); ok {
		return e.Name(), true
	}
	return "", false
}

func (s *Server) handleListSystemProperties(w http.ResponseWriter, r *http.Request) {
	var props []audio.SystemProperty
	if !s.call(w, r, func() { props = s.core.SystemProperties() }) {
		return
	}
	if props == nil {
		props = []audio.SystemProperty{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"system_properties": props})
}
