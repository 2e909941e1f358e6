package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/controller"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-audio/internal/policy"
)

// =============================================================================
// Fakes
// =============================================================================

// counterDB hands out sequential IDs per kind.
type counterDB struct{ next map[element.Kind]audio.ID }

func (d *counterDB) Enter(e element.Element) (audio.ID, error) {
	if d.next == nil {
		d.next = make(map[element.Kind]audio.ID)
	}
	d.next[e.Kind()]++
	return d.next[e.Kind()], nil
}

func (d *counterDB) Remove(element.Kind, audio.ID) error { return nil }

// fakeCore records every hook call and answers with err.
type fakeCore struct {
	domains     *element.DomainStore
	sources     *element.SourceStore
	sinks       *element.SinkStore
	gateways    *element.GatewayStore
	classes     *element.ClassStore
	connections *element.ConnectionStore

	status controller.Status
	props  []audio.SystemProperty
	calls  []string
	err    error
}

func newFakeCore(t *testing.T) *fakeCore {
	t.Helper()
	db := &counterDB{}
	c := &fakeCore{
		domains:     element.NewDomainStore(db),
		sources:     element.NewSourceStore(db),
		sinks:       element.NewSinkStore(db),
		gateways:    element.NewGatewayStore(db),
		classes:     element.NewClassStore(db),
		connections: element.NewConnectionStore(db),
		status:      controller.Status{Started: true, RootState: "AS_NOT_STARTED", QueueLength: 2},
	}
	steps := []error{
		create(c.domains, element.DomainConfig{Name: "amp", BusName: "dsp"}),
		create(c.sources, element.SourceConfig{EndpointConfig: element.EndpointConfig{Name: "radio", Domain: "amp"}}),
		create(c.sinks, element.SinkConfig{EndpointConfig: element.EndpointConfig{Name: "speakers", Domain: "amp", MainVolume: 40}}),
		create(c.classes, element.ClassConfig{Name: "BASE", Sources: []string{"radio"}, Sinks: []string{"speakers"}}),
		create(c.connections, element.ConnectionConfig{Source: "radio", Sink: "speakers", Class: "BASE"}),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("building fake registry: %v", err)
		}
	}
	return c
}

func create[C any, E element.Element](s *element.Store[C, E], cfg C) error {
	_, err := s.Create(cfg)
	return err
}

func (c *fakeCore) record(format string, args ...any) error {
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
	return c.err
}

func (c *fakeCore) Status() controller.Status                { return c.status }
func (c *fakeCore) Domains() *element.DomainStore            { return c.domains }
func (c *fakeCore) Sources() *element.SourceStore            { return c.sources }
func (c *fakeCore) Sinks() *element.SinkStore                { return c.sinks }
func (c *fakeCore) Gateways() *element.GatewayStore          { return c.gateways }
func (c *fakeCore) Classes() *element.ClassStore             { return c.classes }
func (c *fakeCore) Connections() *element.ConnectionStore    { return c.connections }
func (c *fakeCore) SystemProperties() []audio.SystemProperty { return c.props }

func (c *fakeCore) ListMainConnections(kind element.Kind, name string, order policy.Order) ([]policy.ConnectionInfo, error) {
	if err := c.record("list %s %s %s", kind, name, order); err != nil {
		return nil, err
	}
	return []policy.ConnectionInfo{{ID: 1, Name: "radio:speakers", Source: "radio", Sink: "speakers", Class: "BASE"}}, nil
}

func (c *fakeCore) HookUserConnectionRequest(source, sink audio.ID) (audio.ID, error) {
	if err := c.record("connect %d %d", source, sink); err != nil {
		return audio.IDUnknown, err
	}
	return 7, nil
}

func (c *fakeCore) HookUserDisconnectionRequest(id audio.ID) error {
	return c.record("disconnect %d", id)
}

func (c *fakeCore) HookUserSetSinkMuteState(id audio.ID, state audio.MuteState) error {
	return c.record("mute %d %s", id, state)
}

func (c *fakeCore) HookUserSetVolume(id audio.ID, v audio.MainVolume) error {
	return c.record("volume %d %d", id, v)
}

func (c *fakeCore) HookUserVolumeStep(id audio.ID, step int16) error {
	return c.record("step %d %d", id, step)
}

func (c *fakeCore) HookUserSetSinkMainSoundProperty(id audio.ID, p audio.MainSoundProperty) error {
	return c.record("sink property %d %d=%d", id, p.Type, p.Value)
}

func (c *fakeCore) HookUserSetSourceMainSoundProperty(id audio.ID, p audio.MainSoundProperty) error {
	return c.record("source property %d %d=%d", id, p.Type, p.Value)
}

func (c *fakeCore) HookUserSetSystemProperty(p audio.SystemProperty) error {
	return c.record("system property %d=%d", p.Type, p.Value)
}

func (c *fakeCore) HookUserSetMainSinkNotificationConfiguration(id audio.ID, n audio.NotificationConfiguration) error {
	return c.record("sink notification %d %d %s", id, n.Type, n.Status)
}

func (c *fakeCore) HookUserSetMainSourceNotificationConfiguration(id audio.ID, n audio.NotificationConfiguration) error {
	return c.record("source notification %d %d %s", id, n.Type, n.Status)
}

// directCaller runs fn inline, or refuses when stopped.
type directCaller struct{ stopped bool }

func (d *directCaller) Call(_ context.Context, fn func()) error {
	if d.stopped {
		return controller.ErrRunnerStopped
	}
	fn()
	return nil
}

type testEnv struct {
	srv     *Server
	core    *fakeCore
	caller  *directCaller
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	wsCfg := config.WebSocketConfig{Path: "/ws", MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}

	env := &testEnv{core: newFakeCore(t), caller: &directCaller{}}
	srv, err := New(Deps{
		Config:  config.APIConfig{Host: "127.0.0.1", Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5}},
		WS:      wsCfg,
		Logger:  log,
		Core:    env.core,
		Caller:  env.caller,
		Hub:     NewHub(wsCfg, log),
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.srv = srv
	env.handler = srv.buildRouter()
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return body.Error.Code
}

// =============================================================================
// Construction
// =============================================================================

func TestNewRequiresDeps(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	core := newFakeCore(t)

	tests := []struct {
		name string
		deps Deps
	}{
		{"no logger", Deps{Core: core, Caller: &directCaller{}}},
		{"no core", Deps{Logger: log, Caller: &directCaller{}}},
		{"no caller", Deps{Logger: log, Core: core}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.deps); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func TestHealthCheckBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	if err := env.srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start = nil, want error")
	}
	if err := env.srv.Close(); err != nil {
		t.Errorf("Close() before Start error = %v", err)
	}
}

// =============================================================================
// Read endpoints
// =============================================================================

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestHandleStatus(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got controller.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if diff := cmp.Diff(env.core.status, got); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleMetrics(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got SystemMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding metrics: %v", err)
	}
	if got.Controller.QueueLength != 2 || got.Version != "test" {
		t.Errorf("metrics = %+v", got)
	}
}

func TestHandleListElements(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path     string
		wantKind string
		wantName string
	}{
		{"/api/v1/elements/sinks", "ET_SINK", "speakers"},
		{"/api/v1/elements/sink", "ET_SINK", "speakers"},
		{"/api/v1/elements/ET_SOURCE", "ET_SOURCE", "radio"},
		{"/api/v1/elements/domains", "ET_DOMAIN", "amp"},
		{"/api/v1/elements/classes", "ET_CLASS", "BASE"},
		{"/api/v1/elements/connections", "ET_CONNECTION", "radio:speakers"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if body["kind"] != tt.wantKind {
				t.Errorf("kind = %v, want %s", body["kind"], tt.wantKind)
			}
			list, ok := body["elements"].([]any)
			if !ok || len(list) != 1 {
				t.Fatalf("elements = %v, want one", body["elements"])
			}
			if name := list[0].(map[string]any)["name"]; name != tt.wantName {
				t.Errorf("name = %v, want %s", name, tt.wantName)
			}
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/elements/speakers", "")
		if rec.Code != http.StatusNotFound || errorCode(t, rec) != ErrCodeUnknownKind {
			t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})
}

func TestHandleEndpointConnections(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/sinks/1/connections?order=newest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if diff := cmp.Diff([]string{"list ET_SINK speakers O_NEWEST"}, env.core.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown sink", "/api/v1/sinks/99/connections", http.StatusNotFound},
		{"bad order", "/api/v1/sources/1/connections?order=sideways", http.StatusBadRequest},
		{"bad id", "/api/v1/sources/zero/connections", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := env.do(t, http.MethodGet, tt.path, ""); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleListSystemProperties(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/system-properties", "")
	if got := rec.Body.String(); !strings.Contains(got, `"system_properties":[]`) {
		t.Errorf("empty list body = %s", got)
	}

	env.core.props = []audio.SystemProperty{{Type: 1, Value: 2}}
	rec = env.do(t, http.MethodGet, "/api/v1/system-properties", "")
	if got := rec.Body.String(); !strings.Contains(got, `{"type":1,"value":2}`) {
		t.Errorf("body = %s", got)
	}
}

// =============================================================================
// User requests
// =============================================================================

func TestHandleConnect(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/connections", `{"source_id":1,"sink_id":1}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["id"] != float64(7) || body["status"] != "accepted" {
		t.Errorf("body = %v", body)
	}

	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"missing sink", `{"source_id":1}`, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"invalid JSON", `{`, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown element", `{"source_id":1,"sink_id":9}`, audio.ErrNonExistent, http.StatusNotFound, ErrCodeNotFound},
		{"already connected", `{"source_id":1,"sink_id":1}`, audio.ErrAlreadyExists, http.StatusConflict, ErrCodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.core.err = tt.err
			rec := env.do(t, http.MethodPost, "/api/v1/connections", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if code := errorCode(t, rec); code != tt.wantErr {
				t.Errorf("error code = %q, want %q", code, tt.wantErr)
			}
		})
	}
}

func TestUserHooks(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   string
	}{
		{"disconnect", http.MethodDelete, "/api/v1/connections/3", "", "disconnect 3"},
		{"absolute volume", http.MethodPut, "/api/v1/sinks/1/volume", `{"volume":55}`, "volume 1 55"},
		{"volume step", http.MethodPut, "/api/v1/sinks/1/volume", `{"step":-5}`, "step 1 -5"},
		{"mute", http.MethodPut, "/api/v1/sinks/1/mute", `{"muted":true}`, "mute 1 MS_MUTED"},
		{"unmute", http.MethodPut, "/api/v1/sinks/1/mute", `{"muted":false}`, "mute 1 MS_UNMUTED"},
		{"sink property", http.MethodPut, "/api/v1/sinks/1/sound-properties", `{"type":3,"value":4}`, "sink property 1 3=4"},
		{"source property", http.MethodPut, "/api/v1/sources/1/sound-properties", `{"type":3,"value":4}`, "source property 1 3=4"},
		{"sink notification", http.MethodPut, "/api/v1/sinks/1/notification-configuration",
			`{"type":2,"status":"NS_PERIODIC","parameter":5}`, "sink notification 1 2 NS_PERIODIC"},
		{"source notification", http.MethodPut, "/api/v1/sources/1/notification-configuration",
			`{"type":2,"status":"NS_OFF"}`, "source notification 1 2 NS_OFF"},
		{"system property", http.MethodPut, "/api/v1/system-properties", `{"type":9,"value":1}`, "system property 9=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusAccepted {
				t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
			}
			if diff := cmp.Diff([]string{tt.want}, env.core.calls); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetVolumeNeedsExactlyOneField(t *testing.T) {
	env := newTestEnv(t)
	for _, body := range []string{`{}`, `{"volume":1,"step":1}`} {
		if rec := env.do(t, http.MethodPut, "/api/v1/sinks/1/volume", body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
	if len(env.core.calls) != 0 {
		t.Errorf("calls = %v, want none", env.core.calls)
	}
}

func TestAudioErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantErr  string
	}{
		{audio.ErrNoChange, http.StatusConflict, ErrCodeNoChange},
		{audio.ErrNotPossible, http.StatusConflict, ErrCodeNotPossible},
		{audio.ErrOutOfRange, http.StatusBadRequest, ErrCodeOutOfRange},
		{fmt.Errorf("wrapped: %w", audio.ErrCommunication), http.StatusBadGateway, ErrCodeBadGateway},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.wantErr, func(t *testing.T) {
			env := newTestEnv(t)
			env.core.err = tt.err
			rec := env.do(t, http.MethodPut, "/api/v1/sinks/1/volume", `{"volume":10}`)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if code := errorCode(t, rec); code != tt.wantErr {
				t.Errorf("error code = %q, want %q", code, tt.wantErr)
			}
		})
	}
}

func TestControllerStopped(t *testing.T) {
	env := newTestEnv(t)
	env.caller.stopped = true

	for _, path := range []string{"/api/v1/status", "/api/v1/elements/sinks"} {
		rec := env.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusServiceUnavailable || errorCode(t, rec) != ErrCodeUnavailable {
			t.Errorf("%s: status = %d, body = %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/connections", nil)
	req.Header.Set("Origin", "http://panel.local")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://panel.local" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORSPreflightForbiddenOrigin(t *testing.T) {
	env := newTestEnv(t)
	env.srv.cfg.CORS.AllowedOrigins = []string{"http://panel.local"}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/connections", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want none", got)
	}
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		reuse  bool
	}{
		{"client supplied", "panel-42", true},
		{"missing", "", false},
		{"too long", strings.Repeat("x", maxRequestIDLength+1), false},
		{"control characters", "a\tb", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-ID")
			if tt.reuse && got != tt.header {
				t.Errorf("X-Request-ID = %q, want %q", got, tt.header)
			}
			if !tt.reuse && (got == "" || got == tt.header) {
				t.Errorf("X-Request-ID = %q, want a generated ID", got)
			}
		})
	}
}

func TestRequestBodyLimit(t *testing.T) {
	env := newTestEnv(t)
	body := `{"source_id":1,"sink_id":2,"pad":"` + strings.Repeat("x", maxRequestBodySize) + `"}`

	rec := env.do(t, http.MethodPost, "/api/v1/connections", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an oversized body", rec.Code)
	}
}

// =============================================================================
// WebSocket
// =============================================================================

func TestWebSocketBroadcast(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	//nolint:errcheck // Test deadline
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	sub := WSMessage{Type: WSTypeSubscribe, ID: "1", Payload: WSSubscribePayload{Channels: []string{controller.ChannelVolume}}}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var resp WSMessage
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if resp.Type != WSTypeResponse || resp.ID != "1" {
		t.Fatalf("subscribe response = %+v", resp)
	}

	env.srv.hub.Broadcast(controller.ChannelMute, map[string]any{"sink": "speakers"})
	env.srv.hub.Broadcast(controller.ChannelVolume, map[string]any{"sink": "speakers", "volume": 30})

	var ev WSMessage
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if ev.Type != WSTypeEvent || ev.EventType != controller.ChannelVolume {
		t.Errorf("event = %+v, want only the subscribed channel", ev)
	}
	if ev.Seq != 2 {
		t.Errorf("Seq = %d, want 2 (the skipped mute event still consumes a number)", ev.Seq)
	}
}

func TestWebSocketRejectsUnknownChannel(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	hub := NewHub(config.WebSocketConfig{}, log)
	client := &WSClient{hub: hub, send: make(chan []byte, 4), subscriptions: map[string]struct{}{}}
	hub.Register(client)

	client.handleMessage([]byte(`{"type":"subscribe","id":"7","payload":{"channels":["volume.changed","bogus"]}}`))

	var resp WSMessage
	if err := json.Unmarshal(<-client.send, &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Type != WSTypeError || resp.ID != "7" {
		t.Errorf("response = %+v, want error for request 7", resp)
	}
	if client.isSubscribed(controller.ChannelVolume) {
		t.Error("a rejected request must not subscribe any channel")
	}
}

func TestHubSubscriptionFilter(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	hub := NewHub(config.WebSocketConfig{}, log)

	all := &WSClient{hub: hub, send: make(chan []byte, 4), subscriptions: map[string]struct{}{WSChannelAll: {}}}
	one := &WSClient{hub: hub, send: make(chan []byte, 4), subscriptions: map[string]struct{}{controller.ChannelMute: {}}}
	hub.Register(all)
	hub.Register(one)

	hub.Broadcast(controller.ChannelConnection, nil)
	hub.Broadcast(controller.ChannelMute, nil)

	if len(all.send) != 2 {
		t.Errorf("wildcard client got %d events, want 2", len(all.send))
	}
	if len(one.send) != 1 {
		t.Errorf("mute client got %d events, want 1", len(one.send))
	}

	for i := 0; i < 3; i++ {
		hub.Broadcast(controller.ChannelMute, nil)
	}
	if hub.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1 for the full buffer", hub.Dropped())
	}

	hub.Unregister(one)
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}
}
