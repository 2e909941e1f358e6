package policy

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
)

// recordingReceive captures installed action lists. Queries are not used by
// the engines under test.
type recordingReceive struct {
	lists [][]Action
	types []ListType
	err   error
}

func (r *recordingReceive) SetListActions(actions []Action, list ListType) error {
	r.lists = append(r.lists, actions)
	r.types = append(r.types, list)
	return r.err
}

func (r *recordingReceive) IsRegistered(element.Kind, string) bool   { return true }
func (r *recordingReceive) IsDomainRegistrationComplete(string) bool { return true }
func (r *recordingReceive) Availability(element.Kind, string) (audio.Availability, error) {
	return audio.Availability{}, nil
}
func (r *recordingReceive) MuteState(element.Kind, string) (audio.MuteState, error) {
	return audio.Unmuted, nil
}
func (r *recordingReceive) InterruptState(string) (audio.InterruptState, error) {
	return audio.InterruptOff, nil
}
func (r *recordingReceive) Volume(element.Kind, string) (audio.Volume, error) { return 0, nil }
func (r *recordingReceive) MainVolume(element.Kind, string) (audio.MainVolume, error) {
	return 0, nil
}
func (r *recordingReceive) SoundProperty(element.Kind, string, int16) (int16, error) { return 0, nil }
func (r *recordingReceive) MainSoundProperty(element.Kind, string, int16) (int16, error) {
	return 0, nil
}
func (r *recordingReceive) SystemProperty(int16) (int16, error) { return 0, nil }
func (r *recordingReceive) ListMainConnections(element.Kind, string, Order) ([]ConnectionInfo, error) {
	return nil, nil
}
func (r *recordingReceive) ListClasses(element.Kind, string) ([]string, error) { return nil, nil }

// ─── Actions ────────────────────────────────────────────────────────

func TestActionParams(t *testing.T) {
	a := NewAction(ActionSetVolume, ParamSinkName, "amp", ParamMainVolume, "42", ParamPropertyValue, "x")

	if got := a.Param(ParamSinkName); got != "amp" {
		t.Errorf("Param(sinkName) = %q, want amp", got)
	}
	if a.Has(ParamSourceName) {
		t.Error("Has(sourceName) = true, want false")
	}
	if _, err := a.Require(ParamClassName); !errors.Is(err, ErrMissingParam) {
		t.Errorf("Require(className) error = %v, want ErrMissingParam", err)
	}

	v, err := a.RequireInt16(ParamMainVolume)
	if err != nil || v != 42 {
		t.Errorf("RequireInt16(mainVolume) = %d, %v; want 42, nil", v, err)
	}
	if _, ok, err := a.Int16(ParamRampDuration); ok || err != nil {
		t.Errorf("Int16(absent) ok=%v err=%v, want false, nil", ok, err)
	}
	if _, _, err := a.Int16(ParamPropertyValue); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Int16(bad) error = %v, want ErrInvalidParam", err)
	}
	if _, err := a.RequireInt16(ParamLimitVolume); !errors.Is(err, ErrMissingParam) {
		t.Errorf("RequireInt16(absent) error = %v, want ErrMissingParam", err)
	}
}

func TestActionJSON(t *testing.T) {
	raw := `{"list":"system","actions":[{"name":"ACTION_CONNECT","params":{"className":"BASE","sourceName":"radio","sinkName":"amp"}}]}`
	var msg ActionListMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := ActionListMessage{
		List:    ListSystem,
		Actions: []Action{NewAction(ActionConnect, ParamClassName, "BASE", ParamSourceName, "radio", ParamSinkName, "amp")},
	}
	if diff := cmp.Diff(want, msg); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
}

// ─── Order ──────────────────────────────────────────────────────────

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"", OrderOldest, false},
		{"O_NEWEST", OrderNewest, false},
		{"high_priority", OrderHighPriority, false},
		{" o_low_priority ", OrderLowPriority, false},
		{"sideways", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrder(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOrder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSortConnections(t *testing.T) {
	base := []ConnectionInfo{
		{Name: "a:x", Priority: 1},
		{Name: "b:x", Priority: 5},
		{Name: "c:x", Priority: 1},
		{Name: "d:x", Priority: 3},
	}
	names := func(cs []ConnectionInfo) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name
		}
		return out
	}

	tests := []struct {
		order Order
		want  []string
	}{
		{OrderOldest, []string{"a:x", "b:x", "c:x", "d:x"}},
		{OrderNewest, []string{"d:x", "c:x", "b:x", "a:x"}},
		{OrderHighPriority, []string{"b:x", "d:x", "a:x", "c:x"}},
		{OrderLowPriority, []string{"a:x", "c:x", "d:x", "b:x"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			conns := append([]ConnectionInfo(nil), base...)
			SortConnections(conns, tt.order)
			if diff := cmp.Diff(tt.want, names(conns)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ─── Static configuration ───────────────────────────────────────────

func writeStatic(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing policy file: %v", err)
	}
	return path
}

func TestLoadStatic(t *testing.T) {
	path := writeStatic(t, `
domains:
  - name: VirtDSP
    bus_name: virtdsp
sources:
  - name: radio
    domain: VirtDSP
sinks:
  - id: 1
    name: amp
    domain: VirtDSP
classes:
  - name: BASE
    sources: [radio]
    sinks: [amp]
system_properties:
  - {type: 1, value: 7}
`)
	cfg, err := LoadStatic(path)
	if err != nil {
		t.Fatalf("LoadStatic: %v", err)
	}

	if len(cfg.Domains()) != 1 || cfg.Domains()[0].BusName != "virtdsp" {
		t.Errorf("Domains() = %+v", cfg.Domains())
	}
	snk, ok := cfg.Sink("amp")
	if !ok || snk.ID != 1 || snk.Domain != "VirtDSP" {
		t.Errorf("Sink(amp) = %+v, %v", snk, ok)
	}
	if _, ok := cfg.Source("tv"); ok {
		t.Error("Source(tv) found, want missing")
	}
	if diff := cmp.Diff([]string{"amp"}, cfg.Classes()[0].Sinks); diff != "" {
		t.Errorf("class sinks (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]audio.SystemProperty{{Type: 1, Value: 7}}, cfg.SystemProperties()); diff != "" {
		t.Errorf("system properties (-want +got):\n%s", diff)
	}
}

func TestLoadStaticShippedExample(t *testing.T) {
	cfg, err := LoadStatic("../../configs/policy.yaml")
	if err != nil {
		t.Fatalf("LoadStatic: %v", err)
	}
	if len(cfg.Gateways()) != 1 || len(cfg.Classes()) != 2 {
		t.Errorf("got %d gateways and %d classes, want 1 and 2", len(cfg.Gateways()), len(cfg.Classes()))
	}
	if _, ok := cfg.Sink("cabin"); !ok {
		t.Error("Sink(cabin) missing")
	}
}

func TestLoadStaticEmptyPath(t *testing.T) {
	cfg, err := LoadStatic("")
	if err != nil {
		t.Fatalf("LoadStatic(\"\"): %v", err)
	}
	if len(cfg.Domains())+len(cfg.Sources())+len(cfg.Sinks()) != 0 {
		t.Errorf("empty path gave %+v", cfg)
	}
}

func TestLoadStaticInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"duplicate sink", "sinks:\n  - {name: amp, domain: D}\n  - {name: amp, domain: D}\n"},
		{"unknown domain", "domains:\n  - {name: D, bus_name: d}\nsources:\n  - {name: radio, domain: X}\n"},
		{"duplicate system property", "system_properties:\n  - {type: 1, value: 0}\n  - {type: 1, value: 2}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadStatic(writeStatic(t, tt.body))
			if !errors.Is(err, ErrInvalidStatic) {
				t.Errorf("LoadStatic() error = %v, want ErrInvalidStatic", err)
			}
		})
	}
}

// ─── Default engine ─────────────────────────────────────────────────

func TestDefaultBeforeStartup(t *testing.T) {
	d := NewDefault(nil)
	if err := d.HookConnectionRequest("BASE", "radio", "amp"); !errors.Is(err, ErrNotStarted) {
		t.Errorf("HookConnectionRequest() error = %v, want ErrNotStarted", err)
	}
}

func TestDefaultHooks(t *testing.T) {
	tests := []struct {
		name string
		call func(d *Default) error
		want []Action
	}{
		{
			name: "connect",
			call: func(d *Default) error { return d.HookConnectionRequest("BASE", "radio", "amp") },
			want: []Action{NewAction(ActionConnect, ParamClassName, "BASE", ParamSourceName, "radio", ParamSinkName, "amp")},
		},
		{
			name: "disconnect",
			call: func(d *Default) error { return d.HookDisconnectionRequest("BASE", "radio", "amp") },
			want: []Action{NewAction(ActionDisconnect, ParamClassName, "BASE", ParamSourceName, "radio", ParamSinkName, "amp")},
		},
		{
			name: "volume",
			call: func(d *Default) error { return d.HookSetVolume("amp", 30) },
			want: []Action{NewAction(ActionSetVolume, ParamSinkName, "amp", ParamMainVolume, "30")},
		},
		{
			name: "stored volume",
			call: func(d *Default) error { return d.HookStoredSinkVolume("BASE", "amp", 12) },
			want: []Action{NewAction(ActionSetVolume, ParamSinkName, "amp", ParamMainVolume, "12")},
		},
		{
			name: "mute",
			call: func(d *Default) error { return d.HookSetSinkMuteState("amp", audio.Muted) },
			want: []Action{NewAction(ActionMute, ParamSinkName, "amp")},
		},
		{
			name: "unmute",
			call: func(d *Default) error { return d.HookSetSinkMuteState("amp", audio.Unmuted) },
			want: []Action{NewAction(ActionUnmute, ParamSinkName, "amp")},
		},
		{
			name: "sink property",
			call: func(d *Default) error {
				return d.HookSetSinkMainSoundProperty("amp", audio.MainSoundProperty{Type: 3, Value: -2})
			},
			want: []Action{NewAction(ActionSetProperty, ParamSinkName, "amp", ParamPropertyType, "3", ParamPropertyValue, "-2")},
		},
		{
			name: "system property",
			call: func(d *Default) error { return d.HookSetSystemProperty(audio.SystemProperty{Type: 1, Value: 9}) },
			want: []Action{NewAction(ActionSetSystemProperty, ParamPropertyType, "1", ParamPropertyValue, "9")},
		},
		{
			name: "notification",
			call: func(d *Default) error {
				return d.HookSetMainSourceNotificationConfiguration("radio",
					audio.NotificationConfiguration{Type: 2, Status: audio.NotificationPeriodic, Parameter: 50})
			},
			want: []Action{NewAction(ActionSetNotificationConfiguration, ParamSourceName, "radio",
				ParamNotificationType, "2", ParamNotificationStatus, "NS_PERIODIC", ParamNotificationParam, "50")},
		},
		{
			name: "register domain",
			call: func(d *Default) error { return d.HookRegisterDomain("VirtDSP", nil) },
			want: []Action{NewAction(ActionRegister, ParamDomainName, "VirtDSP")},
		},
		{
			name: "interrupted",
			call: func(d *Default) error { return d.HookInterruptStateChanged("radio", audio.Interrupted) },
			want: []Action{NewAction(ActionSuspend, ParamSourceName, "radio")},
		},
		{
			name: "sink unavailable",
			call: func(d *Default) error {
				return d.HookSinkAvailabilityChanged("amp", audio.Availability{State: audio.Unavailable})
			},
			want: []Action{NewAction(ActionDisconnect, ParamSinkName, "amp")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recv := &recordingReceive{}
			d := NewDefault(nil)
			if err := d.Startup(recv); err != nil {
				t.Fatalf("Startup: %v", err)
			}
			if err := tt.call(d); err != nil {
				t.Fatalf("hook: %v", err)
			}
			if len(recv.lists) != 1 {
				t.Fatalf("installed %d lists, want 1", len(recv.lists))
			}
			if recv.types[0] != ListNormal {
				t.Errorf("list type = %q, want normal", recv.types[0])
			}
			if diff := cmp.Diff(tt.want, recv.lists[0]); diff != "" {
				t.Errorf("actions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultIgnoresUninterestingHooks(t *testing.T) {
	recv := &recordingReceive{}
	d := NewDefault(nil)
	_ = d.Startup(recv)

	_ = d.HookRegisterDomain("VirtDSP", audio.ErrDatabase)
	_ = d.HookSourceAvailabilityChanged("radio", audio.Availability{State: audio.Available})
	_ = d.HookInterruptStateChanged("radio", audio.InterruptUnknown)
	_ = d.HookVolumeChanged("amp", 10)
	_ = d.HookConnectionStateChange("radio:amp", audio.ConnectionConnected, nil)

	if len(recv.lists) != 0 {
		t.Errorf("installed %d lists, want 0: %v", len(recv.lists), recv.lists)
	}
}

// ─── MQTT engine ────────────────────────────────────────────────────

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	published    []published
	handlers     map[string]func(string, []byte) error
	unsubscribed []string
	publishErr   error
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[string]func(string, []byte) error)}
}

func (c *fakeClient) Publish(topic string, payload []byte, _ byte, _ bool) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{topic, payload})
	return nil
}

func (c *fakeClient) Subscribe(topic string, _ byte, h func(string, []byte) error) error {
	c.handlers[topic] = h
	return nil
}

func (c *fakeClient) Unsubscribe(topics ...string) error {
	c.unsubscribed = append(c.unsubscribed, topics...)
	return nil
}

// inlineExecutor runs closures immediately.
type inlineExecutor struct{ calls int }

func (e *inlineExecutor) Do(fn func()) error {
	e.calls++
	fn()
	return nil
}

var testMQTTConfig = MQTTConfig{
	HookTopic:    "audiocontrol/policy/hook",
	ActionsTopic: "audiocontrol/policy/actions",
	QoS:          1,
}

func TestMQTTEnginePublishesHooks(t *testing.T) {
	client := newFakeClient()
	e := NewMQTTEngine(nil, client, &inlineExecutor{}, testMQTTConfig)
	if err := e.Startup(&recordingReceive{}); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	if err := e.HookRegisterDomain("VirtDSP", nil); err != nil {
		t.Fatalf("HookRegisterDomain: %v", err)
	}
	if err := e.HookSetVolume("amp", 0); err != nil {
		t.Fatalf("HookSetVolume: %v", err)
	}
	if err := e.HookConnectionStateChange("radio:amp", audio.ConnectionConnected, audio.ErrAborted); err != nil {
		t.Fatalf("HookConnectionStateChange: %v", err)
	}

	if len(client.published) != 3 {
		t.Fatalf("published %d messages, want 3", len(client.published))
	}

	var got []HookMessage
	for _, p := range client.published {
		if p.topic != testMQTTConfig.HookTopic {
			t.Errorf("topic = %q, want %q", p.topic, testMQTTConfig.HookTopic)
		}
		var m HookMessage
		if err := json.Unmarshal(p.payload, &m); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		got = append(got, m)
	}

	zero := int16(0)
	want := []HookMessage{
		{Hook: "HookRegisterDomain", Name: "VirtDSP", Status: audio.CodeOK},
		{Hook: "HookSetVolume", Sink: "amp", Volume: &zero},
		{Hook: "HookConnectionStateChange", Name: "radio:amp", State: "CS_CONNECTED", Status: "E_ABORTED"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestMQTTEnginePublishError(t *testing.T) {
	client := newFakeClient()
	client.publishErr = errors.New("broker gone")
	e := NewMQTTEngine(nil, client, &inlineExecutor{}, testMQTTConfig)

	err := e.HookSinkMuteStateChanged("amp", audio.Muted)
	if !errors.Is(err, audio.ErrCommunication) {
		t.Errorf("error = %v, want ErrCommunication", err)
	}
}

func TestMQTTEngineInstallsActions(t *testing.T) {
	client := newFakeClient()
	exec := &inlineExecutor{}
	recv := &recordingReceive{}
	e := NewMQTTEngine(nil, client, exec, testMQTTConfig)
	if err := e.Startup(recv); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	h, ok := client.handlers[testMQTTConfig.ActionsTopic]
	if !ok {
		t.Fatal("actions topic not subscribed")
	}

	payload := `{"actions":[{"name":"ACTION_MUTE","params":{"sinkName":"amp"}}]}`
	if err := h(testMQTTConfig.ActionsTopic, []byte(payload)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if exec.calls != 1 {
		t.Errorf("executor calls = %d, want 1", exec.calls)
	}
	if len(recv.lists) != 1 || recv.types[0] != ListNormal {
		t.Fatalf("lists = %v types = %v", recv.lists, recv.types)
	}
	if diff := cmp.Diff([]Action{NewAction(ActionMute, ParamSinkName, "amp")}, recv.lists[0]); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}

	if err := h(testMQTTConfig.ActionsTopic, []byte("{not json")); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("bad payload error = %v, want ErrInvalidParam", err)
	}

	e.Shutdown()
	if diff := cmp.Diff([]string{testMQTTConfig.ActionsTopic}, client.unsubscribed); diff != "" {
		t.Errorf("unsubscribed (-want +got):\n%s", diff)
	}
	if err := h(testMQTTConfig.ActionsTopic, []byte(payload)); !errors.Is(err, ErrNotStarted) {
		t.Errorf("after shutdown error = %v, want ErrNotStarted", err)
	}
}
