package controller

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/persistence"
	"github.com/nerrad567/gray-logic-audio/internal/policy"
)

// ─── Test Helpers ───────────────────────────────────────────────────

type request struct {
	Op     string
	Handle audio.Handle
	Target audio.ID
	Volume audio.Volume
}

// fakeDaemon hands out IDs and handles and keeps requests outstanding
// until the test acknowledges them.
type fakeDaemon struct {
	ids      map[element.Kind]audio.ID
	nextConn audio.ID
	seq      uint16
	requests []request
	pending  []audio.Handle
	aborted  []audio.Handle
	noRoute  bool
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{ids: make(map[element.Kind]audio.ID), nextConn: 500}
}

func (d *fakeDaemon) Enter(e element.Element) (audio.ID, error) {
	if e.ID() != audio.IDUnknown {
		return e.ID(), nil
	}
	d.ids[e.Kind()]++
	return 100 + d.ids[e.Kind()], nil
}

func (d *fakeDaemon) Remove(element.Kind, audio.ID) error { return nil }

func (d *fakeDaemon) GetRoute(source, sink audio.ID) ([]audio.Route, error) {
	if d.noRoute {
		return nil, nil
	}
	return []audio.Route{{
		SourceID: source,
		SinkID:   sink,
		Elements: []audio.RoutingElement{{SourceID: source, SinkID: sink, DomainID: 1}},
	}}, nil
}

func (d *fakeDaemon) request(op string, typ audio.HandleType, target audio.ID) audio.Handle {
	d.seq++
	h := audio.Handle{Type: typ, Index: d.seq}
	d.requests = append(d.requests, request{Op: op, Handle: h, Target: target})
	d.pending = append(d.pending, h)
	return h
}

func (d *fakeDaemon) Connect(_, sink audio.ID, _ audio.ConnectionFormat) (audio.Handle, audio.ID, error) {
	h := d.request("connect", audio.HandleConnect, sink)
	d.nextConn++
	return h, d.nextConn, nil
}

func (d *fakeDaemon) Disconnect(conn audio.ID) (audio.Handle, error) {
	return d.request("disconnect", audio.HandleDisconnect, conn), nil
}

func (d *fakeDaemon) SetSinkVolume(sink audio.ID, v audio.Volume, _ audio.RampType, _ uint16) (audio.Handle, error) {
	h := d.request("sink_volume", audio.HandleSetSinkVolume, sink)
	d.requests[len(d.requests)-1].Volume = v
	return h, nil
}

func (d *fakeDaemon) SetSourceVolume(source audio.ID, v audio.Volume, _ audio.RampType, _ uint16) (audio.Handle, error) {
	h := d.request("source_volume", audio.HandleSetSourceVolume, source)
	d.requests[len(d.requests)-1].Volume = v
	return h, nil
}

// requested returns the volume sent with h.
func (d *fakeDaemon) requested(h audio.Handle) audio.Volume {
	for _, r := range d.requests {
		if r.Handle == h {
			return r.Volume
		}
	}
	return 0
}

func (d *fakeDaemon) SetSourceState(source audio.ID, _ audio.SourceState) (audio.Handle, error) {
	return d.request("source_state", audio.HandleSetSourceState, source), nil
}

func (d *fakeDaemon) SetSinkSoundProperty(sink audio.ID, _ audio.SoundProperty) (audio.Handle, error) {
	return d.request("sink_property", audio.HandleSetSinkSoundProperty, sink), nil
}

func (d *fakeDaemon) SetSourceSoundProperty(source audio.ID, _ audio.SoundProperty) (audio.Handle, error) {
	return d.request("source_property", audio.HandleSetSourceSoundProperty, source), nil
}

func (d *fakeDaemon) SetSinkNotificationConfiguration(sink audio.ID, _ audio.NotificationConfiguration) (audio.Handle, error) {
	return d.request("sink_notification", audio.HandleSetSinkNotificationConfiguration, sink), nil
}

func (d *fakeDaemon) SetSourceNotificationConfiguration(source audio.ID, _ audio.NotificationConfiguration) (audio.Handle, error) {
	return d.request("source_notification", audio.HandleSetSourceNotificationConfiguration, source), nil
}

func (d *fakeDaemon) AbortAction(h audio.Handle) error {
	d.aborted = append(d.aborted, h)
	for i, p := range d.pending {
		if p == h {
			d.pending = append(d.pending[:i], d.pending[i+1:]...)
			break
		}
	}
	return nil
}

func (d *fakeDaemon) ops() []string {
	out := make([]string, len(d.requests))
	for i, r := range d.requests {
		out[i] = r.Op
	}
	return out
}

func (d *fakeDaemon) lastOp() string {
	if len(d.requests) == 0 {
		return ""
	}
	return d.requests[len(d.requests)-1].Op
}

// ack acknowledges the oldest outstanding request with result.
func (d *fakeDaemon) ack(t *testing.T, c *Controller, result error) audio.Handle {
	t.Helper()
	if len(d.pending) == 0 {
		t.Fatal("no outstanding request to acknowledge")
	}
	h := d.pending[0]
	d.pending = d.pending[1:]
	switch h.Type {
	case audio.HandleConnect:
		c.CbAckConnect(h, result)
	case audio.HandleDisconnect:
		c.CbAckDisconnect(h, result)
	case audio.HandleSetSinkVolume:
		c.CbAckSetSinkVolumeChange(h, d.requested(h), result)
	case audio.HandleSetSourceVolume:
		c.CbAckSetSourceVolumeChange(h, d.requested(h), result)
	case audio.HandleSetSourceState:
		c.CbAckSetSourceState(h, result)
	case audio.HandleSetSinkSoundProperty:
		c.CbAckSetSinkSoundProperty(h, result)
	case audio.HandleSetSourceSoundProperty:
		c.CbAckSetSourceSoundProperty(h, result)
	case audio.HandleSetSinkNotificationConfiguration:
		c.CbAckSetSinkNotificationConfiguration(h, result)
	case audio.HandleSetSourceNotificationConfiguration:
		c.CbAckSetSourceNotificationConfiguration(h, result)
	default:
		t.Fatalf("unexpected handle %s", h)
	}
	return h
}

func (d *fakeDaemon) ackAll(t *testing.T, c *Controller) {
	t.Helper()
	for len(d.pending) > 0 {
		d.ack(t, c, nil)
	}
}

// recordingPolicy is the built-in engine with a journal of the hooks the
// tests care about.
type recordingPolicy struct {
	*policy.Default
	calls []string
}

func (p *recordingPolicy) record(parts ...string) {
	p.calls = append(p.calls, strings.Join(parts, " "))
}

func (p *recordingPolicy) HookRegisterDomain(name string, status error) error {
	p.record("RegisterDomain", name, audio.Code(status))
	return p.Default.HookRegisterDomain(name, status)
}

func (p *recordingPolicy) HookConnectionRequest(class, source, sink string) error {
	p.record("Connect", class, source, sink)
	return p.Default.HookConnectionRequest(class, source, sink)
}

func (p *recordingPolicy) HookDisconnectionRequest(class, source, sink string) error {
	p.record("Disconnect", class, source, sink)
	return p.Default.HookDisconnectionRequest(class, source, sink)
}

func (p *recordingPolicy) HookSetVolume(sink string, v audio.MainVolume) error {
	p.record("SetVolume", sink, strconv.Itoa(int(v)))
	return p.Default.HookSetVolume(sink, v)
}

func (p *recordingPolicy) HookStoredSinkVolume(class, sink string, v audio.MainVolume) error {
	p.record("StoredSinkVolume", class, sink, strconv.Itoa(int(v)))
	return p.Default.HookStoredSinkVolume(class, sink, v)
}

func testStatic() *policy.StaticConfig {
	return &policy.StaticConfig{
		DomainList: []element.DomainConfig{{Name: "VirtDSP", BusName: "virtdsp"}},
		SourceList: []element.SourceConfig{
			{EndpointConfig: element.EndpointConfig{Name: "src1", Domain: "VirtDSP"}},
		},
		SinkList: []element.SinkConfig{
			{EndpointConfig: element.EndpointConfig{Name: "snk1", Domain: "VirtDSP"}},
		},
		ClassList: []element.ClassConfig{
			{Name: "BASE", Sources: []string{"src1"}, Sinks: []string{"snk1"}},
		},
	}
}

type fixture struct {
	c      *Controller
	daemon *fakeDaemon
	policy *recordingPolicy
	store  *memoryPersistence
}

func newFixture(t *testing.T, snap persistence.Snapshot) *fixture {
	t.Helper()
	f := &fixture{
		daemon: newFakeDaemon(),
		policy: &recordingPolicy{Default: policy.NewDefault(testStatic())},
		store:  &memoryPersistence{snap: snap},
	}
	f.c = New(Config{DefaultClass: "DEFAULT"}, Deps{
		Daemon:      f.daemon,
		Policy:      f.policy,
		Persistence: f.store,
	})
	if err := f.c.Startup(context.Background()); err != nil {
		t.Fatalf("Startup() error = %v", err)
	}
	return f
}

// register announces VirtDSP; the built-in engine then registers src1 and
// snk1.
func (f *fixture) register(t *testing.T) audio.ID {
	t.Helper()
	id, err := f.c.HookSystemRegisterDomain(element.DomainConfig{Name: "VirtDSP", BusName: "virtdsp"})
	if err != nil {
		t.Fatalf("HookSystemRegisterDomain() error = %v", err)
	}
	if !f.c.IsRegistered(element.KindSource, "src1") || !f.c.IsRegistered(element.KindSink, "snk1") {
		t.Fatal("static source and sink not registered")
	}
	return id
}

func (f *fixture) endpoints(t *testing.T) (*element.Source, *element.Sink) {
	t.Helper()
	src, ok := f.c.Sources().Get("src1")
	if !ok {
		t.Fatal("src1 not registered")
	}
	snk, ok := f.c.Sinks().Get("snk1")
	if !ok {
		t.Fatal("snk1 not registered")
	}
	return src, snk
}

// connect requests src1 -> snk1 and acknowledges the hop.
func (f *fixture) connect(t *testing.T) *element.Connection {
	t.Helper()
	src, snk := f.endpoints(t)
	id, err := f.c.HookUserConnectionRequest(src.ID(), snk.ID())
	if err != nil {
		t.Fatalf("HookUserConnectionRequest() error = %v", err)
	}
	f.daemon.ackAll(t, f.c)
	conn, ok := f.c.Connections().GetByID(id)
	if !ok {
		t.Fatal("connection vanished")
	}
	if conn.State() != audio.ConnectionConnected {
		t.Fatalf("connection state = %s, want CS_CONNECTED", conn.State())
	}
	return conn
}

// ─── Scenarios ──────────────────────────────────────────────────────

func TestRegisterDomainForwardedOnce(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)

	want := []string{"RegisterDomain VirtDSP E_OK"}
	if diff := cmp.Diff(want, f.policy.calls); diff != "" {
		t.Errorf("hook calls mismatch (-want +got):\n%s", diff)
	}
	if n := f.c.queue.Len(); n != 0 {
		t.Errorf("queue length = %d, want 0", n)
	}
	if !f.c.root.IsEmpty() {
		t.Error("action tree not empty after drain")
	}
}

func TestDisconnectionRequestRemovesConnection(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	conn := f.connect(t)
	id := conn.ID()

	if err := f.c.HookUserDisconnectionRequest(id); err != nil {
		t.Fatalf("HookUserDisconnectionRequest() error = %v", err)
	}
	want := "Disconnect BASE src1 snk1"
	if got := f.policy.calls[len(f.policy.calls)-1]; got != want {
		t.Errorf("last hook = %q, want %q", got, want)
	}
	if conn.State() != audio.ConnectionDisconnecting {
		t.Errorf("state before ack = %s, want CS_DISCONNECTING", conn.State())
	}
	if f.daemon.lastOp() != "disconnect" {
		t.Fatalf("last request = %q, want disconnect", f.daemon.lastOp())
	}

	f.daemon.ack(t, f.c, nil)

	if _, ok := f.c.Connections().GetByID(id); ok {
		t.Error("connection still registered after disconnect ack")
	}
	cl, _ := f.c.Classes().Get("BASE")
	if n := len(cl.Connections()); n != 0 {
		t.Errorf("class still governs %d connections", n)
	}
}

func TestConnectionRequestExisting(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	conn := f.connect(t)
	src, snk := f.endpoints(t)

	id, err := f.c.HookUserConnectionRequest(src.ID(), snk.ID())
	if !errors.Is(err, audio.ErrAlreadyExists) {
		t.Fatalf("error = %v, want ErrAlreadyExists", err)
	}
	if id != conn.ID() {
		t.Errorf("id = %d, want %d", id, conn.ID())
	}
}

func TestConnectWithoutRouteUndoes(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	f.daemon.noRoute = true

	err := f.c.SetListActions([]policy.Action{
		policy.NewAction(policy.ActionConnect, policy.ParamSourceName, "src1", policy.ParamSinkName, "snk1"),
	}, policy.ListNormal)
	if err != nil {
		t.Fatalf("SetListActions() error = %v", err)
	}
	if _, ok := f.c.Connections().Get(element.ConnectionName("src1", "snk1")); ok {
		t.Error("connection created by a failed connect was not removed")
	}
	if !f.c.root.IsEmpty() {
		t.Error("action tree not empty after undo")
	}
}

// ─── Dispatch Rules ─────────────────────────────────────────────────

func TestNoForwardWhileWorking(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	src, snk := f.endpoints(t)

	if _, err := f.c.HookUserConnectionRequest(src.ID(), snk.ID()); err != nil {
		t.Fatalf("HookUserConnectionRequest() error = %v", err)
	}
	before := f.c.Forwarded()

	if err := f.c.HookUserSetVolume(snk.ID(), 40); err != nil {
		t.Fatalf("HookUserSetVolume() error = %v", err)
	}
	if got := f.c.Forwarded(); got != before {
		t.Errorf("forwarded while connect pending: %d, want %d", got, before)
	}
	if n := f.c.queue.Len(); n != 1 {
		t.Errorf("queue length = %d, want 1", n)
	}

	f.daemon.ack(t, f.c, nil)
	if got := f.c.Forwarded(); got != before+1 {
		t.Errorf("forwarded after ack = %d, want %d", got, before+1)
	}
	if f.daemon.lastOp() != "sink_volume" {
		t.Fatalf("last request = %q, want sink_volume", f.daemon.lastOp())
	}

	f.daemon.ack(t, f.c, nil)
	if snk.MainVolume() != 40 {
		t.Errorf("main volume = %d, want 40", snk.MainVolume())
	}
	if want := snk.ToVolume(40); snk.Volume() != want {
		t.Errorf("volume = %d, want %d", snk.Volume(), want)
	}
}

func TestSinkVolumeFollowsAck(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	_, snk := f.endpoints(t)
	f.connect(t)

	if err := f.c.HookUserSetVolume(snk.ID(), 10); err != nil {
		t.Fatalf("HookUserSetVolume() error = %v", err)
	}
	if f.daemon.lastOp() != "sink_volume" || len(f.daemon.pending) != 1 {
		t.Fatalf("last request = %q with %d pending, want one sink_volume", f.daemon.lastOp(), len(f.daemon.pending))
	}
	h := f.daemon.pending[0]
	f.daemon.pending = nil

	// The routing side stopped the ramp at a different level.
	settled := snk.ToVolume(25)
	if settled == f.daemon.requested(h) {
		t.Fatal("test volumes must differ")
	}
	f.c.CbAckSetSinkVolumeChange(h, settled, nil)

	if snk.Volume() != settled {
		t.Errorf("volume = %d, want the acknowledged %d", snk.Volume(), settled)
	}
	if want := snk.ToMainVolume(settled); snk.MainVolume() != want {
		t.Errorf("main volume = %d, want %d", snk.MainVolume(), want)
	}
	if len(f.c.ackedVolumes) != 0 {
		t.Errorf("acknowledged volumes left behind: %v", f.c.ackedVolumes)
	}
}

func TestFailedDisconnectRestoresState(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	conn := f.connect(t)

	err := f.c.SetListActions([]policy.Action{
		policy.NewAction(policy.ActionDisconnect, policy.ParamSourceName, "src1", policy.ParamSinkName, "snk1"),
	}, policy.ListNormal)
	if err != nil {
		t.Fatalf("SetListActions() error = %v", err)
	}
	if conn.State() != audio.ConnectionDisconnecting {
		t.Fatalf("state = %s, want %s", conn.State(), audio.ConnectionDisconnecting)
	}

	f.daemon.ack(t, f.c, audio.ErrNotPossible)
	if conn.State() != audio.ConnectionConnected {
		t.Errorf("state after failed disconnect = %s, want %s", conn.State(), audio.ConnectionConnected)
	}
	if _, ok := f.c.Connections().Get(conn.Name()); !ok {
		t.Error("connection removed although the routing side kept it")
	}
	if !f.c.root.IsEmpty() {
		t.Error("action tree not empty after undo")
	}
}

func TestTriggersForwardedInOrder(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	src, snk := f.endpoints(t)

	if _, err := f.c.HookUserConnectionRequest(src.ID(), snk.ID()); err != nil {
		t.Fatalf("HookUserConnectionRequest() error = %v", err)
	}
	for _, v := range []audio.MainVolume{10, 20, 30} {
		if err := f.c.HookUserSetVolume(snk.ID(), v); err != nil {
			t.Fatalf("HookUserSetVolume(%d) error = %v", v, err)
		}
	}
	f.daemon.ackAll(t, f.c)

	want := []string{
		"RegisterDomain VirtDSP E_OK",
		"Connect BASE src1 snk1",
		"SetVolume snk1 10",
		"SetVolume snk1 20",
		"SetVolume snk1 30",
	}
	if diff := cmp.Diff(want, f.policy.calls); diff != "" {
		t.Errorf("hook order mismatch (-want +got):\n%s", diff)
	}
	if snk.MainVolume() != 30 {
		t.Errorf("main volume = %d, want 30", snk.MainVolume())
	}
}

func TestUndoFinishesBeforeNextTrigger(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	_, snk := f.endpoints(t)

	err := f.c.SetListActions([]policy.Action{
		policy.NewAction(policy.ActionConnect, policy.ParamSourceName, "src1", policy.ParamSinkName, "snk1"),
		policy.NewAction(policy.ActionSetVolume, policy.ParamSinkName, "ghost", policy.ParamMainVolume, "10"),
	}, policy.ListNormal)
	if err != nil {
		t.Fatalf("SetListActions() error = %v", err)
	}
	if err := f.c.HookUserSetSinkMuteState(snk.ID(), audio.Muted); err != nil {
		t.Fatalf("HookUserSetSinkMuteState() error = %v", err)
	}
	forwarded := f.c.Forwarded()

	// The connect succeeds, the volume fails and the connect is undone.
	f.daemon.ack(t, f.c, nil)
	if f.daemon.lastOp() != "disconnect" {
		t.Fatalf("last request = %q, want disconnect", f.daemon.lastOp())
	}
	if f.c.Forwarded() != forwarded || f.c.queue.Len() != 1 {
		t.Fatal("trigger forwarded while undo was running")
	}

	f.daemon.ack(t, f.c, nil)
	if _, ok := f.c.Connections().Get(element.ConnectionName("src1", "snk1")); ok {
		t.Error("connection survived undo")
	}
	if f.c.Forwarded() != forwarded+1 || f.c.queue.Len() != 0 {
		t.Errorf("mute request not forwarded after undo")
	}
	if f.daemon.lastOp() != "sink_volume" {
		t.Errorf("last request = %q, want sink_volume for mute", f.daemon.lastOp())
	}
}

func TestFailedAckUndoesBatch(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	src, snk := f.endpoints(t)

	id, err := f.c.HookUserConnectionRequest(src.ID(), snk.ID())
	if err != nil {
		t.Fatalf("HookUserConnectionRequest() error = %v", err)
	}
	f.daemon.ack(t, f.c, audio.ErrNotPossible)

	conn, ok := f.c.Connections().GetByID(id)
	if !ok {
		t.Fatal("user requested connection removed by undo")
	}
	if conn.State() != audio.ConnectionDisconnected {
		t.Errorf("state = %s, want CS_DISCONNECTED", conn.State())
	}
	if !f.c.root.IsEmpty() {
		t.Error("action tree not empty")
	}
}

// ─── Actions ────────────────────────────────────────────────────────

func TestSetListActionsRejects(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)

	tests := []struct {
		name    string
		actions []policy.Action
		want    []error
	}{
		{"empty", nil, []error{audio.ErrNoChange}},
		{"unknown", []policy.Action{policy.NewAction("ACTION_DANCE")}, []error{audio.ErrNotPossible, ErrUnknownAction}},
		{
			"missing sink",
			[]policy.Action{policy.NewAction(policy.ActionConnect, policy.ParamSourceName, "src1")},
			[]error{audio.ErrNotPossible, policy.ErrMissingParam},
		},
		{
			"volume out of range",
			[]policy.Action{policy.NewAction(policy.ActionSetVolume, policy.ParamSinkName, "snk1", policy.ParamMainVolume, "300")},
			[]error{policy.ErrInvalidParam},
		},
		{
			"valid then invalid",
			[]policy.Action{
				policy.NewAction(policy.ActionMute, policy.ParamSinkName, "snk1"),
				policy.NewAction(policy.ActionLimit, policy.ParamSinkName, "snk1"),
			},
			[]error{policy.ErrMissingParam},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.c.SetListActions(tt.actions, policy.ListNormal)
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("error = %v, want %v", err, want)
				}
			}
			if !f.c.root.IsEmpty() {
				t.Error("rejected list reached the action tree")
			}
			if len(f.daemon.pending) != 0 {
				t.Error("rejected list sent requests")
			}
		})
	}
}

func TestClassMuteAndUnmute(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	conn := f.connect(t)
	_, snk := f.endpoints(t)

	mute := policy.NewAction(policy.ActionMute, policy.ParamClassName, "BASE")
	if err := f.c.SetListActions([]policy.Action{mute}, policy.ListNormal); err != nil {
		t.Fatalf("SetListActions(mute) error = %v", err)
	}
	f.daemon.ackAll(t, f.c)
	if snk.MuteState() != audio.Muted || snk.Volume() != audio.MinVolume {
		t.Errorf("after mute: state %s volume %d", snk.MuteState(), snk.Volume())
	}
	if conn.MuteState() != audio.Muted {
		t.Errorf("connection mute state = %s", conn.MuteState())
	}

	unmute := policy.NewAction(policy.ActionUnmute, policy.ParamSinkName, "snk1")
	if err := f.c.SetListActions([]policy.Action{unmute}, policy.ListNormal); err != nil {
		t.Fatalf("SetListActions(unmute) error = %v", err)
	}
	f.daemon.ackAll(t, f.c)
	if snk.MuteState() != audio.Unmuted {
		t.Errorf("after unmute: state %s", snk.MuteState())
	}
}

func TestClassActionSeesEarlierConnect(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	_, snk := f.endpoints(t)

	err := f.c.SetListActions([]policy.Action{
		policy.NewAction(policy.ActionConnect, policy.ParamSourceName, "src1", policy.ParamSinkName, "snk1"),
		policy.NewAction(policy.ActionMute, policy.ParamClassName, "BASE"),
	}, policy.ListNormal)
	if err != nil {
		t.Fatalf("SetListActions() error = %v", err)
	}
	f.daemon.ackAll(t, f.c)

	if diff := cmp.Diff([]string{"connect", "sink_volume"}, f.daemon.ops()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	if snk.MuteState() != audio.Muted {
		t.Errorf("mute state = %s, want MS_MUTED", snk.MuteState())
	}
}

func TestSuspendResume(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	conn := f.connect(t)
	src, _ := f.endpoints(t)

	suspend := policy.NewAction(policy.ActionSuspend, policy.ParamSourceName, "src1")
	if err := f.c.SetListActions([]policy.Action{suspend}, policy.ListNormal); err != nil {
		t.Fatalf("SetListActions(suspend) error = %v", err)
	}
	f.daemon.ackAll(t, f.c)
	if src.State() != audio.SourcePaused || conn.State() != audio.ConnectionSuspended {
		t.Errorf("after suspend: source %s connection %s", src.State(), conn.State())
	}

	resume := policy.NewAction(policy.ActionResume, policy.ParamClassName, "BASE")
	if err := f.c.SetListActions([]policy.Action{resume}, policy.ListNormal); err != nil {
		t.Fatalf("SetListActions(resume) error = %v", err)
	}
	f.daemon.ackAll(t, f.c)
	if src.State() != audio.SourceOn || conn.State() != audio.ConnectionConnected {
		t.Errorf("after resume: source %s connection %s", src.State(), conn.State())
	}
}

func TestSetPropertyRecordsInClass(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	_, snk := f.endpoints(t)

	if err := f.c.HookUserSetSinkMainSoundProperty(snk.ID(), audio.MainSoundProperty{Type: 3, Value: 7}); err != nil {
		t.Fatalf("HookUserSetSinkMainSoundProperty() error = %v", err)
	}
	f.daemon.ackAll(t, f.c)

	v, err := f.c.MainSoundProperty(element.KindSink, "snk1", 3)
	if err != nil || v != 7 {
		t.Fatalf("MainSoundProperty() = %d, %v; want 7", v, err)
	}
	cl, _ := f.c.Classes().Get("BASE")
	got := cl.LastSoundProperties(element.Endpoint{Kind: element.KindSink, Name: "snk1"})
	if diff := cmp.Diff([]audio.MainSoundProperty{{Type: 3, Value: 7}}, got); diff != "" {
		t.Errorf("class sound properties mismatch (-want +got):\n%s", diff)
	}
}

func TestSetSystemProperty(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})

	if err := f.c.HookUserSetSystemProperty(audio.SystemProperty{Type: 1, Value: 5}); err != nil {
		t.Fatalf("HookUserSetSystemProperty() error = %v", err)
	}
	v, err := f.c.SystemProperty(1)
	if err != nil || v != 5 {
		t.Errorf("SystemProperty(1) = %d, %v; want 5", v, err)
	}
	if len(f.daemon.requests) != 0 {
		t.Error("system property sent a routing request")
	}
}

// ─── Recovery ───────────────────────────────────────────────────────

func TestStoredDataReplayedAfterRegistration(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{
		Connections: []persistence.ClassConnections{
			{Class: "BASE", Connections: []element.ConnectionPair{{Source: "src1", Sink: "snk1"}}},
		},
		Volumes: []persistence.ClassVolumes{
			{Class: "BASE", Volumes: []persistence.SinkVolume{{Sink: "snk1", Volume: 40}}},
		},
	})
	domain := f.register(t)
	if _, ok := f.c.Connections().Get(element.ConnectionName("src1", "snk1")); ok {
		t.Fatal("stored connection replayed before registration completed")
	}

	if err := f.c.HookSystemDomainRegistrationComplete(domain); err != nil {
		t.Fatalf("HookSystemDomainRegistrationComplete() error = %v", err)
	}
	f.daemon.ackAll(t, f.c)

	want := []string{
		"RegisterDomain VirtDSP E_OK",
		"StoredSinkVolume BASE snk1 40",
		"Connect BASE src1 snk1",
	}
	if diff := cmp.Diff(want, f.policy.calls); diff != "" {
		t.Errorf("hook calls mismatch (-want +got):\n%s", diff)
	}
	_, snk := f.endpoints(t)
	if snk.MainVolume() != 40 {
		t.Errorf("main volume = %d, want 40", snk.MainVolume())
	}
	conn, ok := f.c.Connections().Get(element.ConnectionName("src1", "snk1"))
	if !ok || conn.State() != audio.ConnectionConnected {
		t.Fatal("stored connection not reconnected")
	}

	if err := f.c.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	snap := f.store.snap
	if diff := cmp.Diff([]persistence.ClassConnections{
		{Class: "BASE", Connections: []element.ConnectionPair{{Source: "src1", Sink: "snk1"}}},
	}, snap.Connections); diff != "" {
		t.Errorf("saved connections mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]persistence.ClassVolumes{
		{Class: "BASE", Volumes: []persistence.SinkVolume{{Sink: "snk1", Volume: 40}}},
	}, snap.Volumes); diff != "" {
		t.Errorf("saved volumes mismatch (-want +got):\n%s", diff)
	}
	if f.c.Sources().Len() != 0 || f.c.Connections().Len() != 0 {
		t.Error("elements left after shutdown")
	}
}

func TestRegistrationTimeoutReplays(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{
		Volumes: []persistence.ClassVolumes{
			{Class: "BASE", Volumes: []persistence.SinkVolume{{Sink: "snk1", Volume: 25}}},
		},
	})
	f.register(t)

	f.c.registrationTimeout()
	f.daemon.ackAll(t, f.c)

	if !f.c.IsDomainRegistrationComplete("VirtDSP") {
		t.Error("domain not forced complete")
	}
	_, snk := f.endpoints(t)
	if snk.MainVolume() != 25 {
		t.Errorf("main volume = %d, want 25", snk.MainVolume())
	}
	if !f.c.Status().Replayed {
		t.Error("status does not report replay")
	}
}

// ─── Queries ────────────────────────────────────────────────────────

func TestListMainConnections(t *testing.T) {
	f := newFixture(t, persistence.Snapshot{})
	f.register(t)
	conn := f.connect(t)

	for _, kind := range []element.Kind{element.KindClass, element.KindSource, element.KindSink} {
		name := map[element.Kind]string{
			element.KindClass:  "BASE",
			element.KindSource: "src1",
			element.KindSink:   "snk1",
		}[kind]
		got, err := f.c.ListMainConnections(kind, name, policy.OrderOldest)
		if err != nil {
			t.Fatalf("ListMainConnections(%s) error = %v", kind, err)
		}
		if len(got) != 1 || got[0].ID != conn.ID() || got[0].State != audio.ConnectionConnected {
			t.Errorf("ListMainConnections(%s) = %+v", kind, got)
		}
	}

	classes, err := f.c.ListClasses(element.KindSink, "snk1")
	if err != nil {
		t.Fatalf("ListClasses() error = %v", err)
	}
	if diff := cmp.Diff([]string{"BASE"}, classes); diff != "" {
		t.Errorf("ListClasses mismatch (-want +got):\n%s", diff)
	}
}
