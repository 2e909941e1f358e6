package controller

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/persistence"
)

// Daemon is the routing side. Every asynchronous request returns the handle
// its acknowledgement will carry; the controller's CbAck callbacks must be
// invoked with it.
type Daemon interface {
	element.Database

	// GetRoute lists the routes from source to sink, best first.
	GetRoute(source, sink audio.ID) ([]audio.Route, error)

	Connect(source, sink audio.ID, format audio.ConnectionFormat) (audio.Handle, audio.ID, error)
	Disconnect(connection audio.ID) (audio.Handle, error)
	SetSinkVolume(sink audio.ID, v audio.Volume, ramp audio.RampType, duration uint16) (audio.Handle, error)
	SetSourceVolume(source audio.ID, v audio.Volume, ramp audio.RampType, duration uint16) (audio.Handle, error)
	SetSourceState(source audio.ID, s audio.SourceState) (audio.Handle, error)
	SetSinkSoundProperty(sink audio.ID, p audio.SoundProperty) (audio.Handle, error)
	SetSourceSoundProperty(source audio.ID, p audio.SoundProperty) (audio.Handle, error)
	SetSinkNotificationConfiguration(sink audio.ID, c audio.NotificationConfiguration) (audio.Handle, error)
	SetSourceNotificationConfiguration(source audio.ID, c audio.NotificationConfiguration) (audio.Handle, error)

	// AbortAction asks the routing side to give up on an in-flight request.
	AbortAction(h audio.Handle) error
}

// Persistence stores the restart-recovery snapshot.
type Persistence interface {
	Load(ctx context.Context) (persistence.Snapshot, error)
	Save(ctx context.Context, snap persistence.Snapshot) error
}

// Notifier receives client-facing change events.
type Notifier interface {
	Broadcast(channel string, payload any)
}

// Metrics receives time-series points.
type Metrics interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]interface{})
}

// Scheduler runs fn on the controller goroutine after d.
type Scheduler interface {
	After(d time.Duration, fn func()) (stop func() bool)
}

// Logger is the logging surface used by the controller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopNotifier struct{}

func (noopNotifier) Broadcast(string, any) {}

type noopMetrics struct{}

func (noopMetrics) WritePoint(string, map[string]string, map[string]interface{}) {}

type memoryPersistence struct{ snap persistence.Snapshot }

func (m *memoryPersistence) Load(context.Context) (persistence.Snapshot, error) { return m.snap, nil }

func (m *memoryPersistence) Save(_ context.Context, s persistence.Snapshot) error {
	m.snap = s
	return nil
}

// Client event channels.
const (
	ChannelConnection     = "connection.changed"
	ChannelVolume         = "volume.changed"
	ChannelMute           = "mute.changed"
	ChannelSoundProperty  = "sound_property.changed"
	ChannelSystemProperty = "system_property.changed"
	ChannelAvailability   = "availability.changed"
	ChannelElement        = "element.changed"
)
