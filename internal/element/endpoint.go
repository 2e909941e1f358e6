package element

import (
	"fmt"
	"sort"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// EndpointConfig is the configuration shared by sources and sinks.
type EndpointConfig struct {
	ID                             audio.ID                          `yaml:"id" json:"id,omitempty"`
	Name                           string                            `yaml:"name" json:"name"`
	Domain                         string                            `yaml:"domain" json:"domain"`
	Class                          string                            `yaml:"class" json:"class,omitempty"`
	Visible                        bool                              `yaml:"visible" json:"visible"`
	Priority                       int32                             `yaml:"priority" json:"priority"`
	Volume                         audio.Volume                      `yaml:"volume" json:"volume"`
	MainVolume                     audio.MainVolume                  `yaml:"main_volume" json:"main_volume"`
	Availability                   audio.Availability                `yaml:"availability" json:"availability"`
	SoundProperties                []audio.SoundProperty             `yaml:"sound_properties" json:"sound_properties,omitempty"`
	MainSoundProperties            []audio.MainSoundProperty         `yaml:"main_sound_properties" json:"main_sound_properties,omitempty"`
	NotificationConfigurations     []audio.NotificationConfiguration `yaml:"notification_configurations" json:"notification_configurations,omitempty"`
	MainNotificationConfigurations []audio.NotificationConfiguration `yaml:"main_notification_configurations" json:"main_notification_configurations,omitempty"`
	VolumeMap                      VolumeMap                         `yaml:"volume_map" json:"volume_map,omitempty"`
}

func (c EndpointConfig) validate(kind Kind) error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if c.Domain == "" {
		return fmt.Errorf("%w: %s %q has no domain", ErrInvalidConfig, kind, c.Name)
	}
	return nil
}

// endpoint holds the state sources and sinks have in common.
type endpoint struct {
	base
	domain            string
	class             string
	visible           bool
	priority          int32
	volume            audio.Volume
	mainVolume        audio.MainVolume
	availability      audio.Availability
	sound             map[int16]int16
	mainSound         map[int16]int16
	notifications     map[int16]audio.NotificationConfiguration
	mainNotifications map[int16]audio.NotificationConfiguration
	volumeMap         VolumeMap
}

func newEndpoint(c EndpointConfig) endpoint {
	ep := endpoint{
		base:              base{id: c.ID, name: c.Name},
		domain:            c.Domain,
		class:             c.Class,
		visible:           c.Visible,
		priority:          c.Priority,
		volume:            c.Volume,
		mainVolume:        c.MainVolume,
		availability:      c.Availability,
		sound:             make(map[int16]int16, len(c.SoundProperties)),
		mainSound:         make(map[int16]int16, len(c.MainSoundProperties)),
		notifications:     make(map[int16]audio.NotificationConfiguration),
		mainNotifications: make(map[int16]audio.NotificationConfiguration),
		volumeMap:         c.VolumeMap,
	}
	if ep.availability.State == "" {
		ep.availability.State = audio.AvailabilityUnknown
	}
	for _, p := range c.SoundProperties {
		ep.sound[p.Type] = p.Value
	}
	for _, p := range c.MainSoundProperties {
		ep.mainSound[p.Type] = p.Value
	}
	for _, n := range c.NotificationConfigurations {
		ep.notifications[n.Type] = n
	}
	for _, n := range c.MainNotificationConfigurations {
		ep.mainNotifications[n.Type] = n
	}
	return ep
}

func (e *endpoint) config() EndpointConfig {
	c := EndpointConfig{
		ID:           e.id,
		Name:         e.name,
		Domain:       e.domain,
		Class:        e.class,
		Visible:      e.visible,
		Priority:     e.priority,
		Volume:       e.volume,
		MainVolume:   e.mainVolume,
		Availability: e.availability,
		VolumeMap:    e.volumeMap,
	}
	for _, t := range sortedKeys(e.sound) {
		c.SoundProperties = append(c.SoundProperties, audio.SoundProperty{Type: t, Value: e.sound[t]})
	}
	c.MainSoundProperties = e.MainSoundProperties()
	for _, t := range sortedKeys(e.notifications) {
		c.NotificationConfigurations = append(c.NotificationConfigurations, e.notifications[t])
	}
	for _, t := range sortedKeys(e.mainNotifications) {
		c.MainNotificationConfigurations = append(c.MainNotificationConfigurations, e.mainNotifications[t])
	}
	return c
}

// DomainName is the name of the domain the endpoint belongs to.
func (e *endpoint) DomainName() string { return e.domain }

// ClassName is the class configured on the endpoint, if any.
func (e *endpoint) ClassName() string { return e.class }

func (e *endpoint) Visible() bool   { return e.visible }
func (e *endpoint) Priority() int32 { return e.priority }

func (e *endpoint) Volume() audio.Volume         { return e.volume }
func (e *endpoint) SetVolume(v audio.Volume)     { e.volume = v }
func (e *endpoint) MainVolume() audio.MainVolume { return e.mainVolume }

// SetMainVolume clamps v into the main volume range.
func (e *endpoint) SetMainVolume(v audio.MainVolume) {
	e.mainVolume = min(max(v, audio.MinMainVolume), audio.MaxMainVolume)
}

// ToVolume converts a main volume with the endpoint's volume map.
func (e *endpoint) ToVolume(v audio.MainVolume) audio.Volume { return e.volumeMap.ToVolume(v) }

// ToMainVolume converts a routing volume with the endpoint's volume map.
func (e *endpoint) ToMainVolume(v audio.Volume) audio.MainVolume { return e.volumeMap.ToMain(v) }

func (e *endpoint) Availability() audio.Availability     { return e.availability }
func (e *endpoint) SetAvailability(a audio.Availability) { e.availability = a }

// SoundProperty returns the value of a routing sound property.
func (e *endpoint) SoundProperty(typ int16) (int16, error) {
	v, ok := e.sound[typ]
	if !ok {
		return 0, fmt.Errorf("%w: sound property %d on %q", audio.ErrNonExistent, typ, e.name)
	}
	return v, nil
}

func (e *endpoint) SetSoundProperty(p audio.SoundProperty) { e.sound[p.Type] = p.Value }

// MainSoundProperty returns the value of a main sound property.
func (e *endpoint) MainSoundProperty(typ int16) (int16, error) {
	v, ok := e.mainSound[typ]
	if !ok {
		return 0, fmt.Errorf("%w: main sound property %d on %q", audio.ErrNonExistent, typ, e.name)
	}
	return v, nil
}

func (e *endpoint) SetMainSoundProperty(p audio.MainSoundProperty) { e.mainSound[p.Type] = p.Value }

// MainSoundProperties returns all main sound properties ordered by type.
func (e *endpoint) MainSoundProperties() []audio.MainSoundProperty {
	out := make([]audio.MainSoundProperty, 0, len(e.mainSound))
	for _, t := range sortedKeys(e.mainSound) {
		out = append(out, audio.MainSoundProperty{Type: t, Value: e.mainSound[t]})
	}
	return out
}

// NotificationConfiguration returns the routing notification configuration of typ.
func (e *endpoint) NotificationConfiguration(typ int16) (audio.NotificationConfiguration, bool) {
	n, ok := e.notifications[typ]
	return n, ok
}

func (e *endpoint) SetNotificationConfiguration(n audio.NotificationConfiguration) {
	e.notifications[n.Type] = n
}

// MainNotificationConfiguration returns the main notification configuration of typ.
func (e *endpoint) MainNotificationConfiguration(typ int16) (audio.NotificationConfiguration, bool) {
	n, ok := e.mainNotifications[typ]
	return n, ok
}

func (e *endpoint) SetMainNotificationConfiguration(n audio.NotificationConfiguration) {
	e.mainNotifications[n.Type] = n
}

func sortedKeys[V any](m map[int16]V) []int16 {
	keys := make([]int16, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
