package element

import "github.com/nerrad567/gray-logic-audio/internal/audio"

// SinkConfig describes a sink.
type SinkConfig struct {
	EndpointConfig `yaml:",inline"`
	MuteState      audio.MuteState `yaml:"mute_state" json:"mute_state"`
}

// Sink consumes audio.
type Sink struct {
	endpoint
	mute audio.MuteState
}

func newSink(cfg SinkConfig) (*Sink, error) {
	if err := cfg.validate(KindSink); err != nil {
		return nil, err
	}
	s := &Sink{endpoint: newEndpoint(cfg.EndpointConfig), mute: cfg.MuteState}
	if s.mute == "" {
		s.mute = audio.Unmuted
	}
	return s, nil
}

// Kind implements Element.
func (s *Sink) Kind() Kind { return KindSink }

func (s *Sink) MuteState() audio.MuteState     { return s.mute }
func (s *Sink) SetMuteState(m audio.MuteState) { s.mute = m }

// Config returns the configuration describing the sink as it is now.
func (s *Sink) Config() SinkConfig {
	return SinkConfig{EndpointConfig: s.config(), MuteState: s.mute}
}
