package element

import "github.com/nerrad567/gray-logic-audio/internal/audio"

// SourceConfig describes a source.
type SourceConfig struct {
	EndpointConfig `yaml:",inline"`
	InterruptState audio.InterruptState `yaml:"interrupt_state" json:"interrupt_state"`
	State          audio.SourceState    `yaml:"state" json:"state"`
}

// Source produces audio.
type Source struct {
	endpoint
	interrupt audio.InterruptState
	state     audio.SourceState
}

func newSource(cfg SourceConfig) (*Source, error) {
	if err := cfg.validate(KindSource); err != nil {
		return nil, err
	}
	s := &Source{
		endpoint:  newEndpoint(cfg.EndpointConfig),
		interrupt: cfg.InterruptState,
		state:     cfg.State,
	}
	if s.interrupt == "" {
		s.interrupt = audio.InterruptOff
	}
	if s.state == "" {
		s.state = audio.SourceOff
	}
	return s, nil
}

// Kind implements Element.
func (s *Source) Kind() Kind { return KindSource }

func (s *Source) InterruptState() audio.InterruptState     { return s.interrupt }
func (s *Source) SetInterruptState(v audio.InterruptState) { s.interrupt = v }
func (s *Source) State() audio.SourceState                 { return s.state }
func (s *Source) SetState(v audio.SourceState)             { s.state = v }

// Config returns the configuration describing the source as it is now.
func (s *Source) Config() SourceConfig {
	return SourceConfig{EndpointConfig: s.config(), InterruptState: s.interrupt, State: s.state}
}
