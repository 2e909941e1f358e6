package element

import (
	"fmt"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// GatewayConfig describes a gateway. A gateway bridges two domains: audio
// arriving at its sink in one domain leaves through its source in the other.
type GatewayConfig struct {
	ID               audio.ID `yaml:"id" json:"id,omitempty"`
	Name             string   `yaml:"name" json:"name"`
	Sink             string   `yaml:"sink" json:"sink"`
	Source           string   `yaml:"source" json:"source"`
	ControlDomain    string   `yaml:"control_domain" json:"control_domain"`
	ConversionMatrix []bool   `yaml:"conversion_matrix" json:"conversion_matrix,omitempty"`
}

// Gateway connects two domains.
type Gateway struct {
	base
	sink          string
	source        string
	controlDomain string
	matrix        []bool
}

func newGateway(cfg GatewayConfig) (*Gateway, error) {
	if err := ValidateName(cfg.Name); err != nil {
		return nil, err
	}
	if cfg.Sink == "" || cfg.Source == "" {
		return nil, fmt.Errorf("%w: gateway %q needs a sink and a source", ErrInvalidConfig, cfg.Name)
	}
	return &Gateway{
		base:          base{id: cfg.ID, name: cfg.Name},
		sink:          cfg.Sink,
		source:        cfg.Source,
		controlDomain: cfg.ControlDomain,
		matrix:        append([]bool(nil), cfg.ConversionMatrix...),
	}, nil
}

// Kind implements Element.
func (g *Gateway) Kind() Kind { return KindGateway }

// SinkName is the gateway's input.
func (g *Gateway) SinkName() string { return g.sink }

// SourceName is the gateway's output.
func (g *Gateway) SourceName() string { return g.source }

// ControlDomain is the domain whose adapter switches the gateway.
func (g *Gateway) ControlDomain() string { return g.controlDomain }

// Config returns the gateway's configuration.
func (g *Gateway) Config() GatewayConfig {
	return GatewayConfig{
		ID:               g.id,
		Name:             g.name,
		Sink:             g.sink,
		Source:           g.source,
		ControlDomain:    g.controlDomain,
		ConversionMatrix: append([]bool(nil), g.matrix...),
	}
}
