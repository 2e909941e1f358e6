package element

import (
	"fmt"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// DomainState mirrors the routing side's domain lifecycle.
type DomainState string

// DomainState constants.
const (
	DomainUnknown            DomainState = "DS_UNKNOWN"
	DomainControlled         DomainState = "DS_CONTROLLED"
	DomainIndependentStartup DomainState = "DS_INDEPENDENT_STARTUP"
	DomainIndependentRundown DomainState = "DS_INDEPENDENT_RUNDOWN"
)

// DomainConfig describes a domain, either statically configured or
// announced by a routing adapter.
type DomainConfig struct {
	ID       audio.ID    `yaml:"id" json:"id,omitempty"`
	Name     string      `yaml:"name" json:"name"`
	BusName  string      `yaml:"bus_name" json:"bus_name"`
	NodeName string      `yaml:"node_name" json:"node_name"`
	Early    bool        `yaml:"early" json:"early"`
	Complete bool        `yaml:"complete" json:"complete"`
	State    DomainState `yaml:"state" json:"state"`
}

// Domain is one routing adapter's area of control.
type Domain struct {
	base
	busName  string
	nodeName string
	early    bool
	complete bool
	state    DomainState
}

func newDomain(cfg DomainConfig) (*Domain, error) {
	if err := ValidateName(cfg.Name); err != nil {
		return nil, err
	}
	if cfg.BusName == "" {
		return nil, fmt.Errorf("%w: domain %q has no bus name", ErrInvalidConfig, cfg.Name)
	}
	state := cfg.State
	if state == "" {
		state = DomainControlled
	}
	return &Domain{
		base:     base{id: cfg.ID, name: cfg.Name},
		busName:  cfg.BusName,
		nodeName: cfg.NodeName,
		early:    cfg.Early,
		complete: cfg.Complete,
		state:    state,
	}, nil
}

// Kind implements Element.
func (d *Domain) Kind() Kind { return KindDomain }

// BusName is the transport address of the routing adapter owning the domain.
func (d *Domain) BusName() string { return d.busName }

// NodeName is the adapter-specific node name.
func (d *Domain) NodeName() string { return d.nodeName }

// Early reports whether the domain is available during early startup.
func (d *Domain) Early() bool { return d.early }

// IsComplete reports whether the adapter finished registering the domain's
// sources, sinks and gateways.
func (d *Domain) IsComplete() bool { return d.complete }

// SetComplete marks registration of the domain's elements finished.
func (d *Domain) SetComplete() { d.complete = true }

// State returns the domain state.
func (d *Domain) State() DomainState { return d.state }

// SetState updates the domain state.
func (d *Domain) SetState(s DomainState) { d.state = s }

// Config returns the configuration describing the domain as it is now.
func (d *Domain) Config() DomainConfig {
	return DomainConfig{
		ID:       d.id,
		Name:     d.name,
		BusName:  d.busName,
		NodeName: d.nodeName,
		Early:    d.early,
		Complete: d.complete,
		State:    d.state,
	}
}
