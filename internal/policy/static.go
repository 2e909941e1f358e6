package policy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
)

// StaticConfig is the statically configured element set, loaded from YAML:
//
//	domains:
//	  - name: VirtDSP
//	    bus_name: virtdsp
//	sinks:
//	  - id: 1
//	    name: amp
//	    domain: VirtDSP
//	classes:
//	  - name: BASE
//	    sources: [radio]
//	    sinks: [amp]
//	system_properties:
//	  - {type: 1, value: 0}
type StaticConfig struct {
	DomainList         []element.DomainConfig  `yaml:"domains"`
	SourceList         []element.SourceConfig  `yaml:"sources"`
	SinkList           []element.SinkConfig    `yaml:"sinks"`
	GatewayList        []element.GatewayConfig `yaml:"gateways"`
	ClassList          []element.ClassConfig   `yaml:"classes"`
	SystemPropertyList []audio.SystemProperty  `yaml:"system_properties"`
}

// LoadStatic reads and validates a static configuration file. An empty path
// yields an empty configuration.
func LoadStatic(path string) (*StaticConfig, error) {
	cfg := &StaticConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // Path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing policy file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks names are unique per kind and that sources, sinks and
// gateways reference known names where it matters.
func (c *StaticConfig) Validate() error {
	var errs []error

	domains := make(map[string]bool)
	for _, d := range c.DomainList {
		if domains[d.Name] {
			errs = append(errs, fmt.Errorf("%w: duplicate domain %q", ErrInvalidStatic, d.Name))
		}
		domains[d.Name] = true
	}

	errs = append(errs, uniqueNames("source", c.SourceList, func(s element.SourceConfig) string { return s.Name })...)
	errs = append(errs, uniqueNames("sink", c.SinkList, func(s element.SinkConfig) string { return s.Name })...)
	errs = append(errs, uniqueNames("gateway", c.GatewayList, func(g element.GatewayConfig) string { return g.Name })...)
	errs = append(errs, uniqueNames("class", c.ClassList, func(cl element.ClassConfig) string { return cl.Name })...)

	for _, s := range c.SourceList {
		if s.Domain != "" && len(domains) > 0 && !domains[s.Domain] {
			errs = append(errs, fmt.Errorf("%w: source %q references unknown domain %q", ErrInvalidStatic, s.Name, s.Domain))
		}
	}
	for _, s := range c.SinkList {
		if s.Domain != "" && len(domains) > 0 && !domains[s.Domain] {
			errs = append(errs, fmt.Errorf("%w: sink %q references unknown domain %q", ErrInvalidStatic, s.Name, s.Domain))
		}
	}

	props := make(map[int16]bool)
	for _, p := range c.SystemPropertyList {
		if props[p.Type] {
			errs = append(errs, fmt.Errorf("%w: duplicate system property %d", ErrInvalidStatic, p.Type))
		}
		props[p.Type] = true
	}

	return errors.Join(errs...)
}

func uniqueNames[T any](kind string, items []T, name func(T) string) []error {
	var errs []error
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		n := name(it)
		if seen[n] {
			errs = append(errs, fmt.Errorf("%w: duplicate %s %q", ErrInvalidStatic, kind, n))
		}
		seen[n] = true
	}
	return errs
}

// Domains implements Configuration.
func (c *StaticConfig) Domains() []element.DomainConfig { return c.DomainList }

// Sources implements Configuration.
func (c *StaticConfig) Sources() []element.SourceConfig { return c.SourceList }

// Sinks implements Configuration.
func (c *StaticConfig) Sinks() []element.SinkConfig { return c.SinkList }

// Gateways implements Configuration.
func (c *StaticConfig) Gateways() []element.GatewayConfig { return c.GatewayList }

// Classes implements Configuration.
func (c *StaticConfig) Classes() []element.ClassConfig { return c.ClassList }

// SystemProperties implements Configuration.
func (c *StaticConfig) SystemProperties() []audio.SystemProperty { return c.SystemPropertyList }

// Source returns the static configuration of the named source.
func (c *StaticConfig) Source(name string) (element.SourceConfig, bool) {
	for _, s := range c.SourceList {
		if s.Name == name {
			return s, true
		}
	}
	return element.SourceConfig{}, false
}

// Sink returns the static configuration of the named sink.
func (c *StaticConfig) Sink(name string) (element.SinkConfig, bool) {
	for _, s := range c.SinkList {
		if s.Name == name {
			return s, true
		}
	}
	return element.SinkConfig{}, false
}

// Gateway returns the static configuration of the named gateway.
func (c *StaticConfig) Gateway(name string) (element.GatewayConfig, bool) {
	for _, g := range c.GatewayList {
		if g.Name == name {
			return g, true
		}
	}
	return element.GatewayConfig{}, false
}
