package persistence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
)

// Keys of the four persisted strings.
const (
	KeyConnections      = "lastMainConnection"
	KeyVolumes          = "lastMainConnectionVolume"
	KeySoundProperties  = "lastMainSoundProperty"
	KeySystemProperties = "lastSystemProperty"
)

// ClassConnections are the main connections a class had at shutdown.
type ClassConnections struct {
	Class       string
	Connections []element.ConnectionPair
}

// SinkVolume is a stored main volume.
type SinkVolume struct {
	Sink   string
	Volume audio.MainVolume
}

// ClassVolumes are the sink volumes stored for a class.
type ClassVolumes struct {
	Class   string
	Volumes []SinkVolume
}

// EndpointProperties are the main sound properties stored for one endpoint.
type EndpointProperties struct {
	Endpoint   element.Endpoint
	Properties []audio.MainSoundProperty
}

// ClassSoundProperties groups stored sound properties by class.
type ClassSoundProperties struct {
	Class     string
	Endpoints []EndpointProperties
}

// Snapshot is everything persisted across a restart.
type Snapshot struct {
	Connections      []ClassConnections
	Volumes          []ClassVolumes
	SoundProperties  []ClassSoundProperties
	SystemProperties []audio.SystemProperty
}

// IsEmpty reports whether there is nothing to replay.
func (s Snapshot) IsEmpty() bool {
	return len(s.Connections) == 0 && len(s.Volumes) == 0 &&
		len(s.SoundProperties) == 0 && len(s.SystemProperties) == 0
}

// Encode renders the snapshot as key/value strings.
func (s Snapshot) Encode() map[string]string {
	return map[string]string{
		KeyConnections:      FormatConnections(s.Connections),
		KeyVolumes:          FormatVolumes(s.Volumes),
		KeySoundProperties:  FormatSoundProperties(s.SoundProperties),
		KeySystemProperties: FormatSystemProperties(s.SystemProperties),
	}
}

// Decode parses the strings written by Encode. Missing keys are empty.
func Decode(values map[string]string) (Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	if s.Connections, err = ParseConnections(values[KeyConnections]); err != nil {
		return Snapshot{}, err
	}
	if s.Volumes, err = ParseVolumes(values[KeyVolumes]); err != nil {
		return Snapshot{}, err
	}
	if s.SoundProperties, err = ParseSoundProperties(values[KeySoundProperties]); err != nil {
		return Snapshot{}, err
	}
	if s.SystemProperties, err = ParseSystemProperties(values[KeySystemProperties]); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// ─── Formatting ─────────────────────────────────────────────────────

// FormatConnections renders {CLASS,src:snk;src:snk;} per class.
func FormatConnections(classes []ClassConnections) string {
	var b strings.Builder
	for _, c := range classes {
		b.WriteString("{" + c.Class + ",")
		for _, p := range c.Connections {
			b.WriteString(p.Source + ":" + p.Sink + ";")
		}
		b.WriteString("}")
	}
	return b.String()
}

// FormatVolumes renders {CLASS,[sink:vol][sink:vol]} per class.
func FormatVolumes(classes []ClassVolumes) string {
	var b strings.Builder
	for _, c := range classes {
		b.WriteString("{" + c.Class + ",")
		for _, v := range c.Volumes {
			fmt.Fprintf(&b, "[%s:%d]", v.Sink, v.Volume)
		}
		b.WriteString("}")
	}
	return b.String()
}

// FormatSoundProperties renders {CLASS,[ET_SINK_name=(t:v)(t:v)]} per class.
func FormatSoundProperties(classes []ClassSoundProperties) string {
	var b strings.Builder
	for _, c := range classes {
		b.WriteString("{" + c.Class + ",")
		for _, ep := range c.Endpoints {
			b.WriteString("[" + ep.Endpoint.Kind.String() + "_" + ep.Endpoint.Name + "=")
			for _, p := range ep.Properties {
				fmt.Fprintf(&b, "(%d:%d)", p.Type, p.Value)
			}
			b.WriteString("]")
		}
		b.WriteString("}")
	}
	return b.String()
}

// FormatSystemProperties renders {(t:v)(t:v)}. No properties yields "".
func FormatSystemProperties(props []audio.SystemProperty) string {
	if len(props) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("{")
	for _, p := range props {
		fmt.Fprintf(&b, "(%d:%d)", p.Type, p.Value)
	}
	b.WriteString("}")
	return b.String()
}

// ─── Parsing ────────────────────────────────────────────────────────

// ParseConnections is the inverse of FormatConnections.
func ParseConnections(s string) ([]ClassConnections, error) {
	blocks, err := classBlocks(s)
	if err != nil || len(blocks) == 0 {
		return nil, err
	}
	out := make([]ClassConnections, 0, len(blocks))
	for _, blk := range blocks {
		c := ClassConnections{Class: blk.class}
		for _, item := range strings.Split(blk.body, ";") {
			if item == "" {
				continue
			}
			src, snk, ok := strings.Cut(item, ":")
			if !ok || src == "" || snk == "" || strings.Contains(snk, ":") {
				return nil, malformed("connection %q", item)
			}
			c.Connections = append(c.Connections, element.ConnectionPair{Source: src, Sink: snk})
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseVolumes is the inverse of FormatVolumes.
func ParseVolumes(s string) ([]ClassVolumes, error) {
	blocks, err := classBlocks(s)
	if err != nil || len(blocks) == 0 {
		return nil, err
	}
	out := make([]ClassVolumes, 0, len(blocks))
	for _, blk := range blocks {
		items, err := delimited(blk.body, '[', ']')
		if err != nil {
			return nil, err
		}
		c := ClassVolumes{Class: blk.class}
		for _, item := range items {
			sink, vol, ok := strings.Cut(item, ":")
			if !ok || sink == "" {
				return nil, malformed("volume %q", item)
			}
			v, err := parseInt16(vol)
			if err != nil {
				return nil, err
			}
			c.Volumes = append(c.Volumes, SinkVolume{Sink: sink, Volume: audio.MainVolume(v)})
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseSoundProperties is the inverse of FormatSoundProperties.
func ParseSoundProperties(s string) ([]ClassSoundProperties, error) {
	blocks, err := classBlocks(s)
	if err != nil || len(blocks) == 0 {
		return nil, err
	}
	out := make([]ClassSoundProperties, 0, len(blocks))
	for _, blk := range blocks {
		items, err := delimited(blk.body, '[', ']')
		if err != nil {
			return nil, err
		}
		c := ClassSoundProperties{Class: blk.class}
		for _, item := range items {
			head, props, ok := strings.Cut(item, "=")
			if !ok {
				return nil, malformed("sound property %q", item)
			}
			ep, err := parseEndpoint(head)
			if err != nil {
				return nil, err
			}
			pairs, err := parsePairs(props)
			if err != nil {
				return nil, err
			}
			e := EndpointProperties{Endpoint: ep}
			for _, p := range pairs {
				e.Properties = append(e.Properties, audio.MainSoundProperty{Type: p[0], Value: p[1]})
			}
			c.Endpoints = append(c.Endpoints, e)
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseSystemProperties is the inverse of FormatSystemProperties.
func ParseSystemProperties(s string) ([]audio.SystemProperty, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	bodies, err := delimited(s, '{', '}')
	if err != nil {
		return nil, err
	}
	var out []audio.SystemProperty
	for _, body := range bodies {
		pairs, err := parsePairs(body)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			out = append(out, audio.SystemProperty{Type: p[0], Value: p[1]})
		}
	}
	return out, nil
}

type classBlock struct {
	class string
	body  string
}

func classBlocks(s string) ([]classBlock, error) {
	bodies, err := delimited(strings.TrimSpace(s), '{', '}')
	if err != nil {
		return nil, err
	}
	out := make([]classBlock, 0, len(bodies))
	for _, body := range bodies {
		class, rest, ok := strings.Cut(body, ",")
		if !ok || class == "" {
			return nil, malformed("class block %q", body)
		}
		out = append(out, classBlock{class: class, body: rest})
	}
	return out, nil
}

// delimited splits "<a><b>" style sequences into their bodies. Anything
// between groups is an error.
func delimited(s string, open, close byte) ([]string, error) {
	var out []string
	for len(s) > 0 {
		if s[0] != open {
			return nil, malformed("expected %q in %q", open, s)
		}
		end := strings.IndexByte(s, close)
		if end < 0 {
			return nil, malformed("unterminated %q in %q", open, s)
		}
		body := s[1:end]
		if strings.IndexByte(body, open) >= 0 {
			return nil, malformed("nested %q in %q", open, s)
		}
		out = append(out, body)
		s = s[end+1:]
	}
	return out, nil
}

func parsePairs(s string) ([][2]int16, error) {
	items, err := delimited(s, '(', ')')
	if err != nil {
		return nil, err
	}
	out := make([][2]int16, 0, len(items))
	for _, item := range items {
		a, b, ok := strings.Cut(item, ":")
		if !ok {
			return nil, malformed("pair %q", item)
		}
		typ, err := parseInt16(a)
		if err != nil {
			return nil, err
		}
		val, err := parseInt16(b)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]int16{typ, val})
	}
	return out, nil
}

func parseEndpoint(s string) (element.Endpoint, error) {
	for _, k := range []element.Kind{element.KindSink, element.KindSource} {
		prefix := k.String() + "_"
		if name, ok := strings.CutPrefix(s, prefix); ok && name != "" {
			return element.Endpoint{Kind: k, Name: name}, nil
		}
	}
	return element.Endpoint{}, malformed("endpoint %q", s)
}

func parseInt16(s string) (int16, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, malformed("number %q", s)
	}
	return int16(n), nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrMalformed, fmt.Sprintf(format, args...), audio.ErrWrongFormat)
}
