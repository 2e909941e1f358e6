package controller

import (
	"fmt"

	"github.com/nerrad567/gray-logic-audio/internal/action"
	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/policy"
)

// build turns one policy action into an action tree node. Parameters are
// checked here; element lookups happen when the node executes.
func (c *Controller) build(a policy.Action) (action.Action, error) { //nolint:gocyclo // One case per action name
	switch a.Name {
	case policy.ActionConnect:
		return c.buildConnect(a)
	case policy.ActionDisconnect:
		return c.buildDisconnect(a)
	case policy.ActionSetVolume:
		return c.buildVolume(a)
	case policy.ActionMute:
		return c.buildSinkVolume(a, volumeMute)
	case policy.ActionUnmute:
		return c.buildSinkVolume(a, volumeUnmute)
	case policy.ActionLimit:
		return c.buildSinkVolume(a, volumeLimit)
	case policy.ActionUnlimit:
		return c.buildSinkVolume(a, volumeUnlimit)
	case policy.ActionSuspend:
		return c.buildSourceState(a, audio.SourcePaused, audio.ConnectionConnected, audio.ConnectionSuspended)
	case policy.ActionResume:
		return c.buildSourceState(a, audio.SourceOn, audio.ConnectionSuspended, audio.ConnectionConnected)
	case policy.ActionSetSourceState:
		s, err := a.Require(policy.ParamSourceState)
		if err != nil {
			return nil, err
		}
		state := audio.SourceState(s)
		switch state {
		case audio.SourceOn, audio.SourceOff, audio.SourcePaused:
		default:
			return nil, fmt.Errorf("%w: %s %s=%q", policy.ErrInvalidParam, a.Name, policy.ParamSourceState, s)
		}
		return c.buildSourceState(a, state, "", "")
	case policy.ActionSetProperty:
		return c.buildProperty(a)
	case policy.ActionSetSystemProperty:
		typ, err := a.RequireInt16(policy.ParamPropertyType)
		if err != nil {
			return nil, err
		}
		val, err := a.RequireInt16(policy.ParamPropertyValue)
		if err != nil {
			return nil, err
		}
		return c.leaf(a.Name, c.systemPropertyOp(audio.SystemProperty{Type: typ, Value: val})), nil
	case policy.ActionSetNotificationConfiguration:
		return c.buildNotification(a)
	case policy.ActionRegister:
		domain, err := a.Require(policy.ParamDomainName)
		if err != nil {
			return nil, err
		}
		return c.leaf(a.Name+":"+domain, &registerOp{c: c, domain: domain}), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.Name)
}

func (c *Controller) leaf(name string, op action.Operation) *action.Leaf {
	return action.NewLeaf(name, op, c.handles)
}

func (c *Controller) buildConnect(a policy.Action) (action.Action, error) {
	source, err := a.Require(policy.ParamSourceName)
	if err != nil {
		return nil, err
	}
	sink, err := a.Require(policy.ParamSinkName)
	if err != nil {
		return nil, err
	}
	op := &connectOp{
		abortOnUndo: abortOnUndo{c},
		class:       a.Param(policy.ParamClassName),
		source:      source,
		sink:        sink,
	}
	return c.leaf(a.Name+":"+element.ConnectionName(source, sink), op), nil
}

// buildDisconnect handles one connection by source and sink, or every
// connection of a class, source or sink minus the excepted endpoints.
func (c *Controller) buildDisconnect(a policy.Action) (action.Action, error) {
	class := a.Param(policy.ParamClassName)
	source := a.Param(policy.ParamSourceName)
	sink := a.Param(policy.ParamSinkName)
	if class == "" && source == "" && sink == "" {
		return nil, fmt.Errorf("%w: %s needs %s, %s or %s", policy.ErrMissingParam, a.Name,
			policy.ParamClassName, policy.ParamSourceName, policy.ParamSinkName)
	}
	exceptSource := a.Param(policy.ParamExceptSource)
	exceptSink := a.Param(policy.ParamExceptSink)

	op := func(name string) action.Action {
		return c.leaf(a.Name+":"+name, &disconnectOp{abortOnUndo: abortOnUndo{c}, name: name})
	}
	if source != "" && sink != "" {
		return op(element.ConnectionName(source, sink)), nil
	}

	return c.fanout(a.Name, func() []action.Action {
		var out []action.Action
		for _, conn := range c.connections.List(nil) {
			switch {
			case class != "" && conn.ClassName() != class,
				source != "" && conn.SourceName() != source,
				sink != "" && conn.SinkName() != sink,
				exceptSource != "" && conn.SourceName() == exceptSource,
				exceptSink != "" && conn.SinkName() == exceptSink:
				continue
			}
			out = append(out, op(conn.Name()))
		}
		return out
	}), nil
}

func (c *Controller) buildVolume(a policy.Action) (action.Action, error) {
	mode := volumeSet
	main, hasMain, err := a.Int16(policy.ParamMainVolume)
	if err != nil {
		return nil, err
	}
	step, hasStep, err := a.Int16(policy.ParamMainVolumeStep)
	if err != nil {
		return nil, err
	}
	switch {
	case hasMain:
		if main < int16(audio.MinMainVolume) || main > int16(audio.MaxMainVolume) {
			return nil, fmt.Errorf("%w: %s %s=%d out of range", policy.ErrInvalidParam, a.Name, policy.ParamMainVolume, main)
		}
	case hasStep:
		mode = volumeStep
	default:
		return nil, fmt.Errorf("%w: %s needs %s or %s", policy.ErrMissingParam, a.Name,
			policy.ParamMainVolume, policy.ParamMainVolumeStep)
	}
	return c.sinkFanout(a, func(o *volumeOp) {
		o.mode = mode
		o.main = audio.MainVolume(main)
		o.step = step
	})
}

func (c *Controller) buildSinkVolume(a policy.Action, mode volumeMode) (action.Action, error) {
	var limit int16
	if mode == volumeLimit {
		var err error
		if limit, err = a.RequireInt16(policy.ParamLimitVolume); err != nil {
			return nil, err
		}
	}
	return c.sinkFanout(a, func(o *volumeOp) {
		o.mode = mode
		o.limit = audio.MainVolume(limit)
	})
}

// sinkFanout applies a volume operation to sinkName, or to every sink
// connected in className except exceptSink.
func (c *Controller) sinkFanout(a policy.Action, set func(*volumeOp)) (action.Action, error) {
	ramp, duration, err := rampOf(a)
	if err != nil {
		return nil, err
	}
	op := func(sink string) action.Action {
		o := &volumeOp{abortOnUndo: abortOnUndo{c}, sink: sink, ramp: ramp, duration: duration}
		set(o)
		return c.leaf(a.Name+":"+sink, o)
	}

	if sink := a.Param(policy.ParamSinkName); sink != "" {
		return op(sink), nil
	}
	class, err := a.Require(policy.ParamClassName)
	if err != nil {
		return nil, err
	}
	except := a.Param(policy.ParamExceptSink)
	return c.fanout(a.Name, func() []action.Action {
		var out []action.Action
		for _, name := range c.classEnds(class, element.KindSink) {
			if name != except {
				out = append(out, op(name))
			}
		}
		return out
	}), nil
}

func (c *Controller) buildSourceState(a policy.Action, state audio.SourceState, from, to audio.ConnectionState) (action.Action, error) {
	op := func(source string) action.Action {
		return c.leaf(a.Name+":"+source, &sourceStateOp{
			abortOnUndo: abortOnUndo{c},
			source:      source,
			state:       state,
			from:        from,
			to:          to,
		})
	}

	if source := a.Param(policy.ParamSourceName); source != "" {
		return op(source), nil
	}
	class, err := a.Require(policy.ParamClassName)
	if err != nil {
		return nil, err
	}
	except := a.Param(policy.ParamExceptSource)
	return c.fanout(a.Name, func() []action.Action {
		var out []action.Action
		for _, name := range c.classEnds(class, element.KindSource) {
			if name != except {
				out = append(out, op(name))
			}
		}
		return out
	}), nil
}

func (c *Controller) buildProperty(a policy.Action) (action.Action, error) {
	ep, err := endpointParam(a)
	if err != nil {
		return nil, err
	}
	typ, err := a.RequireInt16(policy.ParamPropertyType)
	if err != nil {
		return nil, err
	}
	val, err := a.RequireInt16(policy.ParamPropertyValue)
	if err != nil {
		return nil, err
	}
	return c.leaf(a.Name+":"+ep.Name, &propertyOp{
		abortOnUndo: abortOnUndo{c},
		endpoint:    ep,
		prop:        audio.MainSoundProperty{Type: typ, Value: val},
	}), nil
}

func (c *Controller) buildNotification(a policy.Action) (action.Action, error) {
	ep, err := endpointParam(a)
	if err != nil {
		return nil, err
	}
	typ, err := a.RequireInt16(policy.ParamNotificationType)
	if err != nil {
		return nil, err
	}
	status, err := a.Require(policy.ParamNotificationStatus)
	if err != nil {
		return nil, err
	}
	param, _, err := a.Int16(policy.ParamNotificationParam)
	if err != nil {
		return nil, err
	}
	return c.leaf(a.Name+":"+ep.Name, &notificationOp{
		abortOnUndo: abortOnUndo{c},
		endpoint:    ep,
		cfg: audio.NotificationConfiguration{
			Type:      typ,
			Status:    audio.NotificationStatus(status),
			Parameter: param,
		},
	}), nil
}

// endpointParam reads sinkName, falling back to sourceName.
func endpointParam(a policy.Action) (element.Endpoint, error) {
	if sink := a.Param(policy.ParamSinkName); sink != "" {
		return element.Endpoint{Kind: element.KindSink, Name: sink}, nil
	}
	if source := a.Param(policy.ParamSourceName); source != "" {
		return element.Endpoint{Kind: element.KindSource, Name: source}, nil
	}
	return element.Endpoint{}, fmt.Errorf("%w: %s needs %s or %s", policy.ErrMissingParam, a.Name,
		policy.ParamSinkName, policy.ParamSourceName)
}

func rampOf(a policy.Action) (audio.RampType, uint16, error) {
	ramp := audio.RampDirect
	if r := a.Param(policy.ParamRampType); r != "" {
		ramp = audio.RampType(r)
		switch ramp {
		case audio.RampDirect, audio.RampLinear, audio.RampExponent:
		default:
			return "", 0, fmt.Errorf("%w: %s %s=%q", policy.ErrInvalidParam, a.Name, policy.ParamRampType, r)
		}
	}
	d, _, err := a.Int16(policy.ParamRampDuration)
	if err != nil {
		return "", 0, err
	}
	if d < 0 {
		return "", 0, fmt.Errorf("%w: %s %s=%d", policy.ErrInvalidParam, a.Name, policy.ParamRampDuration, d)
	}
	return ramp, uint16(d), nil
}

// classEnds lists the distinct sources or sinks of the class's main
// connections, oldest connection first.
func (c *Controller) classEnds(class string, kind element.Kind) []string {
	var out []string
	seen := make(map[string]bool)
	for _, conn := range c.connectionsOf(element.KindClass, class) {
		name := conn.SinkName()
		if kind == element.KindSource {
			name = conn.SourceName()
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// ─── Fan-out ────────────────────────────────────────────────────────

// fanoutAction resolves its targets when it first executes and then runs
// one child per target concurrently. A class-wide action therefore sees
// the connections earlier actions of the same list created.
type fanoutAction struct {
	name    string
	resolve func() []action.Action
	inner   *action.Container
}

func (c *Controller) fanout(name string, resolve func() []action.Action) action.Action {
	return &fanoutAction{name: name, resolve: resolve}
}

func (f *fanoutAction) Name() string { return f.name }

func (f *fanoutAction) State() action.State {
	if f.inner == nil {
		return action.StateNotStarted
	}
	return f.inner.State()
}

func (f *fanoutAction) Err() error {
	if f.inner == nil {
		return nil
	}
	return f.inner.Err()
}

func (f *fanoutAction) Execute() {
	if f.inner == nil {
		f.inner = action.NewConcurrent(f.name, f.resolve()...)
	}
	f.inner.Execute()
}

func (f *fanoutAction) Undo() {
	if f.inner != nil {
		f.inner.Undo()
	}
}

func (f *fanoutAction) Cleanup() {
	if f.inner != nil {
		f.inner.Cleanup()
	}
}
