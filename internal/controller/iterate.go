package controller

import (
	"fmt"

	"github.com/nerrad567/gray-logic-audio/internal/action"
	"github.com/nerrad567/gray-logic-audio/internal/trigger"
)

// iterateActions drives the action tree until it either has to wait for an
// acknowledgement or has nothing left to do. Triggers are forwarded only
// while the tree is empty, oldest first. A call made while the loop is
// already running, which happens when the policy installs actions from
// inside a hook, returns at once and the running loop picks the work up.
func (c *Controller) iterateActions() {
	if c.iterating {
		return
	}
	c.iterating = true
	defer func() { c.iterating = false }()

	for {
		c.root.Execute()
		switch c.root.State() {
		case action.StateErrorStopped, action.StateUndoing:
			c.logger.Warn("action tree failed, undoing", "error", c.root.Err())
			c.root.Undo()
		}
		c.root.Cleanup()

		if c.root.IsEmpty() {
			t, ok := c.queue.Pop()
			if !ok {
				return
			}
			c.forward(t)
			continue
		}
		if c.root.State() == action.StateNotStarted {
			continue
		}
		return
	}
}

// push queues a trigger and runs the loop.
func (c *Controller) push(t trigger.Trigger) {
	c.queue.Push(t)
	c.logger.Debug("trigger queued", "trigger", t.Kind().String(), "queued", c.queue.Len())
	c.iterateActions()
}

// forward hands one trigger to the policy. Errors are logged and the
// trigger is dropped.
func (c *Controller) forward(t trigger.Trigger) {
	c.forwarded++
	err := c.dispatch(t)
	if err != nil {
		c.forwardErrors++
		c.logger.Warn("policy rejected trigger", "trigger", t.Kind().String(), "error", err)
		return
	}
	c.logger.Debug("trigger forwarded", "trigger", t.Kind().String())
}

func (c *Controller) dispatch(t trigger.Trigger) error { //nolint:gocyclo // One case per trigger kind
	p := c.policy
	switch t := t.(type) {
	case trigger.Registration:
		switch t.Kind() {
		case trigger.SystemRegisterDomain:
			return p.HookRegisterDomain(t.Name, t.Status)
		case trigger.SystemRegisterSource:
			return p.HookRegisterSource(t.Name, t.Status)
		case trigger.SystemRegisterSink:
			return p.HookRegisterSink(t.Name, t.Status)
		case trigger.SystemRegisterGateway:
			return p.HookRegisterGateway(t.Name, t.Status)
		case trigger.SystemDeregisterDomain:
			return p.HookDeregisterDomain(t.Name, t.Status)
		case trigger.SystemDeregisterSource:
			return p.HookDeregisterSource(t.Name, t.Status)
		case trigger.SystemDeregisterSink:
			return p.HookDeregisterSink(t.Name, t.Status)
		case trigger.SystemDeregisterGateway:
			return p.HookDeregisterGateway(t.Name, t.Status)
		}
	case trigger.DomainRegistrationComplete:
		return p.HookDomainRegistrationComplete(t.Domain)
	case trigger.ConnectionRequest:
		if t.Kind() == trigger.UserDisconnectionRequest {
			return p.HookDisconnectionRequest(t.Class, t.Source, t.Sink)
		}
		return p.HookConnectionRequest(t.Class, t.Source, t.Sink)
	case trigger.MuteRequest:
		return p.HookSetSinkMuteState(t.Sink, t.State)
	case trigger.VolumeRequest:
		return p.HookSetVolume(t.Sink, t.Volume)
	case trigger.SoundPropertyRequest:
		if t.Kind() == trigger.UserSetSourceMainSoundProperty {
			return p.HookSetSourceMainSoundProperty(t.Name, t.Property)
		}
		return p.HookSetSinkMainSoundProperty(t.Name, t.Property)
	case trigger.SystemPropertyRequest:
		return p.HookSetSystemProperty(t.Property)
	case trigger.NotificationConfigurationRequest:
		if t.Kind() == trigger.UserSetMainSourceNotificationConfiguration {
			return p.HookSetMainSourceNotificationConfiguration(t.Name, t.Configuration)
		}
		return p.HookSetMainSinkNotificationConfiguration(t.Name, t.Configuration)
	case trigger.AvailabilityChange:
		if t.Kind() == trigger.SystemSourceAvailabilityChanged {
			return p.HookSourceAvailabilityChanged(t.Name, t.Availability)
		}
		return p.HookSinkAvailabilityChanged(t.Name, t.Availability)
	case trigger.InterruptStateChange:
		return p.HookInterruptStateChanged(t.Source, t.State)
	case trigger.MuteStateChange:
		return p.HookSinkMuteStateChanged(t.Sink, t.State)
	case trigger.SoundPropertyChange:
		if t.Kind() == trigger.SystemSourceMainSoundPropertyChanged {
			return p.HookSourceMainSoundPropertyChanged(t.Name, t.Property)
		}
		return p.HookSinkMainSoundPropertyChanged(t.Name, t.Property)
	case trigger.VolumeChange:
		return p.HookVolumeChanged(t.Sink, t.Volume)
	case trigger.NotificationDataChange:
		if t.Kind() == trigger.SystemSourceNotificationDataChanged {
			return p.HookSourceNotificationDataChanged(t.Name, t.Payload)
		}
		return p.HookSinkNotificationDataChanged(t.Name, t.Payload)
	case trigger.ConnectionStateChange:
		return p.HookConnectionStateChange(t.Connection, t.State, t.Status)
	case trigger.StoredSinkVolume:
		return p.HookStoredSinkVolume(t.Class, t.Sink, t.Volume)
	}
	return fmt.Errorf("%w: no hook for %s", ErrUnknownAction, t.Kind())
}
