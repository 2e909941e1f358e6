package controller

import (
	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// ack resolves the action waiting on h and lets the tree move on. A handle
// nobody waits for is logged by the handle store and otherwise ignored.
func (c *Controller) ack(h audio.Handle, err error) {
	if !c.handles.Notify(h, err) {
		return
	}
	c.iterateActions()
}

// CbAckConnect acknowledges a routing-side connect.
func (c *Controller) CbAckConnect(h audio.Handle, err error) { c.ack(h, err) }

// CbAckDisconnect acknowledges a routing-side disconnect.
func (c *Controller) CbAckDisconnect(h audio.Handle, err error) { c.ack(h, err) }

// CbAckSetSinkVolumeChange acknowledges a sink volume change. v is the
// volume the routing side ended up at; the sink takes it over even when it
// differs from the requested one.
func (c *Controller) CbAckSetSinkVolumeChange(h audio.Handle, v audio.Volume, err error) {
	c.logger.Debug("sink volume acknowledged", "handle", h.String(), "volume", v)
	if err == nil {
		c.ackedVolumes[h] = v
		defer delete(c.ackedVolumes, h)
	}
	c.ack(h, err)
}

// CbAckSetSourceVolumeChange acknowledges a source volume change. No
// action changes source volumes, so the ack only releases the handle.
func (c *Controller) CbAckSetSourceVolumeChange(h audio.Handle, v audio.Volume, err error) {
	c.logger.Debug("source volume acknowledged", "handle", h.String(), "volume", v)
	c.ack(h, err)
}

// CbAckSetSourceState acknowledges a source state change.
func (c *Controller) CbAckSetSourceState(h audio.Handle, err error) { c.ack(h, err) }

// CbAckSetSinkSoundProperty acknowledges a sink sound property change.
func (c *Controller) CbAckSetSinkSoundProperty(h audio.Handle, err error) { c.ack(h, err) }

// CbAckSetSinkSoundProperties acknowledges a sink sound property list change.
func (c *Controller) CbAckSetSinkSoundProperties(h audio.Handle, err error) { c.ack(h, err) }

// CbAckSetSourceSoundProperty acknowledges a source sound property change.
func (c *Controller) CbAckSetSourceSoundProperty(h audio.Handle, err error) { c.ack(h, err) }

// CbAckSetSourceSoundProperties acknowledges a source sound property list
// change.
func (c *Controller) CbAckSetSourceSoundProperties(h audio.Handle, err error) { c.ack(h, err) }

// CbAckSetSinkNotificationConfiguration acknowledges a sink notification
// configuration change.
func (c *Controller) CbAckSetSinkNotificationConfiguration(h audio.Handle, err error) { c.ack(h, err) }

// CbAckSetSourceNotificationConfiguration acknowledges a source
// notification configuration change.
func (c *Controller) CbAckSetSourceNotificationConfiguration(h audio.Handle, err error) {
	c.ack(h, err)
}
