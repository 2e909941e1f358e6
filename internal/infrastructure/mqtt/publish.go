package mqtt

import "fmt"

// maxPayloadSize caps outgoing messages. Routing commands and policy hooks
// are a few hundred bytes.
const maxPayloadSize = 64 << 10

// Publish sends payload on topic and waits for the broker to accept it.
//
//	topic := mqtt.Topics{}.RoutingCommand("virtdsp")
//	err := client.Publish(topic, []byte(`{"op":"disconnect","connection":7}`), 1, false)
//
// Commands and hooks are never retained; only presence is.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %d byte payload exceeds %d", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		c.publishErrors.Add(1)
		return ErrNotConnected
	}

	if err := waitToken(c.client.Publish(topic, qos, retained, payload), ErrPublishFailed); err != nil {
		c.publishErrors.Add(1)
		return err
	}
	c.published.Add(1)
	return nil
}
