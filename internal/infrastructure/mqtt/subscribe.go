package mqtt

import "fmt"

// Subscribe registers handler for topic, which may use the + and #
// wildcards:
//
//	client.Subscribe(mqtt.Topics{}.AllRoutingAcks(), 1, adapter.handleAck)
//
// Subscribing again to the same topic replaces the handler. The
// subscription is remembered and replayed after a reconnect.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler for %s", ErrSubscribeFailed, topic)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{qos: qos, handler: handler}
	c.subMu.Unlock()

	if err := waitToken(c.client.Subscribe(topic, qos, c.wrapHandler(handler)), ErrSubscribeFailed); err != nil {
		c.forget(topic)
		return fmt.Errorf("%s: %w", topic, err)
	}
	return nil
}

// Unsubscribe drops the subscriptions for topics. Messages already in
// flight may still be delivered.
func (c *Client) Unsubscribe(topics ...string) error {
	if len(topics) == 0 {
		return ErrInvalidTopic
	}
	for _, topic := range topics {
		if topic == "" {
			return ErrInvalidTopic
		}
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.forget(topics...)
	return waitToken(c.client.Unsubscribe(topics...), ErrUnsubscribeFailed)
}

func (c *Client) forget(topics ...string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, topic := range topics {
		delete(c.subscriptions, topic)
	}
}

// SubscriptionCount returns the number of remembered subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription reports whether topic, compared literally, is subscribed.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, ok := c.subscriptions[topic]
	return ok
}
