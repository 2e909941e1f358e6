// Package mqtt provides MQTT client connectivity for the audio controller.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support, restored on reconnect
//   - Last Will and Testament (LWT) for offline detection
//
// # Architecture
//
// MQTT connects the controller to the routing adapters (one per bus) and,
// optionally, to a remote policy engine:
//
//	routing adapters ↔ broker ↔ controller ↔ broker ↔ policy engine
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllRoutingAcks(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("ack on %s: %s", topic, payload)
//	        return nil
//	    })
//
//	client.Publish(mqtt.Topics{}.RoutingCommand("virtdsp"), payload, 1, false)
package mqtt
