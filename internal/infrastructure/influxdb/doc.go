// Package influxdb provides InfluxDB connectivity for the audio controller.
//
// It wraps the official influxdb-client-go v2 library. The controller writes
// a point for every main connection state change, every sink volume change
// and every sound property change, and the daemon samples the dispatch
// machinery (queue length, pending handles) periodically.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // metrics off
//	}
//	defer client.Close()
//
//	client.WritePoint("audio_connection",
//	    map[string]string{"connection": "RADIO:AMP", "class": "BASE"},
//	    map[string]interface{}{"state": "CS_CONNECTED"})
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Asynchronous write errors are delivered to the callback
// set with SetOnError.
package influxdb
