package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the controller.
const (
	MeasurementDispatch = "audio_dispatch"
)

// DispatchStats is a sample of the controller's dispatch machinery.
type DispatchStats struct {
	QueueLength    int
	RootBatches    int
	PendingHandles int
	Forwarded      uint64
	ForwardErrors  uint64
}

// WriteDispatchStats records one sample of the trigger queue and action
// tree. The site tag separates benches sharing a bucket.
func (c *Client) WriteDispatchStats(site string, s DispatchStats) {
	c.WritePoint(MeasurementDispatch,
		map[string]string{"site": site},
		map[string]interface{}{
			"queue_length":    int64(s.QueueLength),
			"root_batches":    int64(s.RootBatches),
			"pending_handles": int64(s.PendingHandles),
			"forwarded":       int64(s.Forwarded),     // #nosec G115 -- counter fits
			"forward_errors":  int64(s.ForwardErrors), // #nosec G115 -- counter fits
		},
	)
}

// WritePoint writes a point stamped now. The controller reports connection
// state, volume and sound property changes through it.
//
// Example:
//
//	client.WritePoint("audio_volume",
//	    map[string]string{"sink": "AMP"},
//	    map[string]interface{}{"main_volume": int64(40), "volume": int64(-1800)})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a point with a specific timestamp. Points
// written once the client is closed are counted by Dropped.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		c.dropped.Add(1)
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
