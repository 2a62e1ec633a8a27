package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoint queues a point with full control over tags, fields, and time.
// The write is non-blocking; points are batched and sent asynchronously.
// It is a no-op when the client is closed.
//
// Parameters:
//   - measurement: The measurement name (e.g., "device_state")
//   - tags: Indexed, low-cardinality labels
//   - fields: The recorded values
//   - ts: Point timestamp
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}
