// Package influxdb provides InfluxDB connectivity for device state telemetry.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes, and health checks.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WritePoint("device_state",
//	    map[string]string{"device": "AA:BB", "model": "H6159"},
//	    map[string]any{"power": true, "brightness": 80},
//	    time.Now())
//
// Write errors surface asynchronously through SetOnError.
package influxdb
