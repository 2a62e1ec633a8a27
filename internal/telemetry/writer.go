package telemetry

import (
	"context"
	"time"

	"github.com/nerrad567/govee-web/internal/device"
)

// Measurement is the InfluxDB measurement name for state readings.
const Measurement = "device_state"

// PointWriter is the subset of the InfluxDB client the Writer needs.
// *influxdb.Client satisfies it.
type PointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time)
}

// Writer converts state reads into points. It implements device.StateSink.
type Writer struct {
	points PointWriter
	now    func() time.Time
}

var _ device.StateSink = (*Writer)(nil)

// NewWriter creates a Writer over points.
func NewWriter(points PointWriter) *Writer {
	return &Writer{points: points, now: time.Now}
}

// DeviceStateRead queues a point for st. Writes are batched by the client,
// so this never blocks on the network and never fails.
func (w *Writer) DeviceStateRead(_ context.Context, st device.State) error {
	w.points.WritePoint(Measurement, tagsFor(st), fieldsFor(st), w.now())
	return nil
}

func tagsFor(st device.State) map[string]string {
	return map[string]string{
		"device": st.ID,
		"model":  st.Model,
	}
}

// fieldsFor maps a reading to point fields. Colour and colour temperature
// are omitted when the device did not report them.
func fieldsFor(st device.State) map[string]any {
	fields := map[string]any{
		"online":     st.Online,
		"power":      st.Power == device.PowerOn,
		"brightness": st.Brightness,
	}
	if st.Color != nil {
		fields["color_r"] = int(st.Color.R)
		fields["color_g"] = int(st.Color.G)
		fields["color_b"] = int(st.Color.B)
	}
	if st.ColorTemperature > 0 {
		fields["color_temp"] = st.ColorTemperature
	}
	return fields
}
