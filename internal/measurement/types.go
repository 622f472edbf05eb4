package measurement

import "time"

// Measurement is a single temperature reading from one sensor.
//
// Time is the observation instant reported by the sensor, not the
// ingestion instant. The pair (SensorID, Time) is unique in the store;
// re-inserting an existing pair is a no-op.
type Measurement struct {
	// Time is the timezone-aware observation instant.
	Time time.Time `json:"time"`

	// SensorID is the opaque device identifier (typically a hex id).
	SensorID string `json:"sensor_id"`

	// T1 is the primary temperature channel, always present.
	T1 float64 `json:"t1"`

	// T2 is the secondary temperature channel; nil when the sensor
	// reports only one channel.
	T2 *float64 `json:"t2,omitempty"`
}
