package mobilealerts

// Response is the payload of the lastmeasurement endpoint.
//
// The top-level success flag is part of the contract: a 200 response
// with success=false (or absent) is still a failed fetch.
type Response struct {
	Success bool     `json:"success"`
	Devices []Device `json:"devices"`
}

// Device is one sensor's entry in the device list.
type Device struct {
	// DeviceID is the sensor's hex identifier. Entries without one are
	// skipped by the pipeline.
	DeviceID string `json:"deviceid"`

	// Measurement is the latest reading; nil when the service has no
	// data for the device.
	Measurement *DeviceMeasurement `json:"measurement"`
}

// DeviceMeasurement carries the raw reading fields.
//
// Pointers distinguish absent fields from zero values: a device that
// never reported t2 has T2 == nil, not T2 == 0. Humidity is accepted
// for forward compatibility but ignored by the pipeline.
type DeviceMeasurement struct {
	// TS is the observation instant as unix seconds.
	TS *int64 `json:"ts"`

	// T1 is the primary temperature channel in °C.
	T1 *float64 `json:"t1"`

	// T2 is the secondary temperature channel in °C.
	T2 *float64 `json:"t2"`

	// H is relative humidity. Passed through unused.
	H *float64 `json:"h"`
}
