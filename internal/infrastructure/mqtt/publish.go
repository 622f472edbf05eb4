package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/tmemler/roomsense/internal/measurement"
)

// measurementTopic is the topic prefix for live readings. The sensor id
// is appended, so consumers can subscribe per sensor or with a
// wildcard.
const measurementTopic = "roomsense/measurements"

// PublishMeasurement broadcasts a newly stored reading.
//
// The message is retained so a dashboard connecting between poll
// cycles immediately sees each sensor's latest reading.
//
// Parameters:
//   - m: The reading, as persisted
//
// Returns:
//   - error: Serialization or publish failure
func (c *Client) PublishMeasurement(m measurement.Measurement) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding measurement: %w", err)
	}

	topic := fmt.Sprintf("%s/%s", measurementTopic, m.SensorID)
	return c.Publish(topic, payload, true)
}
