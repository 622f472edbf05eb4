package roomassoc

import "time"

// Association maps a sensor to a room for an optional validity window.
//
// A nil StartDate means the association has always applied; a nil
// EndDate means it still applies.
type Association struct {
	SensorID  string     `yaml:"sensor_id"`
	RoomID    string     `yaml:"room_id"`
	StartDate *time.Time `yaml:"start_date"`
	EndDate   *time.Time `yaml:"end_date"`
}
