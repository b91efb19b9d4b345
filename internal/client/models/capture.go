package models

import "time"

// Capture is what the camera or gallery hands over: a source URI plus the
// location and time it was taken.
type Capture struct {
	URI       string
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}
