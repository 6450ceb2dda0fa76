package models

import "time"

// TemperatureSeries is the hourly temperature series for one grid cell.
// Latitude and Longitude are the grid cell center as reported upstream and may
// differ from the requested coordinate.
type TemperatureSeries struct {
	Latitude     float64               `json:"latitude"`
	Longitude    float64               `json:"longitude"`
	Temperatures map[time.Time]float64 `json:"temperatures"` // °C
}

// SingleTemperature is one measurement picked from a TemperatureSeries.
type SingleTemperature struct {
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	MeasureDateTime time.Time `json:"measure_datetime"`
	Temperature     float64   `json:"temperature"` // °C
}
