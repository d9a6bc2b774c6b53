package sample

import "time"

// Sample represents one logged environmental measurement.
type Sample struct {
	Millis uint32    `json:"millis"` // elapsed ms since process start
	Stamp  int64     `json:"stamp"`  // unix seconds
	Time   time.Time `json:"time"`   // calendar time of the reading

	HumidityPct  float64 `json:"humidity_pct"`
	TemperatureF float64 `json:"temp_f"`
	PressureKPa  float64 `json:"pressure_kpa"`
}
