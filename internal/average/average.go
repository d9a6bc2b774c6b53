package average

import (
	"errors"

	"github.com/relabs-tech/weather_logger/internal/sample"
)

// ErrEmptyWindow is returned when a snapshot is requested before any
// sample was accumulated.
var ErrEmptyWindow = errors.New("average window is empty")

// Snapshot holds the arithmetic mean of each field over one window.
type Snapshot struct {
	HumidityPct  float64 `json:"humidity_pct"`
	TemperatureF float64 `json:"temp_f"`
	PressureKPa  float64 `json:"pressure_kpa"`
	Count        int     `json:"count"`
}

// Accumulator keeps running sums over a fixed-size window of samples.
// The window is a point-in-time snapshot, not a sliding window: once it
// is full the caller emits a Snapshot and calls Reset.
type Accumulator struct {
	window int

	sumHumidity    float64
	sumTemperature float64
	sumPressure    float64
	count          int
}

// New returns an accumulator for the given window size.
func New(window int) *Accumulator {
	return &Accumulator{window: window}
}

// Add feeds one sample into the running sums.
func (a *Accumulator) Add(s sample.Sample) {
	a.sumHumidity += s.HumidityPct
	a.sumTemperature += s.TemperatureF
	a.sumPressure += s.PressureKPa
	a.count++
}

// Full reports whether the window has reached its configured size.
func (a *Accumulator) Full() bool {
	return a.count >= a.window
}

// Count returns the number of samples accumulated since the last reset.
func (a *Accumulator) Count() int {
	return a.count
}

// Snapshot returns the mean of each field. The mean is undefined over an
// empty window, so count==0 is an error rather than a zero snapshot.
func (a *Accumulator) Snapshot() (Snapshot, error) {
	if a.count == 0 {
		return Snapshot{}, ErrEmptyWindow
	}
	n := float64(a.count)
	return Snapshot{
		HumidityPct:  a.sumHumidity / n,
		TemperatureF: a.sumTemperature / n,
		PressureKPa:  a.sumPressure / n,
		Count:        a.count,
	}, nil
}

// Reset zeroes all sums and the count.
func (a *Accumulator) Reset() {
	a.sumHumidity = 0
	a.sumTemperature = 0
	a.sumPressure = 0
	a.count = 0
}
