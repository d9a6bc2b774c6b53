package app

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/relabs-tech/weather_logger/internal/average"
	"github.com/relabs-tech/weather_logger/internal/sample"
)

// ErrSensorReadInvalid means humidity or temperature came back
// not-a-number. No record is written and the process halts.
var ErrSensorReadInvalid = errors.New("invalid humidity/temperature reading")

// pollInterval is the idle sleep between scheduler iterations.
const pollInterval = 5 * time.Millisecond

// SensorSource supplies raw readings; sensors.HW is the hardware
// implementation.
type SensorSource interface {
	ReadEnv() (humidityPct, temperatureF float64, err error)
	ReadPressure() (pressureKPa float64, err error)
}

// Recorder persists samples; logfile.Logger is the file implementation.
type Recorder interface {
	Append(s sample.Sample) error
	FlushIfDue(now uint32) error
}

// Screen is the slice of the display presenter the scheduler drives.
type Screen interface {
	Refresh(s sample.Sample) error
	ShowAverages(avg average.Snapshot) error
	AdvanceMode()
}

// Input is a polled button.
type Input interface {
	Pressed() bool
}

// Loop is the cooperative scheduler: a single-threaded polling loop with
// two independent timers (log cycle, durable flush) plus the button
// check, evaluated in that fixed order every iteration. Timing comes
// from polling the millisecond clock; uint32 subtraction stays correct
// across one wrap of the counter.
type Loop struct {
	Sensors SensorSource
	Rec     Recorder
	Disp    Screen
	Btn     Input // nil disables the mode button

	Avg *average.Accumulator

	Clock func() uint32       // elapsed-time clock, milliseconds
	Wall  func() time.Time    // calendar clock
	Sleep func(time.Duration) // blocking pause; defers, never skips, later checks

	// Optional telemetry hooks, invoked after a record is appended and
	// after an average window is emitted.
	Publish    func(sample.Sample)
	PublishAvg func(average.Snapshot)

	LogInterval uint32 // ms between log cycles
	AvgDwell    time.Duration
	Debounce    time.Duration

	lastLog uint32
}

// Run polls Tick until a fatal error.
func (l *Loop) Run() error {
	for {
		if err := l.Tick(); err != nil {
			return err
		}
		l.Sleep(pollInterval)
	}
}

// Tick runs one scheduler iteration. An error return is fatal.
func (l *Loop) Tick() error {
	now := l.Clock()
	if now-l.lastLog >= l.LogInterval {
		l.lastLog = now
		if err := l.logCycle(now); err != nil {
			return err
		}
	}

	// the flush check re-reads the clock: a blocking averages dwell in
	// the log cycle postpones the flush to this same iteration at most
	if err := l.Rec.FlushIfDue(l.Clock()); err != nil {
		return err
	}

	if l.Btn != nil && l.Btn.Pressed() {
		l.Disp.AdvanceMode()
		l.Sleep(l.Debounce)
	}
	return nil
}

// logCycle performs one full sample/log/display pass.
func (l *Loop) logCycle(now uint32) error {
	s, err := l.readSample(now)
	if err != nil {
		return err
	}

	if err := l.Rec.Append(s); err != nil {
		return err
	}
	l.Avg.Add(s)

	if l.Publish != nil {
		l.Publish(s)
	}

	if l.Avg.Full() {
		snap, err := l.Avg.Snapshot()
		if err != nil {
			return err
		}
		if err := l.Disp.ShowAverages(snap); err != nil {
			log.Printf("loop: averages display error: %v", err)
		}
		if l.PublishAvg != nil {
			l.PublishAvg(snap)
		}
		l.Sleep(l.AvgDwell)
		l.Avg.Reset()
	}

	if err := l.Disp.Refresh(s); err != nil {
		log.Printf("loop: display refresh error: %v", err)
	}
	return nil
}

// readSample reads both sensors and assembles one Sample. Humidity or
// temperature arriving as NaN (or a bus error) is fatal before anything
// is appended or accumulated. Pressure is read only after they validate
// and carries no validity check of its own.
func (l *Loop) readSample(now uint32) (sample.Sample, error) {
	hum, temp, err := l.Sensors.ReadEnv()
	if err != nil {
		return sample.Sample{}, fmt.Errorf("read humidity/temperature: %w", err)
	}
	if math.IsNaN(hum) || math.IsNaN(temp) {
		return sample.Sample{}, ErrSensorReadInvalid
	}

	press, err := l.Sensors.ReadPressure()
	if err != nil {
		return sample.Sample{}, fmt.Errorf("read pressure: %w", err)
	}

	t := l.Wall()
	return sample.Sample{
		Millis:       now,
		Stamp:        t.Unix(),
		Time:         t,
		HumidityPct:  hum,
		TemperatureF: temp,
		PressureKPa:  press,
	}, nil
}
