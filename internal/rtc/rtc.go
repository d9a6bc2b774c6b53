package rtc

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

// ErrClockStopped means the wall clock is not running (no RTC battery,
// no NTP) and could not be auto-set.
var ErrClockStopped = errors.New("real-time clock stopped")

// A clock that has never been set reads as the epoch; anything before
// this year counts as stopped.
const minSaneYear = 2020

// maxSentences bounds the GPS scan during auto-set so a dead receiver
// cannot stall startup forever.
const maxSentences = 64

// Clock provides calendar time. After a GPS auto-set it applies a fixed
// offset on top of the (stopped) system clock.
type Clock struct {
	offset time.Duration
}

// Now returns the current calendar time.
func (c *Clock) Now() time.Time {
	return time.Now().Add(c.offset)
}

// New validates the wall clock. If it looks stopped and a GPS port is
// configured, one auto-set from an RMC sentence is attempted; a
// successful auto-set counts as recovery, not a fault. With no GPS or a
// failed sync, a stopped clock is fatal.
func New(gpsPort string, baud int) (*Clock, error) {
	if running(time.Now()) {
		return &Clock{}, nil
	}

	if gpsPort == "" {
		return nil, ErrClockStopped
	}

	log.Printf("rtc: clock stopped, attempting GPS time sync on %s", gpsPort)
	gpsTime, err := readGPSTime(gpsPort, baud)
	if err != nil {
		return nil, fmt.Errorf("%w: gps sync: %v", ErrClockStopped, err)
	}

	log.Printf("rtc: clock set from GPS: %s", gpsTime.Format(time.RFC3339))
	return &Clock{offset: gpsTime.Sub(time.Now())}, nil
}

// running reports whether t looks like a set clock.
func running(t time.Time) bool {
	return t.Year() >= minSaneYear
}

// readGPSTime scans NMEA sentences from the serial port until a valid
// RMC sentence carries a usable date and time.
func readGPSTime(port string, baud int) (time.Time, error) {
	serialOpts := serial.OpenOptions{
		PortName:        port,
		BaudRate:        uint(baud),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	p, err := serial.Open(serialOpts)
	if err != nil {
		return time.Time{}, fmt.Errorf("open %s: %w", port, err)
	}
	defer p.Close()

	reader := bufio.NewReader(p)
	for i := 0; i < maxSentences; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			return time.Time{}, fmt.Errorf("gps read: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy receiver or partial sentence, keep scanning
			continue
		}
		if sentence.DataType() != nmea.TypeRMC {
			continue
		}

		m := sentence.(nmea.RMC)
		if string(m.Validity) != "A" || !m.Date.Valid || !m.Time.Valid {
			continue
		}
		return rmcTime(m), nil
	}
	return time.Time{}, fmt.Errorf("no valid RMC sentence in %d reads", maxSentences)
}

// rmcTime converts an RMC date+time pair to UTC calendar time.
func rmcTime(m nmea.RMC) time.Time {
	return time.Date(2000+m.Date.YY, time.Month(m.Date.MM), m.Date.DD,
		m.Time.Hour, m.Time.Minute, m.Time.Second,
		m.Time.Millisecond*int(time.Millisecond), time.UTC)
}
