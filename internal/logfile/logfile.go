package logfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/relabs-tech/weather_logger/internal/sample"
)

const (
	namePattern = "LOGGER%02d.CSV"
	maxFiles    = 100

	header = "millis,stamp,datetime,humidity,temp,pressure\n"
)

var (
	// ErrNamespaceExhausted means every LOGGER00..LOGGER99 name is taken.
	ErrNamespaceExhausted = errors.New("no free log file name")

	// ErrStorageUnavailable means the log directory (the mounted card)
	// is not accessible.
	ErrStorageUnavailable = errors.New("log storage unavailable")
)

// writeSyncer is the slice of *os.File the logger needs; tests substitute
// a counting fake.
type writeSyncer interface {
	io.Writer
	Sync() error
}

// Logger appends CSV records to a freshly created log file and owns the
// durable-flush timer. Appends are buffered by the OS; Sync happens only
// on the sync cadence to spare the card.
type Logger struct {
	out  writeSyncer
	name string

	syncInterval uint32 // ms
	lastSync     uint32 // ms mark of the last flush
}

// Open probes LOGGER00.CSV..LOGGER99.CSV in dir, ascending, and creates
// the first name that does not exist yet. Each process run gets its own
// file; a prior run's file is never reopened.
func Open(dir string, syncInterval uint32) (*Logger, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("log directory %q: %w", dir, ErrStorageUnavailable)
	}

	for n := 0; n < maxFiles; n++ {
		name := fmt.Sprintf(namePattern, n)
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
		return &Logger{out: f, name: name, syncInterval: syncInterval}, nil
	}
	return nil, ErrNamespaceExhausted
}

// newLogger wires an arbitrary destination; used by tests.
func newLogger(out writeSyncer, syncInterval uint32) *Logger {
	return &Logger{out: out, syncInterval: syncInterval}
}

// Name returns the file name chosen by Open.
func (l *Logger) Name() string {
	return l.name
}

// WriteHeader writes the fixed CSV header line. Called once, right after
// Open.
func (l *Logger) WriteHeader() error {
	if _, err := io.WriteString(l.out, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Append writes one sample as a single CSV record. Floats use Go's
// default shortest rendering; the datetime fields are not zero-padded.
// No flush happens here.
func (l *Logger) Append(s sample.Sample) error {
	t := s.Time
	_, err := fmt.Fprintf(l.out, "%d, %d, \"%d/%d/%d %d:%d:%d\", %v, %v, %v\n",
		s.Millis, s.Stamp,
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(),
		s.HumidityPct, s.TemperatureF, s.PressureKPa)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// FlushIfDue performs a durable flush when the sync interval has elapsed
// since the last one, then re-arms the timer. The subtraction is uint32
// and therefore safe across one wrap of the millisecond clock.
func (l *Logger) FlushIfDue(now uint32) error {
	if now-l.lastSync < l.syncInterval {
		return nil
	}
	l.lastSync = now
	if err := l.out.Sync(); err != nil {
		return fmt.Errorf("flush log: %w", err)
	}
	return nil
}

// Close releases the underlying file, if any. Only the fatal-error path
// uses this; in normal operation the file stays open for the process
// lifetime.
func (l *Logger) Close() error {
	if c, ok := l.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
