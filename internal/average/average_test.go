package average

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/weather_logger/internal/sample"
)

func TestSnapshotIsArithmeticMean(t *testing.T) {
	acc := New(10)

	var wantHum, wantTemp, wantPress float64
	for i := 0; i < 10; i++ {
		s := sample.Sample{
			HumidityPct:  40.0 + float64(i),
			TemperatureF: 70.0 + 0.5*float64(i),
			PressureKPa:  100.0 + 0.1*float64(i),
		}
		wantHum += s.HumidityPct
		wantTemp += s.TemperatureF
		wantPress += s.PressureKPa

		require.False(t, acc.Full(), "window full after %d samples", i)
		acc.Add(s)
	}
	require.True(t, acc.Full())

	snap, err := acc.Snapshot()
	require.NoError(t, err)
	require.InDelta(t, wantHum/10, snap.HumidityPct, 1e-9)
	require.InDelta(t, wantTemp/10, snap.TemperatureF, 1e-9)
	require.InDelta(t, wantPress/10, snap.PressureKPa, 1e-9)
	require.Equal(t, 10, snap.Count)
}

func TestResetZeroesState(t *testing.T) {
	acc := New(3)
	acc.Add(sample.Sample{HumidityPct: 50, TemperatureF: 70, PressureKPa: 101})
	acc.Add(sample.Sample{HumidityPct: 60, TemperatureF: 80, PressureKPa: 102})

	acc.Reset()
	require.Equal(t, 0, acc.Count())
	require.False(t, acc.Full())

	_, err := acc.Snapshot()
	require.ErrorIs(t, err, ErrEmptyWindow)
}

func TestSnapshotEmptyWindowIsError(t *testing.T) {
	acc := New(10)
	_, err := acc.Snapshot()
	require.ErrorIs(t, err, ErrEmptyWindow)
}

func TestPartialWindowMean(t *testing.T) {
	acc := New(10)
	acc.Add(sample.Sample{HumidityPct: 40, TemperatureF: 60, PressureKPa: 100})
	acc.Add(sample.Sample{HumidityPct: 60, TemperatureF: 80, PressureKPa: 102})

	snap, err := acc.Snapshot()
	require.NoError(t, err)
	require.InDelta(t, 50.0, snap.HumidityPct, 1e-9)
	require.InDelta(t, 70.0, snap.TemperatureF, 1e-9)
	require.InDelta(t, 101.0, snap.PressureKPa, 1e-9)
}
