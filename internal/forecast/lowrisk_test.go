package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompoundGain(t *testing.T) {
	capital, gain := CompoundGain(10000, 0.04, 365, 0)
	assert.InDelta(t, 1.095890410958904, gain, 1e-12)
	assert.InDelta(t, 10001.095890410958904, capital, 1e-9)

	_, gain = CompoundGain(10000, 0.04, 12, 0.19)
	assert.InDelta(t, 27.0, gain, 1e-9)
}

func TestTimeline(t *testing.T) {
	tl := Timeline(365)
	require.Len(t, tl, 365)
	assert.Equal(t, 1, tl[0])
	assert.Equal(t, 365, tl[364])
	assert.Empty(t, Timeline(0))
}

func TestDailyCompounding(t *testing.T) {
	res := DailyCompounding(10000, 0.04, Timeline(365))
	require.Len(t, res.Series, 365)

	assert.InDelta(t, 1.095890410958904, res.Series[0].CumulativeGain, 1e-12)

	// (1 + 0.04/365)^365 - 1 on 10000, taxed once.
	gross := 408.0849
	assert.InDelta(t, gross*0.81, res.Series[364].CumulativeGain, 0.01)
	assert.InDelta(t, 10000+gross*0.81, res.EndingCapital, 0.01)
}

func TestMonthlyCompounding(t *testing.T) {
	res := MonthlyCompounding(10000, 0.04, Timeline(365))
	require.Len(t, res.Series, 365)

	assert.Equal(t, 0.0, res.Series[28].CumulativeGain)
	assert.InDelta(t, 27.0, res.Series[29].CumulativeGain, 1e-9)
	assert.InDelta(t, 27.0, res.Series[58].CumulativeGain, 1e-9)

	// Twelve credits by day 360; the second one compounds on the first.
	assert.InDelta(t, 27.0+10027*0.04/12*0.81, res.Series[59].CumulativeGain, 1e-9)
	assert.InDelta(t, res.EndingCapital-10000, res.Series[364].CumulativeGain, 1e-9)
}

func TestAnnualCompounding(t *testing.T) {
	res := AnnualCompounding(10000, 0.07, Timeline(2*365))

	assert.Equal(t, 0.0, res.Series[363].CumulativeGain)
	assert.InDelta(t, 700.0, res.Series[364].CumulativeGain, 1e-9)

	gross := 700.0 + 10700*0.07
	assert.InDelta(t, gross*0.81, res.Series[729].CumulativeGain, 1e-9)
	assert.InDelta(t, 10000+gross*0.81, res.EndingCapital, 1e-9)
}

func TestLowRisk_EmptyTimelinePanics(t *testing.T) {
	assert.Panics(t, func() { DailyCompounding(10000, 0.04, nil) })
	assert.Panics(t, func() { MonthlyCompounding(10000, 0.04, []int{}) })
	assert.Panics(t, func() { AnnualCompounding(10000, 0.04, nil) })
}

func TestBaselines(t *testing.T) {
	instruments := []Instrument{
		{Name: "Savings", Rate: 0.0405, Scheme: SchemeDaily},
		{Name: "Deposit", Rate: 0.04, Scheme: SchemeMonthly},
		{Name: "Bond", Rate: 0.07, Scheme: SchemeAnnual},
	}

	series, err := Baselines(10000, instruments, Timeline(365))
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, "Savings", series[0].Name)
	assert.Contains(t, series[1].Caption, "4.00% (monthly)")
	assert.InDelta(t, 700*0.81, series[2].Last(), 1e-9)

	_, err = Baselines(10000, []Instrument{{Name: "Bad", Rate: 0.01, Scheme: "weekly"}}, Timeline(10))
	assert.ErrorIs(t, err, ErrInvalidParams)
}
