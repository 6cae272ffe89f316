package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divcli/pkg/contracts/domain"
)

type paid struct {
	date   string
	amount float64
}

func history(entries ...paid) []domain.DividendPayment {
	out := make([]domain.DividendPayment, len(entries))
	for i, e := range entries {
		out[i] = domain.DividendPayment{PayDate: e.date, CashAmount: e.amount}
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func twoYears() []domain.DividendPayment {
	return history(
		paid{"2023-01-01", 0.5}, paid{"2023-04-01", 1.0}, paid{"2023-07-01", 2.0}, paid{"2023-11-01", 4.0},
		paid{"2022-04-01", 0.3}, paid{"2022-07-01", 0.3}, paid{"2022-11-01", 0.2}, paid{"2022-01-01", 0.1},
	)
}

func TestAnnualizedDividend(t *testing.T) {
	v, err := AnnualizedDividend(twoYears(), 2023)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, v, 1e-12)

	v, err = AnnualizedDividend(twoYears(), 2022)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, v, 1e-12)

	v, err = AnnualizedDividend(twoYears(), 2019)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestConsecutiveGrowthYears(t *testing.T) {
	tests := []struct {
		name    string
		history []domain.DividendPayment
		want    int
	}{
		{"two years", twoYears(), 1},
		{"current year ignored", append(history(paid{"2024-01-01", 0.5}), twoYears()...), 1},
		{"decline", history(
			paid{"2024-01-01", 0.5},
			paid{"2023-01-01", 0.5}, paid{"2023-04-01", 1.0}, paid{"2023-07-01", 2.0}, paid{"2023-11-01", 3.0},
			paid{"2022-04-01", 3.3}, paid{"2022-07-01", 3.3}, paid{"2022-11-01", 0.2}, paid{"2022-01-01", 0.1},
		), 0},
		{"streak broken", history(
			paid{"2024-01-01", 0.5},
			paid{"2023-01-01", 2.5}, paid{"2023-04-01", 1.0}, paid{"2023-07-01", 2.0}, paid{"2023-11-01", 3.0},
			paid{"2022-04-01", 2.3}, paid{"2022-07-01", 3.3}, paid{"2022-11-01", 0.2}, paid{"2022-01-01", 0.1},
			paid{"2021-04-01", 3.3}, paid{"2021-07-01", 3.3}, paid{"2021-11-01", 0.2}, paid{"2021-01-01", 0.1},
		), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConsecutiveGrowthYears(tt.history, 2024)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsecutiveGrowthYears_NoHistory(t *testing.T) {
	_, err := ConsecutiveGrowthYears(history(paid{"2024-02-01", 1}), 2024)
	assert.ErrorIs(t, err, ErrNoDividends)
}

func TestDividendYield(t *testing.T) {
	v, err := DividendYield(history(
		paid{"2023-01-01", 0.5}, paid{"2023-04-01", 0.5}, paid{"2023-07-01", 0.5}, paid{"2023-11-01", 0.5},
	), 100, 2024)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-12)

	v, err = DividendYield(history(
		paid{"2023-01-01", 1.0}, paid{"2023-04-01", 1.0}, paid{"2023-07-01", 2.0}, paid{"2023-11-01", 4.0},
	), 100, 2024)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, v, 1e-12)
}

func TestAverageGrowthRate(t *testing.T) {
	tests := []struct {
		name    string
		history []domain.DividendPayment
		want    float64
	}{
		{"single year", history(
			paid{"2023-01-01", 0.5}, paid{"2023-04-01", 0.5}, paid{"2023-07-01", 0.5}, paid{"2023-11-01", 0.5},
		), 0},
		{"flat", history(
			paid{"2023-01-01", 0.5}, paid{"2023-04-01", 0.5}, paid{"2023-07-01", 0.5}, paid{"2023-11-01", 0.5},
			paid{"2022-01-01", 0.5}, paid{"2022-04-01", 0.5}, paid{"2022-07-01", 0.5}, paid{"2022-11-01", 0.5},
		), 0},
		{"doubled", history(
			paid{"2022-01-01", 0.1}, paid{"2022-04-01", 0.9}, paid{"2022-07-01", 1.0}, paid{"2022-11-01", 1.0},
			paid{"2023-01-01", 0.5}, paid{"2023-04-01", 0.5}, paid{"2023-07-01", 2.0}, paid{"2023-11-01", 3.0},
		), 100},
		{"cut", history(
			paid{"2022-03-01", 0.365}, paid{"2022-06-01", 0.365}, paid{"2022-09-01", 0.365}, paid{"2022-12-01", 0.365},
			paid{"2023-03-01", 0.365}, paid{"2023-06-01", 0.125}, paid{"2023-09-01", 0.125}, paid{"2023-12-01", 0.125},
			paid{"2024-03-01", 0.125},
		), -49.32},
		{"gap year", history(
			paid{"2021-12-01", 0.3475}, paid{"2022-03-01", 0.365}, paid{"2022-06-01", 0.365},
		), 5.04},
		{"long history", abev(), 17.58},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AverageGrowthRate(tt.history, 2024)
			require.NoError(t, err)
			assert.Equal(t, tt.want, round2(got))
		})
	}
}

func TestAverageGrowthRate_InvalidDate(t *testing.T) {
	_, err := AverageGrowthRate(history(paid{"01/02/2023", 1}), 2024)
	assert.Error(t, err)
}

func TestPayoutRatio(t *testing.T) {
	assert.Equal(t, 25.0, PayoutRatio(0.5, 100, 200))
}

func TestRecent(t *testing.T) {
	got, err := Recent(history(
		paid{"2024-01-08", 3}, paid{"2010-04-08", 1}, paid{"2019-01-07", 2}, paid{"2020-01-07", 2.5},
	), 2024, 5)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "2019-01-07", got[0].PayDate)
	assert.Equal(t, "2024-01-08", got[2].PayDate)
}

// abev is ABEV's dividend history as of March 2024.
func abev() []domain.DividendPayment {
	return history([]paid{
		{"1970-01-01", 0.0550986},
		{"2005-10-14", 0.005492},
		{"2006-01-05", 0.001936},
		{"2006-04-10", 0.01076},
		{"2006-07-10", 0.011932},
		{"2006-11-09", 0.0121},
		{"2007-01-08", 0.014732},
		{"2007-04-12", 0.014256},
		{"2007-06-18", 0.001926},
		{"2007-07-09", 0.0068092},
		{"2007-10-26", 0.0325832},
		{"2007-12-28", 0.010568},
		{"2008-05-08", 0.031102},
		{"2008-06-16", 0.0002936},
		{"2008-08-13", 0.0296124},
		{"2008-10-24", 0.0173388},
		{"2009-02-09", 0.0056056},
		{"2009-06-08", 0.0069884},
		{"2009-06-22", 0.0010552},
		{"2009-08-11", 0.0068696},
		{"2009-10-14", 0.0046288},
		{"2009-12-29", 0.0102084},
		{"2010-04-08", 0.0085252},
		{"2010-10-25", 0.0191172},
		{"2010-12-22", 0.0299664},
		{"2011-03-29", 0.0670016},
		{"2011-08-12", 0.0314662},
		{"2011-11-28", 0.0112554},
		{"2012-04-17", 0.0655808},
		{"2012-08-03", 0.0117658},
		{"2012-10-22", 0.0108748},
		{"2013-01-29", 0.0793902},
		{"2013-04-05", 0.0079676},
		{"2014-01-30", 0.065248},
		{"2014-05-02", 0.057983},
		{"2014-09-05", 0.026945},
		{"2014-11-24", 0.092538},
		{"2015-01-21", 0.048092},
		{"2015-02-06", 0.037219},
		{"2015-04-07", 0.027902},
		{"2015-07-09", 0.032246},
		{"2015-10-08", 0.035761},
		{"2016-01-07", 0.038278},
		{"2016-03-07", 0.032999},
		{"2016-08-05", 0.039616},
		{"2016-12-05", 0.047804},
		{"2017-01-05", 0.067134},
		{"2017-03-02", 0.022606},
		{"2017-07-24", 0.049309},
		{"2018-01-08", 0.093373},
		{"2018-03-05", 0.021539},
		{"2018-08-06", 0.042972},
		{"2019-01-07", 0.081518},
		{"2020-01-07", 0.120835},
		{"2021-01-11", 0.078966},
		{"2021-02-04", 0.01424},
		{"2022-01-06", 0.107707},
		{"2023-01-05", 0.144287},
		{"2024-01-08", 0.150969},
	}...)
}
