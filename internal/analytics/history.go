// Package analytics derives dividend metrics from a company's payment history.
package analytics

import (
	"errors"
	"fmt"
	"sort"

	"divcli/pkg/contracts/domain"
)

// ErrNoDividends is returned when no complete year of payments is available.
var ErrNoDividends = errors.New("no dividend history")

// AnnualTotals sums payments per calendar year, leaving out excludeYear.
// Pass 0 to keep every year.
func AnnualTotals(history []domain.DividendPayment, excludeYear int) (map[int]float64, error) {
	totals := make(map[int]float64)
	for _, p := range history {
		d, err := p.PaidOn()
		if err != nil {
			return nil, fmt.Errorf("invalid dividend date: %w", err)
		}
		if d.Year() == excludeYear {
			continue
		}
		totals[d.Year()] += p.CashAmount
	}
	return totals, nil
}

// AnnualizedDividend is the sum paid during year.
func AnnualizedDividend(history []domain.DividendPayment, year int) (float64, error) {
	totals, err := AnnualTotals(history, 0)
	if err != nil {
		return 0, err
	}
	return totals[year], nil
}

// completeYears returns annual totals before currentYear, newest first.
func completeYears(history []domain.DividendPayment, currentYear int) ([]int, map[int]float64, error) {
	totals, err := AnnualTotals(history, currentYear)
	if err != nil {
		return nil, nil, err
	}
	if len(totals) == 0 {
		return nil, nil, ErrNoDividends
	}
	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, totals, nil
}

// ConsecutiveGrowthYears counts, from the last complete year backwards, how
// many years the annual dividend was strictly higher than the year before.
func ConsecutiveGrowthYears(history []domain.DividendPayment, currentYear int) (int, error) {
	years, totals, err := completeYears(history, currentYear)
	if err != nil {
		return 0, err
	}
	count := 0
	next := totals[years[0]]
	for _, y := range years[1:] {
		if totals[y] >= next {
			break
		}
		count++
		next = totals[y]
	}
	return count, nil
}

// DividendYield is the last complete year's dividend over price, in percent.
func DividendYield(history []domain.DividendPayment, sharePrice float64, currentYear int) (float64, error) {
	years, totals, err := completeYears(history, currentYear)
	if err != nil {
		return 0, err
	}
	return totals[years[0]] / sharePrice * 100, nil
}

// AverageGrowthRate is the mean year-over-year dividend growth in percent
// across complete years. Years without payments count as zero; growth from
// zero to a positive amount counts as 100%.
func AverageGrowthRate(history []domain.DividendPayment, currentYear int) (float64, error) {
	years, totals, err := completeYears(history, currentYear)
	if err != nil {
		return 0, err
	}
	oldest := years[len(years)-1]

	var sum float64
	pairs := 0
	next := totals[currentYear-1]
	for y := currentYear - 2; y >= oldest; y-- {
		prev := totals[y]
		switch {
		case prev > 0:
			sum += (next/prev - 1) * 100
		case next > 0:
			sum += 100
		}
		next = prev
		pairs++
	}
	if pairs == 0 {
		return 0, nil
	}
	return sum / float64(pairs), nil
}

// PayoutRatio is the share of cash flow paid as dividends, in percent.
func PayoutRatio(dividend, shares, netCashFlow float64) float64 {
	return dividend * shares / netCashFlow * 100
}

// Recent returns the payments made within the last years calendar years,
// ordered oldest first.
func Recent(history []domain.DividendPayment, currentYear, years int) ([]domain.DividendPayment, error) {
	type dated struct {
		p    domain.DividendPayment
		unix int64
	}
	kept := make([]dated, 0, len(history))
	for _, p := range history {
		d, err := p.PaidOn()
		if err != nil {
			return nil, fmt.Errorf("invalid dividend date: %w", err)
		}
		if currentYear-d.Year() <= years {
			kept = append(kept, dated{p: p, unix: d.Unix()})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].unix < kept[j].unix })

	out := make([]domain.DividendPayment, len(kept))
	for i, k := range kept {
		out[i] = k.p
	}
	return out, nil
}
