package domain

import "time"

// DividendQuote is the dividend profile of a single ticker as reported by a
// market-data provider. Percentages are expressed as percent (5.0 means 5%).
type DividendQuote struct {
	Ticker                 string   `json:"ticker"`
	SharePrice             float64  `json:"share_price"`
	CurrentDividend        float64  `json:"current_dividend"`
	DividendYieldPct       float64  `json:"dividend_yield_pct"`
	DividendGrowth5YPct    float64  `json:"dividend_growth_5y_pct"`
	PaymentsPerYear        int      `json:"payments_per_year"`
	ConsecutiveGrowthYears int      `json:"consecutive_growth_years"`
	PayoutRatioPct         *float64 `json:"payout_ratio_pct,omitempty"`
}

// Target converts the quote into a forecastable manual target.
func (q DividendQuote) Target() Target {
	return ManualTarget(q.Ticker, q.DividendYieldPct/100, q.DividendGrowth5YPct/100, q.SharePrice)
}

// DividendPayment is one historical cash dividend.
type DividendPayment struct {
	CashAmount      float64 `json:"cash_amount"`
	ExDividendDate  string  `json:"ex_dividend_date"`
	PayDate         string  `json:"pay_date"`
	Frequency       int     `json:"frequency"`
	DeclarationDate string  `json:"declaration_date,omitempty"`
}

// PaidOn returns the payment date, falling back to the ex-dividend date.
func (p DividendPayment) PaidOn() (time.Time, error) {
	d := p.PayDate
	if d == "" {
		d = p.ExDividendDate
	}
	return time.Parse(time.DateOnly, d)
}
