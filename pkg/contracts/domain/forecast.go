package domain

// ForecastPoint is the cumulative gain after a simulated day.
type ForecastPoint struct {
	Day            int     `json:"day"`
	CumulativeGain float64 `json:"cumulative_gain"`
}

// Series is a named forecast curve ready for rendering or export.
type Series struct {
	Name    string          `json:"name"`
	Caption string          `json:"caption"`
	Points  []ForecastPoint `json:"points"`
}

// Last returns the final cumulative gain, or 0 for an empty series.
func (s Series) Last() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].CumulativeGain
}

// MaxGain returns the largest cumulative gain in the series.
func (s Series) MaxGain() float64 {
	max := 0.0
	for _, p := range s.Points {
		if p.CumulativeGain > max {
			max = p.CumulativeGain
		}
	}
	return max
}

// ForecastSummary is the outcome of a dividend forecast for one target.
type ForecastSummary struct {
	Target           Target  `json:"target"`
	EndingStockValue float64 `json:"ending_stock_value"`
	LastPayout       float64 `json:"last_payout"`
	TotalDividends   float64 `json:"total_dividends"`
	Series           Series  `json:"series"`
}
