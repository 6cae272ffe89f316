package marketdata

// Wire types of the Polygon REST API. Only the fields in use are decoded.

type dividendsResponse struct {
	Status  string           `json:"status"`
	NextURL string           `json:"next_url"`
	Results []dividendResult `json:"results"`
}

type dividendResult struct {
	Ticker          string  `json:"ticker"`
	CashAmount      float64 `json:"cash_amount"`
	Currency        string  `json:"currency"`
	DeclarationDate string  `json:"declaration_date"`
	DividendType    string  `json:"dividend_type"`
	ExDividendDate  string  `json:"ex_dividend_date"`
	PayDate         string  `json:"pay_date"`
	Frequency       int     `json:"frequency"`
}

type previousCloseResponse struct {
	Ticker       string    `json:"ticker"`
	Status       string    `json:"status"`
	ResultsCount int       `json:"resultsCount"`
	Results      []aggsBar `json:"results"`
}

type aggsBar struct {
	Close  float64 `json:"c"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Volume float64 `json:"v"`
}

type financialsResponse struct {
	Status  string            `json:"status"`
	NextURL string            `json:"next_url"`
	Results []financialReport `json:"results"`
}

type financialReport struct {
	CompanyName  string               `json:"company_name"`
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	FiscalYear   string               `json:"fiscal_year"`
	FiscalPeriod string               `json:"fiscal_period"`
	Timeframe    string               `json:"timeframe"`
	Financials   financialsDimensions `json:"financials"`
}

type financialsDimensions struct {
	CashFlowStatement map[string]dataPoint `json:"cash_flow_statement"`
	IncomeStatement   map[string]dataPoint `json:"income_statement"`
}

type dataPoint struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
	Label string   `json:"label"`
}

type tickersResponse struct {
	Status  string         `json:"status"`
	NextURL string         `json:"next_url"`
	Results []tickerResult `json:"results"`
}

type tickerResult struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// Company is a listed ticker.
type Company struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Market string `json:"market"`
}
