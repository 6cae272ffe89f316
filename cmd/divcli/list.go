package main

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"divcli/internal/app"
	"divcli/internal/dataprocessing"
	"divcli/internal/marketdata"
	"divcli/internal/services"
)

type tickerLister interface {
	ListTickers(ctx context.Context) ([]marketdata.Company, error)
}

func (c *cli) provider() (marketdata.Provider, error) {
	p := app.NewProvider(c.cfg.MarketData, nil, c.logger)
	if p == nil {
		return nil, services.ErrProviderDisabled
	}
	return p, nil
}

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the active tickers known to the market data provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			lister, ok := p.(tickerLister)
			if !ok {
				return services.ErrProviderDisabled
			}

			companies, err := lister.ListTickers(cmd.Context())
			if err != nil {
				return err
			}
			table, err := companyTable(companies)
			if err != nil {
				return err
			}
			return c.printer().Print(c.out, table)
		},
	}
}

func companyTable(companies []marketdata.Company) (*dataprocessing.Table, error) {
	tickers := make([]*string, len(companies))
	names := make([]*string, len(companies))
	markets := make([]*string, len(companies))
	for i := range companies {
		tickers[i] = &companies[i].Ticker
		names[i] = &companies[i].Name
		markets[i] = &companies[i].Market
	}
	return dataprocessing.NewTable(
		dataprocessing.NewTextColumn("Symbol", tickers),
		dataprocessing.NewTextColumn("Company", names),
		dataprocessing.NewTextColumn("Market", markets),
	)
}

func newQuoteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL...",
		Short: "Fetch dividend profiles from the market data provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			for i := range args {
				args[i] = strings.ToUpper(args[i])
			}

			batch, err := marketdata.FetchQuotes(cmd.Context(), p, args, c.cfg.MarketData.Concurrency, c.logger)
			if err != nil {
				return err
			}
			for _, q := range batch.Quotes {
				c.printf("%-6s price %.2f  dividend %.4f x%d  yield %.2f%%  DGR 5Y %.2f%%  growth years %d\n",
					q.Ticker, q.SharePrice, q.CurrentDividend, q.PaymentsPerYear,
					q.DividendYieldPct, q.DividendGrowth5YPct, q.ConsecutiveGrowthYears)
			}
			failed := make([]string, 0, len(batch.Failed))
			for sym := range batch.Failed {
				failed = append(failed, sym)
			}
			sort.Strings(failed)
			for _, sym := range failed {
				c.printf("%-6s failed: %v\n", sym, batch.Failed[sym])
			}
			return nil
		},
	}
}
