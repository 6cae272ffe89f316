package main

import (
	"errors"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"divcli/internal/config"
	"divcli/internal/exporter"
	"divcli/internal/forecast"
	"divcli/internal/render"
	"divcli/internal/services"
	"divcli/pkg/contracts/domain"
)

const baselineChart = "low-risk-investment-gains.png"

type forecastFlags struct {
	companies       []string
	customName      string
	customPrice     float64
	customYield     float64
	customGrowth    float64
	capital         float64
	years           int
	taxRate         float64
	priceGrowth     float64
	capitalizations int
	baselines       bool
	output          string
	csv             string
}

// request builds the forecast request from the configured defaults and the
// flags the user actually set.
func (f forecastFlags) request(cmd *cobra.Command, cfg *config.Config) (services.ForecastRequest, error) {
	req := services.ForecastDefaults(cfg.Forecast, cfg.Screening.Category)
	flags := cmd.Flags()
	if flags.Changed("capital") {
		req.Capital = f.capital
	}
	if flags.Changed("years") {
		req.Years = f.years
	}
	if flags.Changed("tax-rate") {
		req.TaxRate = f.taxRate
	}
	if flags.Changed("share-price-growth-rate") {
		req.SharePriceGrowthRate = f.priceGrowth
	}
	if flags.Changed("capitalizations") {
		req.Capitalizations = f.capitalizations
	}
	req.IncludeBaselines = f.baselines

	for _, sym := range f.companies {
		req.Targets = append(req.Targets, domain.SymbolTarget(strings.ToUpper(strings.TrimSpace(sym))))
	}
	if f.customName != "" {
		req.Targets = append(req.Targets,
			domain.ManualTarget(f.customName, f.customYield/100, f.customGrowth/100, f.customPrice))
	}
	if len(req.Targets) == 0 {
		return req, errors.New("nothing to forecast: pass --company or --custom-name")
	}
	return req, nil
}

func newForecastCmd(c *cli) *cobra.Command {
	var f forecastFlags
	defaults := config.Default().Forecast

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast dividend income and stock value for companies",
		Long: `Forecast taxed dividend income and stock value for each --company and for
an optional custom company. Payouts are not reinvested: the share count bought
with --capital stays fixed. Symbols are looked up in the --sheet category first
and fetched from the market data provider otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(cmd, c.cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("output") {
				f.output = c.cfg.Forecast.Output
			}
			return c.runForecast(cmd, req, f)
		},
	}

	fl := cmd.Flags()
	fl.StringSliceVar(&f.companies, "company", nil, "ticker symbols to forecast (repeatable or comma separated)")
	fl.StringVar(&f.customName, "custom-name", "", "name of a custom company to forecast")
	fl.Float64Var(&f.customPrice, "custom-price", 0, "share price of the custom company")
	fl.Float64Var(&f.customYield, "custom-div-yield", 0, "dividend yield of the custom company, percent")
	fl.Float64Var(&f.customGrowth, "custom-div-growth", 0, "5-year dividend growth of the custom company, percent")
	fl.Float64Var(&f.capital, "capital", defaults.Capital, "capital invested in each company")
	fl.IntVar(&f.years, "years", defaults.Years, "investment horizon in years")
	fl.Float64Var(&f.taxRate, "tax-rate", defaults.TaxRate, "dividend tax rate, percent")
	fl.Float64Var(&f.priceGrowth, "share-price-growth-rate", defaults.SharePriceGrowthRate, "yearly share price growth, percent")
	fl.IntVar(&f.capitalizations, "capitalizations", defaults.Capitalizations, "dividend payments per year")
	fl.BoolVar(&f.baselines, "baselines", false, "add the low-risk baselines to the chart")
	fl.StringVar(&f.output, "output", defaults.Output, "chart file in the output directory; empty disables the chart")
	fl.StringVar(&f.csv, "csv", "", "also write the series to this CSV file in the output directory")
	return cmd
}

func (c *cli) runForecast(cmd *cobra.Command, req services.ForecastRequest, f forecastFlags) error {
	svc, err := c.services(cmd.Context())
	if err != nil {
		return err
	}

	res, err := svc.Forecast.Forecast(cmd.Context(), req)
	if err != nil {
		return err
	}

	for _, s := range res.Summaries {
		c.printf("%s\n", s.Series.Caption)
	}
	for _, s := range res.Baselines {
		c.printf("%s\n", s.Caption)
	}
	if len(res.Skipped) > 0 {
		syms := make([]string, 0, len(res.Skipped))
		for sym := range res.Skipped {
			syms = append(syms, sym)
		}
		sort.Strings(syms)
		c.printf("%d of %d targets forecast, skipped:\n", len(res.Summaries), len(req.Targets))
		for _, sym := range syms {
			c.printf("  %s: %s\n", sym, res.Skipped[sym])
		}
	}

	if err := c.exportSeries(f.csv, res.Series()); err != nil {
		return err
	}
	return c.renderChart(svc, f.output, res.Chart())
}

func (c *cli) exportSeries(name string, series []domain.Series) error {
	if name == "" {
		return nil
	}
	if err := exporter.NewSeriesExporter(c.csvWriter()).ExportSeries(name, series); err != nil {
		return err
	}
	c.printf("series written to %s\n", c.paths.OutputPath(name))
	return nil
}

func newBaselineCmd(c *cli) *cobra.Command {
	var (
		capital float64
		years   int
		output  string
		csv     string
	)

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Forecast gains of the configured low-risk instruments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("capital") {
				capital = c.cfg.Forecast.Capital
			}
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}

			series, err := svc.Forecast.Baselines(cmd.Context(), capital, years*forecast.DaysPerYear)
			if err != nil {
				return err
			}
			for _, s := range series {
				c.printf("%s\n", s.Caption)
			}

			if err := c.exportSeries(csv, series); err != nil {
				return err
			}
			return c.renderChart(svc, output, render.Chart{
				Title:  "Low-risk investment gains",
				XLabel: "Days",
				YLabel: "Cumulative gain",
				Series: series,
			})
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&capital, "capital", config.Default().Forecast.Capital, "capital invested in each instrument")
	fl.IntVar(&years, "years", 1, "investment horizon in years")
	fl.StringVar(&output, "output", baselineChart, "chart file in the output directory; empty disables the chart")
	fl.StringVar(&csv, "csv", "", "also write the series to this CSV file in the output directory")
	return cmd
}
