package main

import (
	"github.com/spf13/cobra"

	"divcli/internal/config"
	"divcli/internal/exporter"
	"divcli/internal/services"
)

type screenFlags struct {
	minYield  float64
	maxYield  float64
	minGrowth float64
	maxPayout float64
	spYield   float64
	inflation float64
	stages    []string
	csv       string
	issues    string
}

func newScreenCmd(c *cli) *cobra.Command {
	var f screenFlags
	defaults := config.Default().Screening

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Shortlist companies by yield, payout ratio and dividend growth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := services.CriteriaFromConfig(c.cfg.Screening)
			flags := cmd.Flags()
			if flags.Changed("min-div-yield") {
				criteria.MinYield = f.minYield
			}
			if flags.Changed("max-div-yield") {
				criteria.MaxYield = f.maxYield
			}
			if flags.Changed("min-div-growth-rate") {
				criteria.MinGrowthRate = f.minGrowth
			}
			if flags.Changed("max-div-payout-rate") {
				criteria.MaxPayoutRatio = f.maxPayout
			}
			if flags.Changed("sp-yield") {
				criteria.SPComparisonYield = f.spYield
			}
			if flags.Changed("inflation") {
				criteria.InflationRate = f.inflation
			}
			if flags.Changed("stages") {
				criteria.Stages = f.stages
			}
			return c.runScreen(cmd, criteria, f)
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&f.minYield, "min-div-yield", defaults.MinYield, "minimum dividend yield, percent")
	fl.Float64Var(&f.maxYield, "max-div-yield", defaults.MaxYield, "maximum dividend yield, percent")
	fl.Float64Var(&f.minGrowth, "min-div-growth-rate", defaults.MinGrowthRate, "minimum 1-year dividend growth, percent")
	fl.Float64Var(&f.maxPayout, "max-div-payout-rate", defaults.MaxPayoutRatio, "maximum payout ratio (dividend / cash flow per share)")
	fl.Float64Var(&f.spYield, "sp-yield", defaults.SPComparisonYield, "S&P 500 yield the shortlist must beat, percent")
	fl.Float64Var(&f.inflation, "inflation", defaults.InflationRate, "inflation rate the shortlist must beat, percent")
	fl.StringSliceVar(&f.stages, "stages", services.DefaultStages, "screen stages in order (yield, payout, growth)")
	fl.StringVar(&f.csv, "csv", "", "also write the shortlist to this CSV file in the output directory")
	fl.StringVar(&f.issues, "issues", "", "write data-quality issues to this CSV file in the output directory")
	return cmd
}

func (c *cli) runScreen(cmd *cobra.Command, criteria services.ScreenCriteria, f screenFlags) error {
	svc, err := c.services(cmd.Context())
	if err != nil {
		return err
	}

	res, err := svc.Screening.Screen(cmd.Context(), criteria)
	if err != nil {
		return err
	}

	c.printf("%s: %d rows from %s\n", res.Category, res.RowsIn, res.Source)
	for _, st := range res.Stages {
		c.printf("  %-7s %d -> %d\n", st.Stage, st.RowsIn, st.RowsOut)
	}
	if n := len(res.Issues); n > 0 {
		c.printf("  %d missing cells\n", n)
	}
	c.printf("\n")
	if err := c.printer().Print(c.out, res.Table); err != nil {
		return err
	}

	if f.csv == "" && f.issues == "" {
		return nil
	}
	tables := exporter.NewTableExporter(c.csvWriter(), c.logger)
	if f.csv != "" {
		if err := tables.ExportTable(f.csv, res.Table); err != nil {
			return err
		}
		c.printf("shortlist written to %s\n", c.paths.OutputPath(f.csv))
	}
	if f.issues != "" {
		if err := tables.ExportIssues(f.issues, res.Issues); err != nil {
			return err
		}
		c.printf("issues written to %s\n", c.paths.OutputPath(f.issues))
	}
	return nil
}
