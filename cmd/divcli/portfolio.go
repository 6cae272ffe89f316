package main

import (
	"github.com/spf13/cobra"

	"divcli/internal/portfolio"
)

func newPortfolioCmd(c *cli) *cobra.Command {
	var owner, holdings string

	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Summarize dividend income of the holdings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if holdings != "" {
				c.paths.Holdings = holdings
			}
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}

			reports, err := svc.Portfolio.Reports(cmd.Context(), owner)
			if err != nil {
				return err
			}
			for i, rep := range reports {
				if i > 0 {
					c.printf("\n")
				}
				c.printf("Portfolio %s\n", rep.Owner)
				if err := c.printer().Print(c.out, rep.Table); err != nil {
					return err
				}
				for _, s := range rep.Summaries {
					c.printf("%s: invested %s, value %s, annual dividend %s, yield %s%%\n",
						s.Currency,
						portfolio.Money(s.Invested, s.Currency),
						portfolio.Money(s.Value, s.Currency),
						portfolio.Money(s.AnnualDividend, s.Currency),
						s.YieldPct.StringFixed(2))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "only report this owner's portfolio")
	cmd.Flags().StringVar(&holdings, "holdings", "", "holdings YAML file (default from configuration)")
	return cmd
}
