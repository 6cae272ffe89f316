package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"divcli/internal/app"
	"divcli/internal/config"
	apperrors "divcli/internal/errors"
	"divcli/internal/exporter"
	"divcli/internal/infrastructure"
	"divcli/internal/render"
	"divcli/pkg/contracts"
)

// cli carries state shared by the commands. Tests preset cfg and logger to
// skip loading them from the environment.
type cli struct {
	out io.Writer

	configPath string
	dataFile   string
	category   string

	cfg    *config.Config
	paths  *config.Paths
	logger  *slog.Logger
	tracing *infrastructure.Tracing
	svc     *app.ServiceContainer
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "divcli",
		Short:         "Screen dividend stocks and forecast dividend income",
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// One trace id per invocation ties together the logs of a run.
			cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
			return c.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.tracing.Shutdown(cmd.Context())
		},
	}
	root.SetOut(c.out)
	root.SetVersionTemplate(contracts.GetFullVersionString() + "\n")

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "YAML configuration file (default: $DIVCLI_CONFIG or divcli.yaml)")
	pf.StringVar(&c.dataFile, "data", "", "dividend spreadsheet (.xlsx); overrides the configured source")
	pf.StringVar(&c.category, "sheet", "", "spreadsheet category (sheet name)")

	root.AddCommand(
		newScreenCmd(c),
		newForecastCmd(c),
		newBaselineCmd(c),
		newListCmd(c),
		newQuoteCmd(c),
		newPortfolioCmd(c),
		newServeCmd(c),
	)
	return root
}

// setup loads configuration and logging and applies the global flags.
func (c *cli) setup() error {
	if c.cfg == nil {
		var err error
		if c.configPath != "" {
			c.cfg, err = config.LoadFile(c.configPath)
		} else {
			c.cfg, err = config.Load()
		}
		if err != nil {
			return apperrors.NewConfigError("failed to load configuration", err)
		}
	}

	if c.dataFile != "" {
		c.cfg.Paths.DataFile = c.dataFile
		c.cfg.Sheets.SpreadsheetID = ""
	}
	if c.category != "" {
		c.cfg.Screening.Category = c.category
	}

	if c.logger == nil {
		logger, err := infrastructure.InitializeLogger(c.cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		c.logger = infrastructure.WithComponent(logger, "cli")
	}

	if c.tracing == nil {
		tracing, err := infrastructure.InitializeTracing(c.cfg.Tracing, c.logger)
		if err != nil {
			return apperrors.NewConfigError("failed to initialize tracing", err)
		}
		c.tracing = tracing
	}

	paths, err := c.cfg.ResolvedPaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}
	c.paths = paths
	return nil
}

func (c *cli) services(ctx context.Context) (*app.ServiceContainer, error) {
	if c.svc != nil {
		return c.svc, nil
	}
	svc, err := app.NewServices(ctx, c.cfg, c.paths, nil, c.tracing.Tracer, c.logger)
	if err != nil {
		return nil, err
	}
	c.svc = svc
	return svc, nil
}

func (c *cli) printer() render.TablePrinter {
	return render.TablePrinter{MaxRows: c.cfg.Render.MaxRows}
}

func (c *cli) csvWriter() *exporter.CSVWriter {
	return exporter.NewCSVWriter(c.paths.OutputDir, c.logger)
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// renderChart writes a PNG into the output directory unless name is empty.
func (c *cli) renderChart(svc *app.ServiceContainer, name string, chart render.Chart) error {
	if name == "" {
		return nil
	}
	path := c.paths.OutputPath(name)
	if err := svc.Renderer.RenderFile(path, chart); err != nil {
		return apperrors.NewOutputError("chart not written", err).WithContext("path", path)
	}
	c.printf("chart written to %s\n", path)
	return nil
}
