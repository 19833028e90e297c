package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-micomedor/internal/config"
	"github.com/goliatone/go-micomedor/internal/logging"
	"github.com/goliatone/go-micomedor/internal/openapi"
	"github.com/goliatone/go-micomedor/internal/openapi/loader"
	"github.com/goliatone/go-micomedor/pkg/console"
	"github.com/goliatone/go-micomedor/pkg/console/prompt"
	"github.com/goliatone/go-micomedor/pkg/gateway"
	"github.com/goliatone/go-micomedor/pkg/report"
	"github.com/goliatone/go-micomedor/pkg/session"
	"github.com/goliatone/go-micomedor/pkg/validation"
)

// app holds what PersistentPreRunE builds for the subcommands.
type app struct {
	configPath string
	verbose    bool
	driver     prompt.Driver

	cfg    *config.Config
	logger *zap.Logger
	store  session.Store
	client *gateway.Client
}

// newRootCmd builds the command tree. A nil driver prompts on the terminal.
func newRootCmd(driver prompt.Driver) *cobra.Command {
	a := &app{driver: driver}

	root := &cobra.Command{
		Use:   "micomedor",
		Short: "Consola de administración de MiComedor",
		Long: `micomedor administers a community dining program against the MiComedor
backend: beneficiaries, products, rations, budget, tasks, notes and reports.

Run without arguments to open the interactive console.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.runConsole,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvConfig+" or "+config.DefaultPath+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.consoleCmd(),
		a.listCmd(),
		a.reportCmd(),
		a.configCmd(),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(config.ResolvePath(a.configPath))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging, a.verbose)
	if err != nil {
		return err
	}

	timeout, err := cfg.APITimeout()
	if err != nil {
		return err
	}
	opts := []gateway.Option{gateway.WithTimeout(timeout), gateway.WithLogger(logger)}
	if cfg.API.Contract != "" {
		contract := cfg.API.Contract
		if loader.KindOf(contract) == loader.KindFile {
			contract = config.ExpandHome(contract)
		}
		routes, err := openapi.Load(ctx, contract, loader.WithTimeout(timeout))
		if err != nil {
			return err
		}
		opts = append(opts, gateway.WithRoutes(routes))
	}

	store := session.NewFileStore(cfg.StoragePath())
	client, err := gateway.New(cfg.API.BaseURL, store, opts...)
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.store, a.client = cfg, logger, store, client
	logger.Debug("configured",
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("storage", store.Path()),
		zap.Duration("timeout", timeout),
	)
	return nil
}

func (a *app) prompts() prompt.Driver {
	if a.driver != nil {
		return a.driver
	}
	return prompt.NewSurvey()
}

func (a *app) reportOptions() []report.RendererOption {
	return []report.RendererOption{
		report.WithLocale(a.cfg.UI.Locale),
		report.WithTemplateDir(config.ExpandHome(a.cfg.Reports.TemplateDir)),
	}
}

func (a *app) console() (*console.Console, error) {
	return console.New(a.client, a.store, a.prompts(),
		console.WithLogger(a.logger),
		console.WithPageSizes(a.cfg.UI.PageSizes),
		console.WithReportOptions(a.reportOptions()...),
		console.WithTranslator(validation.DefaultCatalog(), a.cfg.UI.Locale),
	)
}

func (a *app) consoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open the interactive console",
		Args:  cobra.NoArgs,
		RunE:  a.runConsole,
	}
}

func (a *app) runConsole(cmd *cobra.Command, _ []string) error {
	c, err := a.console()
	if err != nil {
		return err
	}
	if err := c.Run(cmd.Context()); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
