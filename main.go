package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"invisiguard/di"
	"invisiguard/metrics"
	"invisiguard/models"
	"invisiguard/tui"
	"invisiguard/ui"
	"invisiguard/utils"
	"invisiguard/workflow"
)

var version = "dev"

type rootOptions struct {
	configFile string
	verbose    bool
	noColor    bool
	quiet      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "invisiguard",
		Short:         "Phishing link and email spam detection client",
		Long:          "InvisiGuard checks links for phishing and classifies email files as spam using the InvisiGuard detection service.\nWithout a subcommand it starts the interactive terminal UI.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "path to config file (default: search ./config.yaml, ~/.invisiguard, /etc/invisiguard)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "hide the banner and progress spinner")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check-url <url>",
		Short: "Check a URL for phishing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCLI(cmd, opts, func(app *cliApp) error {
				app.session.URLCheck.SetURL(args[0])
				var (
					result  models.URLCheckResult
					outcome workflow.Outcome
				)
				err := app.spin("Checking URL", func() error {
					var err error
					result, outcome, err = app.session.URLCheck.Check(cmd.Context())
					return err
				})
				if err != nil {
					return err
				}
				if outcome.Stored {
					ui.PrintURLResult(app.out, args[0], result)
				}
				return nil
			})
		},
	}

	fakeCmd := &cobra.Command{
		Use:   "fake-link",
		Short: "Generate a demo phishing link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCLI(cmd, opts, func(app *cliApp) error {
				link, outcome, err := app.session.FakeLink.Generate(cmd.Context())
				if err != nil {
					return err
				}
				if outcome.Stored {
					ui.PrintFakeLink(app.out, link.URL)
				}
				return nil
			})
		},
	}

	var save bool
	analyzeCmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Classify email files as spam",
		Long:  "Upload email files for spam classification. Arguments may be paths, globs or comma separated lists.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCLI(cmd, opts, func(app *cliApp) error {
				files, err := utils.ExpandFileArgs(args)
				if err != nil {
					return err
				}
				app.session.EmailAnalysis.SelectFiles(files)

				var (
					analysis models.AnalysisResponse
					outcome  workflow.Outcome
				)
				err = app.spin("Analyzing emails", func() error {
					var err error
					analysis, outcome, err = app.session.EmailAnalysis.Analyze(cmd.Context())
					return err
				})
				if err != nil {
					return err
				}
				if !outcome.Stored {
					return nil
				}
				ui.PrintAnalysis(app.out, analysis)

				if !save {
					return nil
				}
				path, err := app.writer.WriteAnalysis(app.cfg.Service.BaseURL, files, analysis)
				if err != nil {
					return err
				}
				ui.PrintSaved(app.out, "Results", path)
				return nil
			})
		},
	}
	analyzeCmd.Flags().BoolVarP(&save, "save", "s", false, "also write the results as YAML to export.results_dir")

	reportCmd := &cobra.Command{
		Use:   "report <file>...",
		Short: "Generate a PDF spam report for email files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCLI(cmd, opts, func(app *cliApp) error {
				files, err := utils.ExpandFileArgs(args)
				if err != nil {
					return err
				}
				app.session.EmailAnalysis.SelectFiles(files)

				var path string
				err = app.spin("Generating report", func() error {
					var err error
					path, err = app.session.Export.OnExport(cmd.Context())
					return err
				})
				if err != nil {
					return err
				}
				if path == "" {
					return fmt.Errorf("no report was saved")
				}
				ui.PrintSaved(app.out, "Report", path)
				return nil
			})
		},
	}

	rootCmd.AddCommand(tuiCmd, checkCmd, fakeCmd, analyzeCmd, reportCmd)
	return rootCmd
}

// cliApp is what a subcommand works with once the container is built.
type cliApp struct {
	cfg     *models.Config
	session *workflow.Session
	writer  *utils.ResultsWriter
	logger  *zap.Logger
	out     io.Writer
	spinOut io.Writer
}

func (a *cliApp) spin(description string, fn func() error) error {
	return ui.RunWithSpinner(a.spinOut, description, fn)
}

// runCLI builds the container for a one-shot command. Failures always
// surface so the exit status reflects them.
func runCLI(cmd *cobra.Command, opts *rootOptions, fn func(app *cliApp) error) error {
	overrides := map[string]any{
		"workflow.error_policy": models.ErrorPolicySurface,
		// A one-shot report has no earlier analysis to target.
		"workflow.export_target": models.ExportTargetCurrent,
	}
	if opts.verbose {
		overrides["logging.level"] = "debug"
	}

	container, err := di.BuildContainer(di.Options{ConfigFile: opts.configFile, Overrides: overrides})
	if err != nil {
		return reportError(cmd, err)
	}

	err = container.Invoke(func(cfg *models.Config, session *workflow.Session, writer *utils.ResultsWriter, logger *zap.Logger) error {
		defer logger.Sync()

		app := &cliApp{
			cfg:     cfg,
			session: session,
			writer:  writer,
			logger:  logger,
			out:     cmd.OutOrStdout(),
		}
		if !opts.quiet {
			ui.PrintBanner(app.out, version)
			app.spinOut = cmd.ErrOrStderr()
		}

		stopMetrics := startMetrics(cmd.Context(), cfg, logger)
		defer stopMetrics()

		return fn(app)
	})
	if err != nil {
		return reportError(cmd, dig.RootCause(err))
	}
	return nil
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	overrides := map[string]any{}
	if opts.verbose {
		overrides["logging.level"] = "debug"
	}

	container, err := di.BuildContainer(di.Options{ConfigFile: opts.configFile, LogToFile: true, Overrides: overrides})
	if err != nil {
		return err
	}

	err = container.Invoke(func(cfg *models.Config, session *workflow.Session, writer *utils.ResultsWriter, logger *zap.Logger) error {
		defer logger.Sync()

		stopMetrics := startMetrics(ctx, cfg, logger)
		defer stopMetrics()

		logger.Info("Starting TUI", zap.String("service", cfg.Service.BaseURL))
		return tui.Run(ctx, tui.Deps{
			Session: session,
			Writer:  writer,
			Logger:  logger,
			BaseURL: cfg.Service.BaseURL,
		})
	})
	if err != nil {
		err = dig.RootCause(err)
		ui.PrintError(os.Stderr, err)
		return err
	}
	return nil
}

// startMetrics serves /metrics while the command runs when an address is
// configured. The returned func stops it.
func startMetrics(ctx context.Context, cfg *models.Config, logger *zap.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)

	srv, errCh := metrics.StartServer(ctx, cfg.Metrics.ListenAddress, logger)
	if srv == nil {
		return cancel
	}

	go func() {
		select {
		case err := <-errCh:
			logger.Error("Metrics server failed", zap.Error(err))
		case <-ctx.Done():
		}
	}()
	return cancel
}

func reportError(cmd *cobra.Command, err error) error {
	ui.PrintError(cmd.ErrOrStderr(), err)
	return err
}
