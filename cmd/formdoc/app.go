package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formdoc/internal/config"
	"github.com/goliatone/go-formdoc/internal/metrics"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/orchestrator"
	"github.com/goliatone/go-formdoc/pkg/schema"
	"github.com/goliatone/go-formdoc/pkg/tui"
)

// app carries the global flags and the services built from them.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	dataPath   string
	verbose    bool

	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	// driver overrides the terminal prompt driver.
	driver tui.PromptDriver
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "formdoc",
		Short: "View, edit and export data dictionary forms",
		Long: `formdoc works with the three data dictionary forms (element, data flow
and data store descriptions). Records are kept as a JSON record set; forms can
be rendered, edited field by field, validated and exported as HTML, PNG,
markdown or terminal text.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&a.dataPath, "data", "d", "", "record set JSON file (defaults to the bundled sample)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.listCmd(),
		a.renderCmd(),
		a.applyCmd(),
		a.interactiveCmd(),
		a.validateCmd(),
		a.exportCmd(),
		a.schemaCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataPath != "" {
		cfg.Data.Path = a.dataPath
	}
	a.cfg = cfg

	if a.logger == nil {
		zcfg := zap.NewProductionConfig()
		if a.verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.logger = logger
	}
	a.registry = prometheus.NewRegistry()
	a.logger.Debug("configured", zap.String("command", cmd.Name()), zap.String("data", cfg.Data.Path))
	return nil
}

// orchestrator builds an orchestrator over the configured schemas, record
// file and backends.
func (a *app) orchestrator() (*orchestrator.Orchestrator, error) {
	renderers, err := orchestrator.NewRenderers(a.cfg.Export.Renderers(), a.logger)
	if err != nil {
		return nil, err
	}
	options := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithMetrics(metrics.New(a.registry)),
		orchestrator.WithRenderers(renderers),
		orchestrator.WithDefaultRenderer(a.cfg.Export.Backend),
	}
	themeOptions, err := a.cfg.Theme.Options()
	if err != nil {
		return nil, err
	}
	options = append(options, themeOptions...)

	if dir := a.cfg.Schema.Dir; dir != "" {
		reg, err := schema.LoadFS(os.DirFS(dir))
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithRegistry(reg), orchestrator.WithRecords(model.RecordSet{}))
	}

	orch, err := orchestrator.New(options...)
	if err != nil {
		return nil, err
	}
	if path := a.cfg.Data.Path; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			_ = orch.Close()
			return nil, fmt.Errorf("read records: %w", err)
		}
		if err := orch.LoadRaw(data); err != nil {
			_ = orch.Close()
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return orch, nil
}

// save writes the current record set back to the data file.
func (a *app) save(orch *orchestrator.Orchestrator) error {
	if a.cfg.Data.Path == "" {
		return errors.New("--write needs a data file (--data or data.path)")
	}
	data, err := orch.Raw()
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.cfg.Data.Path, data, 0o644); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	a.logger.Info("records saved", zap.String("path", a.cfg.Data.Path))
	return nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}
