package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shapeshift/internal/config"
	"shapeshift/internal/logging"
	"shapeshift/internal/tools"
	"shapeshift/internal/tools/core"
	"shapeshift/internal/usage"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	outputFormat string
	showStats    bool

	// Logger
	logger *zap.Logger

	// Per-invocation state built in PersistentPreRunE
	cfg             *config.Config
	registry        *tools.Registry
	tracker         *usage.Tracker
	metricsRegistry *prometheus.Registry
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shapeshift",
	Short: "shapeshift - wrap, analyze and transform JSON-like values",
	Long: `shapeshift builds nested wrapper structures around values, flattens
values into path-to-type maps, and runs chains of transforms over them.

Values passed with --value are parsed as JSON when valid and used as plain
strings otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		registry, tracker = nil, nil

		// Initialize logger
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		switch outputFormat {
		case formatText, formatJSON, formatYAML:
		default:
			return fmt.Errorf("invalid --output %q (valid: text, json, yaml)", outputFormat)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}
		if err := logging.Initialize(cfg.Logging.ToLogging()); err != nil {
			return err
		}
		logging.Boot("config loaded from %s (max_depth=%d, complexity=%d)",
			configPath, cfg.Engine.MaxDepth, cfg.Engine.Complexity)
		if logging.IsDebugMode() {
			for _, name := range sortedKeys(cfg.Logging.Categories) {
				logging.BootDebug("category %s enabled=%v", name, cfg.Logging.IsCategoryEnabled(name))
			}
		}

		metricsRegistry = prometheus.NewRegistry()
		if cfg.Metrics.Enabled {
			tracker = usage.NewTracker(metricsRegistry, cfg.Metrics.Namespace)
		}

		registry = tools.NewRegistry()
		registry.SetTracker(tracker)
		if err := core.RegisterAll(registry); err != nil {
			return fmt.Errorf("failed to register tools: %w", err)
		}
		logger.Debug("tools registered", zap.Strings("tools", registry.Names()))
		logging.Tools("registered %d tools", registry.Count())
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "shapeshift.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "Print usage statistics after the command")

	rootCmd.AddCommand(wrapCmd)
	rootCmd.AddCommand(complexCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(toolsCmd)

	// Finalizers run after RunE even when it fails.
	cobra.OnFinalize(finish)
}

// finish prints --stats output and flushes the loggers and audit trail.
func finish() {
	if showStats && registry != nil {
		printStats(rootCmd.OutOrStdout())
	}
	if logger != nil {
		_ = logger.Sync()
	}
	logging.CloseAll()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// commandContext returns a context cancelled on SIGINT/SIGTERM that carries
// the usage tracker.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	return usage.NewContext(ctx, tracker), cancel
}
