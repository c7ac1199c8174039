// Command feedex ingests customer feedback, classifies it and serves
// analytics and semantic search over the corpus.
//
// Usage:
//
//	feedex [command]
//
// Available Commands:
//
//	serve       Run the HTTP API
//	batch       Analyze one batch of unprocessed feedback
//	index-all   Re-embed the whole corpus into the vector index
//	search      Semantic search over indexed feedback
//	classify    Classify a single text
//	seed        Replace the corpus from a JSON or YAML file
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/config"
	logpkg "github.com/kailas-cloud/feedex/internal/logger"
	"github.com/kailas-cloud/feedex/internal/version"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	env        string
	configPath string
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "feedex",
		Short:         "Customer feedback analysis and semantic search",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.env, "env", config.GetEnv(), "environment (selects config/{env}.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "explicit config file path")

	rootCmd.AddCommand(
		NewServeCmd(&flags),
		NewBatchCmd(&flags),
		NewIndexAllCmd(&flags),
		NewSearchCmd(&flags),
		NewClassifyCmd(&flags),
		NewSeedCmd(&flags),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file selected by the global flags.
func (f *globalFlags) loadConfig() (config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	return config.Load(f.env)
}

// withApp loads config, builds the logger and the composition root, and runs fn.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app) error) error {
	cfg, err := flags.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(flags.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("feedex starting",
		zap.String("command", cmd.Name()),
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", flags.env),
		zap.String("store_driver", cfg.Store.Driver),
	)

	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
