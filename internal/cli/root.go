// Package cli implements the docqa command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the build version, set with -ldflags "-X github.com/hyperjump/docqa/internal/cli.Version=...".
var Version = "dev"

const defaultConfigPath = "config.yaml"

// app carries the flags and state shared by all commands.
type app struct {
	configPath string
	debug      bool
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRootCommand builds the docqa command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "docqa",
		Short: "Answer questions from your own documents",
		Long: `docqa indexes plain-text and PDF documents and answers questions using only
their content, refusing when nothing relevant was indexed.

Example usage:
  docqa server                        # Start the HTTP API
  docqa ingest ./docs                 # Index a directory
  docqa query What color is the sky?  # Ask a question`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "config file (defaults apply when it does not exist)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		a.serverCommand(),
		a.ingestCommand(),
		a.queryCommand(),
		a.filesCommand(),
		a.clearCommand(),
		versionCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.debug {
		cfg.Debug = true
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	logger.Debug("config loaded", zap.String("config_path", a.configPath), zap.Bool("debug", cfg.Debug))
	return nil
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "docqa version %s\n", Version)
			return err
		},
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
