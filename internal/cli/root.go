// Package cli implements the rawdata command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/raysh454/rawdata/internal/app"
	"github.com/raysh454/rawdata/internal/logging"
)

// Version is the CLI version reported by `rawdata --version`.
const Version = "1.0.0"

type rootOptions struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string

	cfg    *app.Config
	logger logging.Logger

	// appOpts are appended when building the Application. Tests use it to
	// swap in fake collaborators.
	appOpts []app.ComponentOption
}

// Execute builds the root command tree and runs it with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rawdata",
		Short:         "Turn web pages and PDFs into structured data for AI assistants",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
	}
	rootCmd.SetVersionTemplate("rawdata version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "Path to a .env file (ignored when missing)")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newScanCmd(opts),
		newServeCmd(opts),
		newHistoryCmd(opts),
		newSummarizeCmd(opts),
		newAssessCmd(opts),
		newDemoCmd(opts),
	)
	return rootCmd
}

// load reads .env, the config file and the environment, then applies flag
// overrides.
func (o *rootOptions) load(logOut io.Writer) error {
	if o.cfg != nil {
		return nil
	}
	if err := app.LoadDotEnv(o.EnvFile); err != nil {
		return fmt.Errorf("load %s: %w", o.EnvFile, err)
	}
	cfg, err := app.LoadConfig(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	o.cfg = cfg
	if logOut == nil {
		logOut = os.Stderr
	}
	o.logger = logging.New(logOut, cfg.Log)
	return nil
}

// application builds the shared services for one command run. The caller
// must Shutdown it.
func (o *rootOptions) application() (*app.Application, error) {
	return app.NewApplication(o.cfg, o.logger, o.appOpts...)
}

func shutdown(a *app.Application, logger logging.Logger) {
	if err := a.Shutdown(context.Background()); err != nil {
		logger.Warn("shutting down", logging.Field{Key: "error", Value: err.Error()})
	}
}
