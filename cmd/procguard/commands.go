package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/loykin/procguard"
	"github.com/loykin/procguard/internal/logger"
)

// metricsRegistry holds only guard metrics, so the textfile does not
// duplicate node_exporter's own go_* and process_* series.
var metricsRegistry = prometheus.NewRegistry()

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

// buildRoot creates the root command. Running it without a subcommand
// performs one guard pass.
func buildRoot() *cobra.Command {
	flags := &GlobalFlags{}
	root := &cobra.Command{
		Use:   "procguard",
		Short: "Start the group assistant unless it is already running",
		Long: `procguard checks the process table for a command line containing the
configured signature. If none is found it launches the assistant in the
background with stdout and stderr appended to <log_dir>/<prefix>-YYYYMMDD-HHMMSS.log.

Run it from cron or a login script; each invocation is a single check.

Examples:
  procguard
  procguard --config /etc/procguard.toml
  procguard status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnsure(cmd.Context(), flags.ConfigPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	root.AddCommand(createStatusCommand(flags))
	return root
}

// createStatusCommand creates the status subcommand
func createStatusCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the assistant is running without starting it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), flags.ConfigPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// setup loads config and builds the guard with its logger.
func setup(configPath string, stdout, stderr io.Writer) (*procguard.Config, *procguard.Guard, func(), error) {
	c, err := procguard.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log, logCloser, err := logger.New(c.Log.Logger(), stderr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open guard log: %w", err)
	}
	g, closeHistory, err := procguard.New(c, stdout, log)
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, nil, err
	}
	cleanup := func() {
		if err := closeHistory(); err != nil {
			log.Warn("close history sink", "error", err)
		}
		_ = logCloser.Close()
	}
	return c, g, cleanup, nil
}

func runEnsure(ctx context.Context, configPath string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c, g, cleanup, err := setup(configPath, stdout, stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	var reg *prometheus.Registry
	if c.Metrics.Textfile != "" {
		reg = metricsRegistry
		if err := procguard.RegisterMetrics(reg); err != nil {
			return err
		}
	}

	res, runErr := g.EnsureRunning(ctx)
	if runErr == nil {
		g.Logger.Debug("guard pass complete", "state", res.State, "log", res.LogPath)
	}
	if reg != nil {
		if err := procguard.WriteMetrics(c.Metrics.Textfile, reg); err != nil {
			g.Logger.Warn("write metrics textfile", "path", c.Metrics.Textfile, "error", err)
		}
	}
	return runErr
}

func runStatus(ctx context.Context, configPath string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, g, cleanup, err := setup(configPath, stdout, stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	match, ok, err := g.Check(ctx)
	if err != nil {
		return err
	}
	if ok {
		g.Logger.Debug("matched", "cmdline", match)
		_, _ = fmt.Fprintln(stdout, "running")
		return nil
	}
	_, _ = fmt.Fprintln(stdout, "not running")
	return nil
}

