package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KhushiMandaliya2/RoleCall/internal/app"
	"github.com/KhushiMandaliya2/RoleCall/internal/config"
	"github.com/KhushiMandaliya2/RoleCall/internal/logging"
)

// newRootCmd builds the command tree. All sub-commands are registered here.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rolecall",
		Short:         "RoleCall job board client",
		Long:          "RoleCall manages job postings for recruiters and lets candidates browse and apply to jobs on a RoleCall job board API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (YAML, JSON or TOML)")
	flags.Bool("metrics", false, "Print request metrics to stderr when the command finishes")
	config.RegisterFlags(flags)

	cmd.AddCommand(
		postingsCmd(),
		jobsCmd(),
		boardCmd(),
	)

	return cmd
}

// runWithApp loads the configuration from cmd's flags, builds an App and runs fn with it.
func runWithApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	flags := cmd.Flags()
	path, err := flags.GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.Load(path, flags)
	if err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	a, err := app.New(cfg, cmd.OutOrStdout(), cmd.InOrStdin(), logger)
	if err != nil {
		return err
	}

	runErr := fn(a)

	if printMetrics, _ := flags.GetBool("metrics"); printMetrics {
		if err := a.WriteMetrics(cmd.ErrOrStderr()); err != nil {
			logger.Warn("failed to write metrics", "error", err)
		}
	}
	return runErr
}
