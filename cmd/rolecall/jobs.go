package main

import (
	"github.com/spf13/cobra"

	"github.com/KhushiMandaliya2/RoleCall/internal/app"
)

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Browse and apply to jobs",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List jobs for the current user",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runWithApp(cmd, func(a *app.App) error {
					return a.ListJobs(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "view <id>",
			Short: "Show the details of a job",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithApp(cmd, func(a *app.App) error {
					return a.ViewJob(cmd.Context(), args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "apply <id>",
			Short: "Apply to a job",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithApp(cmd, func(a *app.App) error {
					return a.Apply(cmd.Context(), args[0])
				})
			},
		},
	)
	return cmd
}

func boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show job postings and the job feed side by side",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				return a.Board(cmd.Context())
			})
		},
	}
}
