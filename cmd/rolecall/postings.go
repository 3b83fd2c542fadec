package main

import (
	"github.com/spf13/cobra"

	"github.com/KhushiMandaliya2/RoleCall/internal/app"
)

func postingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "postings",
		Aliases: []string{"posting"},
		Short:   "Manage job postings",
	}

	cmd.AddCommand(
		postingsListCmd(),
		postingsCreateCmd(),
		postingsUpdateCmd(),
		postingsDeleteCmd(),
	)
	return cmd
}

func postingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List job postings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				return a.ListPostings(cmd.Context())
			})
		},
	}
}

func postingsCreateCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a job posting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				return a.CreatePosting(cmd.Context(), title, description)
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Job title (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Job description")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func postingsUpdateCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the title and/or description of a job posting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edit app.PostingEdit
			if cmd.Flags().Changed("title") {
				edit.Title = &title
			}
			if cmd.Flags().Changed("description") {
				edit.Description = &description
			}
			return runWithApp(cmd, func(a *app.App) error {
				return a.UpdatePosting(cmd.Context(), args[0], edit)
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New job title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New job description")
	cmd.MarkFlagsOneRequired("title", "description")
	return cmd
}

func postingsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a job posting",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, func(a *app.App) error {
				return a.DeletePosting(cmd.Context(), args[0], yes)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}
