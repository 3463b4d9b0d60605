package cmd

import (
	"errors"
	"fmt"

	"github.com/Utilities-tkgieng/releasectl/internal/coordinator"
	"github.com/spf13/cobra"
)

// newUpdateParamsCmd creates the update-params command
func newUpdateParamsCmd(c *container) *cobra.Command {
	var (
		scope          repoScope
		tag            string
		dryRun         bool
		nonInteractive bool
	)
	cmd := &cobra.Command{
		Use:   "update-params",
		Short: "Point the params repo at a tag without touching the release",
		Long: `Update only the params repo's release reference for a repository.

This is the remediation for a create that published its release but failed
to update the params. Without a tag, the highest existing tag is used.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			coord, err := c.coordinatorFor(scope)
			if err != nil {
				return err
			}
			result, err := coord.UpdateParams(cmd.Context(), coordinator.UpdateParamsOptions{
				Repo:    scope.repo,
				Tag:     tag,
				DryRun:  dryRun,
				Confirm: confirmFunc(nonInteractive, cmd.InOrStdin(), cmd.OutOrStdout()),
			})
			if errors.Is(err, coordinator.ErrAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			if err != nil {
				return err
			}
			if dryRun {
				printPlan(cmd, result.Plan)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Params now point %s at %s\n", scope.repo, result.Tag)
			return nil
		},
	}
	addScopeFlags(cmd, &scope)
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Tag to record (default: the latest tag)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the plan without mutating anything")
	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "n", false, "Skip confirmation prompts")
	return cmd
}
