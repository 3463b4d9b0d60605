package cmd

import (
	"errors"
	"fmt"

	"github.com/Utilities-tkgieng/releasectl/internal/coordinator"
	"github.com/spf13/cobra"
)

// newRollbackCmd creates the rollback command
func newRollbackCmd(c *container) *cobra.Command {
	var (
		scope          repoScope
		tag            string
		dryRun         bool
		nonInteractive bool
	)
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Point the params repo back at an earlier release",
		Long: `Roll back a repository's deployed release.

Without a tag, the target is the release preceding the one the params repo
currently records. An explicit tag must name an existing tag with a
published release. Rollback only repoints the params reference; the target
release and tag are left untouched, so repeating it is a no-op.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			coord, err := c.coordinatorFor(scope)
			if err != nil {
				return err
			}
			result, err := coord.Rollback(cmd.Context(), coordinator.RollbackOptions{
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
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled %s back to release %s at %s\n", scope.repo, result.Target, result.Commit)
			return nil
		},
	}
	addScopeFlags(cmd, &scope)
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Explicit rollback target (default: predecessor of the recorded release)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the plan without mutating anything")
	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "n", false, "Skip confirmation prompts")
	return cmd
}
