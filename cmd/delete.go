package cmd

import (
	"errors"
	"fmt"

	"github.com/Utilities-tkgieng/releasectl/internal/coordinator"
	"github.com/spf13/cobra"
)

// newDeleteCmd creates the delete command
func newDeleteCmd(c *container) *cobra.Command {
	var (
		scope          repoScope
		tag            string
		keepTag        bool
		dryRun         bool
		nonInteractive bool
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a release and, unless kept, its git tag",
		Long: `Delete a release for a repository.

The release object is removed first, then the tag locally and on the remote
unless --keep-tag is given. Pieces that are already absent are tolerated, so
repeating a delete is safe. The params repo is not touched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			coord, err := c.coordinatorFor(scope)
			if err != nil {
				return err
			}
			result, err := coord.Delete(cmd.Context(), coordinator.DeleteOptions{
				Repo:       scope.repo,
				Tag:        tag,
				KeepGitTag: keepTag,
				DryRun:     dryRun,
				Confirm:    confirmFunc(nonInteractive, cmd.InOrStdin(), cmd.OutOrStdout()),
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
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted release %s of %s\n", result.Tag, scope.repo)
			return nil
		},
	}
	addScopeFlags(cmd, &scope)
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Tag whose release should be deleted (required)")
	cmd.Flags().BoolVarP(&keepTag, "keep-tag", "x", false, "Delete only the release, keep the git tag")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the plan without mutating anything")
	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "n", false, "Skip confirmation prompts")
	_ = cmd.MarkFlagRequired("tag")
	return cmd
}
