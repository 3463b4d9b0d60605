package cmd

import (
	"errors"
	"fmt"

	"github.com/Utilities-tkgieng/releasectl/internal/coordinator"
	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/spf13/cobra"
)

// newCreateCmd creates the create command
func newCreateCmd(c *container) *cobra.Command {
	var (
		scope          repoScope
		tag            string
		bump           string
		name           string
		body           string
		dryRun         bool
		nonInteractive bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a release: tag, release object and params entry",
		Long: `Create a release for a repository.

The tag is resolved by bumping the highest existing semver tag unless an
explicit tag is given. The annotated tag is created at HEAD and pushed, the
release is published for it, and the params repo is pointed at the new tag.
A failure between those stages is reported with the exact stage reached and
the command that restores consistency.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := domain.ParseBumpKind(bump)
			if err != nil {
				return err
			}
			coord, err := c.coordinatorFor(scope)
			if err != nil {
				return err
			}
			result, err := coord.Create(cmd.Context(), coordinator.CreateOptions{
				Repo:    scope.repo,
				Tag:     tag,
				Bump:    kind,
				Name:    name,
				Body:    body,
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
			fmt.Fprintf(cmd.OutOrStdout(), "Created release %s for %s\n", result.Tag, scope.repo)
			return nil
		},
	}
	addScopeFlags(cmd, &scope)
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Explicit tag to create (default: bump the latest)")
	cmd.Flags().StringVar(&bump, "bump", "", "Version bump kind: major, minor or patch (default patch)")
	cmd.Flags().StringVar(&name, "name", "", "Release name (default: the tag)")
	cmd.Flags().StringVarP(&body, "body", "b", "", "Release body, also used as the tag message")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the plan without mutating anything")
	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "n", false, "Skip confirmation prompts")
	return cmd
}
