package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "releasectl",
	Short: "A CLI tool for coordinating release lifecycles",
	Long: `releasectl keeps a git tag, a GitHub release and the params repo's
release reference consistent across create, delete and rollback operations.`,
}

func Execute() error {
	return rootCmd.Execute()
}
