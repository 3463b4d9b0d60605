package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/Utilities-tkgieng/releasectl/internal/service"
	"github.com/spf13/cobra"
)

// newSetPipelineCmd creates the set-pipeline command
func newSetPipelineCmd(c *container) *cobra.Command {
	var (
		scope          repoScope
		foundation     string
		pipeline       string
		configPath     string
		varsFiles      []string
		vars           map[string]string
		nonInteractive bool
	)
	cmd := &cobra.Command{
		Use:   "set-pipeline",
		Short: "Apply the release pipeline on a Concourse foundation",
		Long: `Apply the repository's release pipeline with a single fly set-pipeline
call. The params repo's release-tags file is loaded as a vars file so the
pipeline picks up the currently recorded release tag.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.scopedConfig(scope)
			if pipeline == "" {
				pipeline = scope.repo + "-release"
			}
			files := varsFiles
			if len(files) == 0 {
				files = []string{filepath.Join(cfg.ParamsDir(), cfg.ParamsFile)}
			}
			err := c.flySvc.SetReleasePipeline(cmd.Context(), service.PipelineOptions{
				Target:         foundation,
				Pipeline:       pipeline,
				ConfigPath:     configPath,
				VarsFiles:      files,
				Vars:           vars,
				NonInteractive: nonInteractive,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pipeline %s set on %s\n", pipeline, foundation)
			return nil
		},
	}
	addScopeFlags(cmd, &scope)
	cmd.Flags().StringVarP(&foundation, "foundation", "f", "", "Concourse foundation (fly target, required)")
	cmd.Flags().StringVar(&pipeline, "pipeline", "", "Pipeline name (default: <repo>-release)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Pipeline config file (required)")
	cmd.Flags().StringArrayVarP(&varsFiles, "load-vars-from", "l", nil, "Vars file passed to fly (default: the params release-tags file)")
	cmd.Flags().StringToStringVarP(&vars, "var", "v", nil, "Pipeline var as key=value")
	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "n", false, "Skip the fly confirmation prompt")
	_ = cmd.MarkFlagRequired("foundation")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
