package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlyService_BuildSetPipelineArgs(t *testing.T) {
	svc := &flyService{timeout: DefaultFlyTimeout}
	t.Run("Should build a minimal set-pipeline invocation", func(t *testing.T) {
		args, err := svc.buildSetPipelineArgs(PipelineOptions{
			Target:     "dev",
			Pipeline:   "widgets-release",
			ConfigPath: "ci/pipeline.yml",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"-t", "dev", "set-pipeline", "-p", "widgets-release", "-c", "ci/pipeline.yml"}, args)
	})
	t.Run("Should pass vars files and vars in stable order", func(t *testing.T) {
		args, err := svc.buildSetPipelineArgs(PipelineOptions{
			Target:     "dev",
			Pipeline:   "widgets-release",
			ConfigPath: "ci/pipeline.yml",
			VarsFiles:  []string{"params/release-tags.yml", "params/common.yml"},
			Vars:       map[string]string{"repo": "widgets", "branch": "main"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"-t", "dev", "set-pipeline", "-p", "widgets-release", "-c", "ci/pipeline.yml",
			"-l", "params/release-tags.yml", "-l", "params/common.yml",
			"-v", "branch=main", "-v", "repo=widgets",
		}, args)
	})
	t.Run("Should add the non-interactive flag last", func(t *testing.T) {
		args, err := svc.buildSetPipelineArgs(PipelineOptions{
			Target:         "dev",
			Pipeline:       "widgets-release",
			ConfigPath:     "ci/pipeline.yml",
			NonInteractive: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "-n", args[len(args)-1])
	})
	t.Run("Should reject an empty target", func(t *testing.T) {
		_, err := svc.buildSetPipelineArgs(PipelineOptions{
			Pipeline:   "widgets-release",
			ConfigPath: "ci/pipeline.yml",
		})
		assert.ErrorContains(t, err, "target cannot be empty")
	})
	t.Run("Should reject pipeline names with shell metacharacters", func(t *testing.T) {
		_, err := svc.buildSetPipelineArgs(PipelineOptions{
			Target:     "dev",
			Pipeline:   "widgets;rm -rf /",
			ConfigPath: "ci/pipeline.yml",
		})
		assert.ErrorContains(t, err, "invalid pipeline")
	})
	t.Run("Should reject config paths that look like flags", func(t *testing.T) {
		_, err := svc.buildSetPipelineArgs(PipelineOptions{
			Target:     "dev",
			Pipeline:   "widgets-release",
			ConfigPath: "--load-vars-from=evil.yml",
		})
		assert.ErrorContains(t, err, "invalid pipeline config")
	})
}
