package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Utilities-tkgieng/releasectl/internal/config"
	"github.com/Utilities-tkgieng/releasectl/internal/coordinator"
	"github.com/Utilities-tkgieng/releasectl/internal/params"
	"github.com/Utilities-tkgieng/releasectl/internal/repository"
	"github.com/Utilities-tkgieng/releasectl/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// container holds the invocation-scoped dependencies of the application.

type container struct {
	cfg    *config.Config
	fs     afero.Fs
	log    *zap.Logger
	flySvc service.FlyService
}

// newContainer creates a new container with all the dependencies.
func newContainer() (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &container{
		cfg:    cfg,
		fs:     afero.NewOsFs(),
		log:    log,
		flySvc: service.NewFlyService(),
	}, nil
}

// newLogger builds the invocation logger. Every line carries a run ID so
// interleaved runs against the same repos can be told apart.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	zapCfg.Encoding = "console"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log.With(zap.String("run_id", uuid.NewString())), nil
}

// repoScope carries the per-command overrides of the global configuration.
type repoScope struct {
	repo       string
	owner      string
	paramsRepo string
	workspace  string
}

// addScopeFlags registers the flags every repo-scoped command shares.
func addScopeFlags(cmd *cobra.Command, scope *repoScope) {
	cmd.Flags().StringVarP(&scope.repo, "repo", "r", "", "Repository to operate on (required)")
	cmd.Flags().StringVarP(&scope.owner, "owner", "o", "", "GitHub owner override")
	cmd.Flags().StringVarP(&scope.paramsRepo, "params-repo", "p", "", "Params repository override")
	cmd.Flags().StringVarP(&scope.workspace, "workspace", "w", "", "Workspace directory override")
	_ = cmd.MarkFlagRequired("repo")
}

// scopedConfig applies the command-line overrides to a copy of the loaded
// configuration.
func (c *container) scopedConfig(scope repoScope) *config.Config {
	cfg := *c.cfg
	if scope.owner != "" {
		cfg.GithubOwner = scope.owner
	}
	if scope.paramsRepo != "" {
		cfg.ParamsRepo = scope.paramsRepo
	}
	if scope.workspace != "" {
		cfg.GitWorkspace = scope.workspace
	}
	return &cfg
}

// coordinatorFor wires the tag, release and params clients for one
// repository. Clients are scoped to a single invocation; nothing outlives
// the command.
func (c *container) coordinatorFor(scope repoScope) (*coordinator.Coordinator, error) {
	cfg := c.scopedConfig(scope)
	if err := cfg.ValidateForGitHubOperations(); err != nil {
		return nil, err
	}
	gitRepo, err := repository.NewGitTagRepository(cfg.RepoDir(scope.repo), cfg.GithubToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository clone: %w", err)
	}
	releaseRepo, err := repository.NewGithubReleaseRepository(cfg.GithubToken, cfg.GithubOwner, scope.repo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize release client: %w", err)
	}
	updater := params.NewUpdater(c.fs, cfg.ParamsDir(), cfg.ParamsFile, cfg.GithubToken, c.log)
	return coordinator.New(gitRepo, releaseRepo, updater, c.log), nil
}

// confirmFunc builds the [yN] prompt for interactive runs. Non-interactive
// runs approve everything.
func confirmFunc(nonInteractive bool, in io.Reader, out io.Writer) coordinator.ConfirmFunc {
	if nonInteractive {
		return nil
	}
	reader := bufio.NewReader(in)
	return func(prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [yN] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

// printPlan renders a dry-run plan to the command's output.
func printPlan(cmd *cobra.Command, plan []coordinator.PlannedAction) {
	if len(plan) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry-run: nothing to do")
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Dry-run plan:")
	for _, action := range plan {
		fmt.Fprintf(out, "  %s\n", action)
	}
}

// InitCommands initializes all commands with their dependencies
func InitCommands() error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	rootCmd.AddCommand(newCreateCmd(c))
	rootCmd.AddCommand(newDeleteCmd(c))
	rootCmd.AddCommand(newRollbackCmd(c))
	rootCmd.AddCommand(newUpdateParamsCmd(c))
	rootCmd.AddCommand(newSetPipelineCmd(c))
	rootCmd.AddCommand(newVersionCmd())
	return nil
}
