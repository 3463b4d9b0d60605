package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/Utilities-tkgieng/releasectl/internal/params"
	"github.com/Utilities-tkgieng/releasectl/internal/repository"
	"github.com/Utilities-tkgieng/releasectl/internal/resolver"
	"github.com/Utilities-tkgieng/releasectl/internal/usecase"
	"go.uber.org/zap"
)

// ErrAborted is returned when the operator declines a confirmation prompt.
// It is a clean exit, not a failure.
var ErrAborted = errors.New("operation aborted")

// ConfirmFunc asks the operator to approve a mutation. A nil ConfirmFunc
// approves everything.
type ConfirmFunc func(prompt string) (bool, error)

// Coordinator keeps a git tag, a hosting-service release and the params repo
// reference consistent across create, delete and rollback. Mutations are
// ordered tag -> release -> params; a failure between stages is reported with
// the stage reached and the command that restores consistency, never
// compensated silently.
type Coordinator struct {
	gitRepo     repository.GitTagRepository
	releaseRepo repository.ReleaseRepository
	params      params.Updater
	log         *zap.Logger
}

// New creates a Coordinator.
func New(
	gitRepo repository.GitTagRepository,
	releaseRepo repository.ReleaseRepository,
	paramsUpdater params.Updater,
	log *zap.Logger,
) *Coordinator {
	return &Coordinator{
		gitRepo:     gitRepo,
		releaseRepo: releaseRepo,
		params:      paramsUpdater,
		log:         log,
	}
}

// CreateOptions configures a create operation.
type CreateOptions struct {
	Repo    string
	Tag     string // explicit tag; empty means resolve by bumping the latest
	Bump    domain.BumpKind
	Name    string // release name; defaults to the tag
	Body    string // release body, also used as the tag message
	DryRun  bool
	Confirm ConfirmFunc
}

// CreateResult reports what a create did, or would do under dry-run.
type CreateResult struct {
	Tag     string
	Commit  string
	Release *domain.Release
	Plan    []PlannedAction
}

// Create resolves the next tag, creates and pushes it at HEAD, publishes the
// release and points the params repo at it.
func (c *Coordinator) Create(ctx context.Context, opts CreateOptions) (*CreateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()
	tag, err := c.resolveCreateTag(ctx, opts)
	if err != nil {
		return nil, err
	}
	head, err := c.gitRepo.HeadCommit(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if err := c.confirm(opts.Confirm, fmt.Sprintf("Create release %s for %s at %s?", tag, opts.Repo, shortSHA(head))); err != nil {
		return nil, err
	}
	body := opts.Body
	if body == "" {
		body = "Release " + tag
	}
	name := opts.Name
	if name == "" {
		name = tag
	}
	if opts.DryRun {
		rec := NewRecorder()
		rec.Record("git", "would create annotated tag %s at %s and push it", tag, shortSHA(head))
		rec.Record("github", "would create release %q for tag %s", name, tag)
		rec.Record("params", "would set %s to %s", params.KeyFor(opts.Repo), tag)
		return &CreateResult{Tag: tag, Commit: head, Plan: rec.Actions()}, nil
	}
	release, err := c.mutateCreate(ctx, opts.Repo, tag, head, name, body)
	if err != nil {
		return nil, err
	}
	c.log.Info("release created",
		zap.String("repo", opts.Repo),
		zap.String("tag", tag),
		zap.String("commit", shortSHA(head)))
	return &CreateResult{Tag: tag, Commit: head, Release: release}, nil
}

// mutateCreate runs the three mutation stages in order. Each stage's failure
// names the exact partial state and the follow-up command; an earlier stage's
// work is never undone automatically.
func (c *Coordinator) mutateCreate(ctx context.Context, repo, tag, head, name, body string) (*domain.Release, error) {
	if err := c.gitRepo.CreateTag(ctx, tag, head, body); err != nil {
		return nil, err
	}
	if err := c.withRetry(ctx, "push tag", func(ctx context.Context) error {
		return c.gitRepo.PushTag(ctx, tag)
	}); err != nil {
		return nil, domain.NewPartialFailure(domain.StageTag,
			fmt.Sprintf("tag %s created locally but not pushed", tag),
			fmt.Sprintf("releasectl delete -r %s -t %s", repo, tag), err)
	}
	var release *domain.Release
	if err := c.withRetry(ctx, "create release", func(ctx context.Context) error {
		var createErr error
		release, createErr = c.releaseRepo.CreateRelease(ctx, tag, head, name, body)
		return createErr
	}); err != nil {
		return nil, domain.NewPartialFailure(domain.StageRelease,
			fmt.Sprintf("tag %s pushed, release creation failed", tag),
			fmt.Sprintf("releasectl delete -r %s -t %s", repo, tag), err)
	}
	if err := c.withRetry(ctx, "update params", func(ctx context.Context) error {
		return c.params.SetReleaseTag(ctx, repo, tag)
	}); err != nil {
		return nil, domain.NewPartialFailure(domain.StageParams,
			fmt.Sprintf("release %s created, params not updated", tag),
			fmt.Sprintf("releasectl update-params -r %s -t %s", repo, tag), err)
	}
	return release, nil
}

// resolveCreateTag picks the tag a create should use: the explicit one when
// given and unused, otherwise the latest tag bumped by the requested kind.
func (c *Coordinator) resolveCreateTag(ctx context.Context, opts CreateOptions) (string, error) {
	if opts.Tag == "" {
		uc := &usecase.ResolveNextTagUseCase{GitRepo: c.gitRepo, Log: c.log}
		next, err := uc.Execute(ctx, opts.Bump)
		if err != nil {
			return "", err
		}
		return next.String(), nil
	}
	explicit, err := domain.NewVersion(opts.Tag)
	if err != nil {
		return "", err
	}
	if err := c.withRetry(ctx, "fetch tags", c.gitRepo.FetchTags); err != nil {
		return "", fmt.Errorf("failed to fetch tags: %w", err)
	}
	exists, err := c.gitRepo.TagExists(ctx, explicit.String())
	if err != nil {
		return "", fmt.Errorf("failed to check tag: %w", err)
	}
	if exists {
		return "", domain.NewConflict("git", fmt.Sprintf("tag %s already exists", explicit))
	}
	return explicit.String(), nil
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Repo       string
	Tag        string
	KeepGitTag bool // delete only the release, keep the tag
	DryRun     bool
	Confirm    ConfirmFunc
}

// DeleteResult reports what a delete did, or would do under dry-run.
type DeleteResult struct {
	Tag  string
	Plan []PlannedAction
}

// Delete removes the release and, unless KeepGitTag, the tag locally and
// remotely. Already-absent pieces are tolerated and logged so the operation
// is idempotent under repetition.
func (c *Coordinator) Delete(ctx context.Context, opts DeleteOptions) (*DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()
	if opts.Tag == "" {
		return nil, domain.NewInvalidInput("a tag is required to delete a release")
	}
	target, err := domain.NewVersion(opts.Tag)
	if err != nil {
		return nil, err
	}
	tag := target.String()
	tagExists, release, err := c.lookupTagAndRelease(ctx, tag)
	if err != nil {
		return nil, err
	}
	if !tagExists && release == nil {
		return nil, c.unknownTagError(ctx, tag)
	}
	if err := c.confirm(opts.Confirm, fmt.Sprintf("Delete release %s of %s?", tag, opts.Repo)); err != nil {
		return nil, err
	}
	if opts.DryRun {
		return &DeleteResult{Tag: tag, Plan: c.planDelete(opts, tag, tagExists, release)}, nil
	}
	if err := c.mutateDelete(ctx, opts, tag, release); err != nil {
		return nil, err
	}
	c.log.Info("release deleted",
		zap.String("repo", opts.Repo),
		zap.String("tag", tag),
		zap.Bool("kept_tag", opts.KeepGitTag))
	return &DeleteResult{Tag: tag}, nil
}

func (c *Coordinator) mutateDelete(ctx context.Context, opts DeleteOptions, tag string, release *domain.Release) error {
	if release != nil {
		err := c.withRetry(ctx, "delete release", func(ctx context.Context) error {
			return c.releaseRepo.DeleteRelease(ctx, tag)
		})
		if err != nil && !domain.IsKind(err, domain.KindNotFound) {
			return err
		}
		if domain.IsKind(err, domain.KindNotFound) {
			c.log.Info("release already deleted", zap.String("tag", tag))
		}
	} else {
		c.log.Info("no release bound to tag, nothing to delete from the registry", zap.String("tag", tag))
	}
	if opts.KeepGitTag {
		return nil
	}
	err := c.withRetry(ctx, "delete remote tag", func(ctx context.Context) error {
		return c.gitRepo.DeleteRemoteTag(ctx, tag)
	})
	if err != nil && !domain.IsKind(err, domain.KindNotFound) {
		return err
	}
	if err := c.gitRepo.DeleteLocalTag(ctx, tag); err != nil && !domain.IsKind(err, domain.KindNotFound) {
		return err
	}
	return nil
}

func (c *Coordinator) planDelete(opts DeleteOptions, tag string, tagExists bool, release *domain.Release) []PlannedAction {
	rec := NewRecorder()
	if release != nil {
		rec.Record("github", "would delete release %s", tag)
	}
	if !opts.KeepGitTag && tagExists {
		rec.Record("git", "would delete tag %s locally and on the remote", tag)
	}
	return rec.Actions()
}

// lookupTagAndRelease checks both systems for the tag. An absent release is
// reported as nil, not an error.
func (c *Coordinator) lookupTagAndRelease(ctx context.Context, tag string) (bool, *domain.Release, error) {
	if err := c.withRetry(ctx, "fetch tags", c.gitRepo.FetchTags); err != nil {
		return false, nil, fmt.Errorf("failed to fetch tags: %w", err)
	}
	tagExists, err := c.gitRepo.TagExists(ctx, tag)
	if err != nil {
		return false, nil, fmt.Errorf("failed to check tag: %w", err)
	}
	var release *domain.Release
	err = c.withRetry(ctx, "get release", func(ctx context.Context) error {
		var getErr error
		release, getErr = c.releaseRepo.GetReleaseByTag(ctx, tag)
		return getErr
	})
	if err != nil {
		if !domain.IsKind(err, domain.KindNotFound) {
			return false, nil, err
		}
		release = nil
	}
	return tagExists, release, nil
}

// unknownTagError names the releases that do exist so the operator can pick
// a real one.
func (c *Coordinator) unknownTagError(ctx context.Context, tag string) error {
	msg := fmt.Sprintf("no tag or release named %s", tag)
	releases, err := c.releaseRepo.ListReleases(ctx)
	if err == nil && len(releases) > 0 {
		available := make([]string, 0, len(releases))
		for _, r := range releases {
			available = append(available, r.TagName)
		}
		msg = fmt.Sprintf("%s; available releases: %s", msg, strings.Join(available, ", "))
	}
	return domain.NewNotFound("git", msg)
}

// RollbackOptions configures a rollback operation.
type RollbackOptions struct {
	Repo    string
	Tag     string // explicit target; empty rolls back to the predecessor of the recorded release
	DryRun  bool
	Confirm ConfirmFunc
}

// RollbackResult reports the resolved target and the commit it names.
type RollbackResult struct {
	Target string
	Commit string
	Plan   []PlannedAction
}

// Rollback repoints the params repo at an earlier, already-released tag. It
// never deletes or recreates the target release or tag, so repeating it with
// the same target is a no-op.
func (c *Coordinator) Rollback(ctx context.Context, opts RollbackOptions) (*RollbackResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()
	uc := &usecase.FindRollbackTargetUseCase{
		GitRepo:     c.gitRepo,
		ReleaseRepo: c.releaseRepo,
		Params:      c.params,
		Log:         c.log,
	}
	target, err := uc.Execute(ctx, opts.Repo, opts.Tag)
	if err != nil {
		return nil, err
	}
	tag := target.String()
	commit, err := c.gitRepo.CommitForTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve commit for %s: %w", tag, err)
	}
	if err := c.confirm(opts.Confirm, fmt.Sprintf("Point %s back at release %s at %s?", opts.Repo, tag, shortSHA(commit))); err != nil {
		return nil, err
	}
	if opts.DryRun {
		rec := NewRecorder()
		rec.Record("params", "would set %s to %s", params.KeyFor(opts.Repo), tag)
		return &RollbackResult{Target: tag, Commit: commit, Plan: rec.Actions()}, nil
	}
	if err := c.withRetry(ctx, "update params", func(ctx context.Context) error {
		return c.params.SetReleaseTag(ctx, opts.Repo, tag)
	}); err != nil {
		return nil, err
	}
	c.log.Info("rolled back",
		zap.String("repo", opts.Repo),
		zap.String("target", tag),
		zap.String("commit", shortSHA(commit)))
	return &RollbackResult{Target: tag, Commit: commit}, nil
}

// UpdateParamsOptions configures a params-only update.
type UpdateParamsOptions struct {
	Repo    string
	Tag     string // empty means the latest tag
	DryRun  bool
	Confirm ConfirmFunc
}

// UpdateParamsResult reports the tag the params were pointed at.
type UpdateParamsResult struct {
	Tag  string
	Plan []PlannedAction
}

// UpdateParams points the params repo at a tag without touching the tag or
// release. This is the remediation path for a create that failed in its last
// stage.
func (c *Coordinator) UpdateParams(ctx context.Context, opts UpdateParamsOptions) (*UpdateParamsResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()
	tag := opts.Tag
	if tag == "" {
		if err := c.withRetry(ctx, "fetch tags", c.gitRepo.FetchTags); err != nil {
			return nil, fmt.Errorf("failed to fetch tags: %w", err)
		}
		tags, err := c.gitRepo.ListTags(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tags: %w", err)
		}
		latest := resolver.Parse(tags).Latest()
		if latest == nil {
			return nil, domain.NewNotFound("git", "no tags to point the params at")
		}
		tag = latest.String()
	} else {
		parsed, err := domain.NewVersion(tag)
		if err != nil {
			return nil, err
		}
		tag = parsed.String()
	}
	current, err := c.params.GetReleaseTag(ctx, opts.Repo)
	if err != nil && !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}
	prompt := fmt.Sprintf("Point params for %s at %s?", opts.Repo, tag)
	if current != "" {
		c.log.Info("updating params reference",
			zap.String("repo", opts.Repo),
			zap.String("from", current),
			zap.String("to", tag))
		prompt = fmt.Sprintf("Update params for %s from %s to %s?", opts.Repo, current, tag)
	}
	if err := c.confirm(opts.Confirm, prompt); err != nil {
		return nil, err
	}
	if opts.DryRun {
		rec := NewRecorder()
		rec.Record("params", "would set %s to %s", params.KeyFor(opts.Repo), tag)
		return &UpdateParamsResult{Tag: tag, Plan: rec.Actions()}, nil
	}
	if err := c.withRetry(ctx, "update params", func(ctx context.Context) error {
		return c.params.SetReleaseTag(ctx, opts.Repo, tag)
	}); err != nil {
		return nil, err
	}
	return &UpdateParamsResult{Tag: tag}, nil
}

func (c *Coordinator) confirm(fn ConfirmFunc, prompt string) error {
	if fn == nil {
		return nil
	}
	ok, err := fn(prompt)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return ErrAborted
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
