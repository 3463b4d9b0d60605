package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/Utilities-tkgieng/releasectl/internal/params"
	"github.com/Utilities-tkgieng/releasectl/internal/repository"
	"github.com/Utilities-tkgieng/releasectl/internal/resolver"
	"go.uber.org/zap"
)

// FindRollbackTargetUseCase picks the release a rollback should point the
// params at. An explicit tag is validated against both the tag list and the
// published releases; with no explicit tag the target is the release
// preceding the one currently recorded in the params.

type FindRollbackTargetUseCase struct {
	GitRepo     repository.GitTagRepository
	ReleaseRepo repository.ReleaseRepository
	Params      params.Updater
	Log         *zap.Logger
}

// Execute resolves and validates the rollback target for repo.
func (uc *FindRollbackTargetUseCase) Execute(ctx context.Context, repo, explicitTag string) (*domain.Version, error) {
	if err := uc.GitRepo.FetchTags(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}
	tags, err := uc.GitRepo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	set := resolver.Parse(tags)
	if explicitTag != "" {
		return uc.validateTarget(ctx, set, explicitTag)
	}
	current, err := uc.Params.GetReleaseTag(ctx, repo)
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Kind == domain.KindNotFound {
			return nil, domain.NewInvalidInput(fmt.Sprintf("no release recorded for %s, pass a target tag explicitly", repo))
		}
		return nil, err
	}
	uc.Log.Info("rolling back from recorded release", zap.String("current", current))
	pred, err := set.Predecessor(current)
	if err != nil {
		return nil, err
	}
	return uc.validateTarget(ctx, set, pred.String())
}

// validateTarget confirms tag names both an existing git tag and a published
// release.
func (uc *FindRollbackTargetUseCase) validateTarget(ctx context.Context, set *resolver.TagSet, tag string) (*domain.Version, error) {
	target, err := domain.NewVersion(tag)
	if err != nil {
		return nil, err
	}
	if !set.Contains(target.String()) {
		return nil, domain.NewInvalidInput(fmt.Sprintf("invalid rollback target %s: no such tag", target))
	}
	if _, err := uc.ReleaseRepo.GetReleaseByTag(ctx, target.String()); err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Kind == domain.KindNotFound {
			return nil, domain.NewInvalidInput(fmt.Sprintf("invalid rollback target %s: no release published for it", target))
		}
		return nil, err
	}
	return target, nil
}
