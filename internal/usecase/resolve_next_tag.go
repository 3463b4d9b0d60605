package usecase

import (
	"context"
	"fmt"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/Utilities-tkgieng/releasectl/internal/repository"
	"github.com/Utilities-tkgieng/releasectl/internal/resolver"
	"go.uber.org/zap"
)

// ResolveNextTagUseCase computes the tag a new release should carry: the
// highest existing semver tag bumped by the requested kind.

type ResolveNextTagUseCase struct {
	GitRepo repository.GitTagRepository
	Log     *zap.Logger
}

// Execute refreshes tags from the remote, orders them by semver precedence
// and bumps the latest. A repository with no parseable tags starts at the
// first bump of v0.0.0.
func (uc *ResolveNextTagUseCase) Execute(ctx context.Context, kind domain.BumpKind) (*domain.Version, error) {
	if err := uc.GitRepo.FetchTags(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}
	tags, err := uc.GitRepo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	set := resolver.Parse(tags)
	if malformed := set.Malformed(); len(malformed) > 0 {
		uc.Log.Warn("ignoring tags that are not semver", zap.Strings("tags", malformed))
	}
	return set.Next(kind)
}
