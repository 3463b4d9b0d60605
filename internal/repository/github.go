package repository

import (
	"context"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
)

// ReleaseRepository defines the interface for hosting-service release objects,
// keyed by (owner, repo, tag).

type ReleaseRepository interface {
	CreateRelease(ctx context.Context, tag, commit, name, body string) (*domain.Release, error)
	GetReleaseByTag(ctx context.Context, tag string) (*domain.Release, error)
	DeleteRelease(ctx context.Context, tag string) error
	ListReleases(ctx context.Context) ([]*domain.Release, error)
}
