package usecase

import (
	"context"
	"testing"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFindRollbackTargetUseCase_Execute(t *testing.T) {
	newUC := func(gitRepo *mockGitTagRepository, releaseRepo *mockReleaseRepository, updater *mockParamsUpdater) *FindRollbackTargetUseCase {
		return &FindRollbackTargetUseCase{
			GitRepo:     gitRepo,
			ReleaseRepo: releaseRepo,
			Params:      updater,
			Log:         zap.NewNop(),
		}
	}
	t.Run("Should accept an explicit tag with a published release", func(t *testing.T) {
		gitRepo := new(mockGitTagRepository)
		releaseRepo := new(mockReleaseRepository)
		updater := new(mockParamsUpdater)
		ctx := context.Background()
		gitRepo.On("FetchTags", ctx).Return(nil)
		gitRepo.On("ListTags", ctx).Return([]string{"v1.0.0", "v1.1.0"}, nil)
		releaseRepo.On("GetReleaseByTag", ctx, "v1.0.0").Return(&domain.Release{TagName: "v1.0.0"}, nil)
		target, err := newUC(gitRepo, releaseRepo, updater).Execute(ctx, "widgets", "v1.0.0")
		require.NoError(t, err)
		assert.Equal(t, "v1.0.0", target.String())
		gitRepo.AssertExpectations(t)
		releaseRepo.AssertExpectations(t)
	})
	t.Run("Should reject an explicit tag that does not exist", func(t *testing.T) {
		gitRepo := new(mockGitTagRepository)
		releaseRepo := new(mockReleaseRepository)
		updater := new(mockParamsUpdater)
		ctx := context.Background()
		gitRepo.On("FetchTags", ctx).Return(nil)
		gitRepo.On("ListTags", ctx).Return([]string{"v1.0.0"}, nil)
		_, err := newUC(gitRepo, releaseRepo, updater).Execute(ctx, "widgets", "v9.9.9")
		assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
		assert.Contains(t, err.Error(), "no such tag")
	})
	t.Run("Should reject an explicit tag without a published release", func(t *testing.T) {
		gitRepo := new(mockGitTagRepository)
		releaseRepo := new(mockReleaseRepository)
		updater := new(mockParamsUpdater)
		ctx := context.Background()
		gitRepo.On("FetchTags", ctx).Return(nil)
		gitRepo.On("ListTags", ctx).Return([]string{"v1.0.0"}, nil)
		releaseRepo.On("GetReleaseByTag", ctx, "v1.0.0").
			Return((*domain.Release)(nil), domain.NewNotFound("github", "release not found"))
		_, err := newUC(gitRepo, releaseRepo, updater).Execute(ctx, "widgets", "v1.0.0")
		assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
		assert.Contains(t, err.Error(), "no release published")
	})
	t.Run("Should default to the release before the recorded one", func(t *testing.T) {
		gitRepo := new(mockGitTagRepository)
		releaseRepo := new(mockReleaseRepository)
		updater := new(mockParamsUpdater)
		ctx := context.Background()
		gitRepo.On("FetchTags", ctx).Return(nil)
		gitRepo.On("ListTags", ctx).Return([]string{"v1.0.0", "v1.1.0", "v2.0.0"}, nil)
		updater.On("GetReleaseTag", ctx, "widgets").Return("v2.0.0", nil)
		releaseRepo.On("GetReleaseByTag", ctx, "v1.1.0").Return(&domain.Release{TagName: "v1.1.0"}, nil)
		target, err := newUC(gitRepo, releaseRepo, updater).Execute(ctx, "widgets", "")
		require.NoError(t, err)
		assert.Equal(t, "v1.1.0", target.String())
		updater.AssertExpectations(t)
	})
	t.Run("Should fail when the recorded release is the first", func(t *testing.T) {
		gitRepo := new(mockGitTagRepository)
		releaseRepo := new(mockReleaseRepository)
		updater := new(mockParamsUpdater)
		ctx := context.Background()
		gitRepo.On("FetchTags", ctx).Return(nil)
		gitRepo.On("ListTags", ctx).Return([]string{"v1.0.0"}, nil)
		updater.On("GetReleaseTag", ctx, "widgets").Return("v1.0.0", nil)
		_, err := newUC(gitRepo, releaseRepo, updater).Execute(ctx, "widgets", "")
		assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
		assert.Contains(t, err.Error(), "first release")
	})
	t.Run("Should ask for an explicit tag when params record nothing", func(t *testing.T) {
		gitRepo := new(mockGitTagRepository)
		releaseRepo := new(mockReleaseRepository)
		updater := new(mockParamsUpdater)
		ctx := context.Background()
		gitRepo.On("FetchTags", ctx).Return(nil)
		gitRepo.On("ListTags", ctx).Return([]string{"v1.0.0"}, nil)
		updater.On("GetReleaseTag", ctx, "widgets").
			Return("", domain.NewNotFound("params", "no release tag recorded"))
		_, err := newUC(gitRepo, releaseRepo, updater).Execute(ctx, "widgets", "")
		assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
		assert.Contains(t, err.Error(), "pass a target tag explicitly")
	})
}
