package usecase

import (
	"context"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/stretchr/testify/mock"
)

// Mock for GitTagRepository - implements ALL methods from the interface
type mockGitTagRepository struct{ mock.Mock }

func (m *mockGitTagRepository) ListTags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}
func (m *mockGitTagRepository) TagExists(ctx context.Context, tag string) (bool, error) {
	args := m.Called(ctx, tag)
	return args.Bool(0), args.Error(1)
}
func (m *mockGitTagRepository) HeadCommit(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
func (m *mockGitTagRepository) CommitForTag(ctx context.Context, tag string) (string, error) {
	args := m.Called(ctx, tag)
	return args.String(0), args.Error(1)
}
func (m *mockGitTagRepository) CreateTag(ctx context.Context, tag, commit, message string) error {
	args := m.Called(ctx, tag, commit, message)
	return args.Error(0)
}
func (m *mockGitTagRepository) DeleteLocalTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}
func (m *mockGitTagRepository) DeleteRemoteTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}
func (m *mockGitTagRepository) PushTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}
func (m *mockGitTagRepository) FetchTags(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Mock for ReleaseRepository
type mockReleaseRepository struct{ mock.Mock }

func (m *mockReleaseRepository) CreateRelease(ctx context.Context, tag, commit, name, body string) (*domain.Release, error) {
	args := m.Called(ctx, tag, commit, name, body)
	rel, _ := args.Get(0).(*domain.Release)
	return rel, args.Error(1)
}
func (m *mockReleaseRepository) GetReleaseByTag(ctx context.Context, tag string) (*domain.Release, error) {
	args := m.Called(ctx, tag)
	rel, _ := args.Get(0).(*domain.Release)
	return rel, args.Error(1)
}
func (m *mockReleaseRepository) DeleteRelease(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}
func (m *mockReleaseRepository) ListReleases(ctx context.Context) ([]*domain.Release, error) {
	args := m.Called(ctx)
	rels, _ := args.Get(0).([]*domain.Release)
	return rels, args.Error(1)
}

// Mock for params.Updater
type mockParamsUpdater struct{ mock.Mock }

func (m *mockParamsUpdater) GetReleaseTag(ctx context.Context, repo string) (string, error) {
	args := m.Called(ctx, repo)
	return args.String(0), args.Error(1)
}
func (m *mockParamsUpdater) SetReleaseTag(ctx context.Context, repo, tag string) error {
	args := m.Called(ctx, repo, tag)
	return args.Error(0)
}
