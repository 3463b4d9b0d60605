package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Utilities-tkgieng/releasectl/internal/config"
	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"
)

// githubReleaseRepository is the implementation of the ReleaseRepository
// interface backed by the GitHub release API.
type githubReleaseRepository struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGithubReleaseRepository creates a new ReleaseRepository with validation.
func NewGithubReleaseRepository(token, owner, repo string) (ReleaseRepository, error) {
	if err := config.ValidateGitHubToken(token); err != nil {
		return nil, fmt.Errorf("invalid GitHub token: %w", err)
	}
	if err := config.ValidateGitHubOwnerRepo(owner, repo); err != nil {
		return nil, fmt.Errorf("invalid repository configuration: %w", err)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: strings.TrimSpace(token)},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return &githubReleaseRepository{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}, nil
}

// newWithClient is used by tests to point at a fake API server.
func newWithClient(client *github.Client, owner, repo string) ReleaseRepository {
	return &githubReleaseRepository{client: client, owner: owner, repo: repo}
}

// CreateRelease creates a published release bound to tag at commit.
func (r *githubReleaseRepository) CreateRelease(
	ctx context.Context,
	tag, commit, name, body string,
) (*domain.Release, error) {
	rel, _, err := r.client.Repositories.CreateRelease(ctx, r.owner, r.repo, &github.RepositoryRelease{
		TagName:         github.Ptr(tag),
		TargetCommitish: github.Ptr(commit),
		Name:            github.Ptr(name),
		Body:            github.Ptr(body),
		Draft:           github.Ptr(false),
		Prerelease:      github.Ptr(false),
	})
	if err != nil {
		return nil, r.classify(fmt.Sprintf("create release %s", tag), err)
	}
	return toDomainRelease(rel), nil
}

// GetReleaseByTag returns the release bound to tag.
func (r *githubReleaseRepository) GetReleaseByTag(ctx context.Context, tag string) (*domain.Release, error) {
	rel, _, err := r.client.Repositories.GetReleaseByTag(ctx, r.owner, r.repo, tag)
	if err != nil {
		return nil, r.classify(fmt.Sprintf("get release %s", tag), err)
	}
	return toDomainRelease(rel), nil
}

// DeleteRelease deletes the release bound to tag. The underlying API is keyed
// by release ID, so the tag is resolved first.
func (r *githubReleaseRepository) DeleteRelease(ctx context.Context, tag string) error {
	rel, err := r.GetReleaseByTag(ctx, tag)
	if err != nil {
		return err
	}
	if _, err := r.client.Repositories.DeleteRelease(ctx, r.owner, r.repo, rel.ID); err != nil {
		return r.classify(fmt.Sprintf("delete release %s", tag), err)
	}
	return nil
}

// ListReleases returns all releases, newest first (API ordering).
func (r *githubReleaseRepository) ListReleases(ctx context.Context) ([]*domain.Release, error) {
	opts := &github.ListOptions{PerPage: 100}
	var all []*domain.Release
	for {
		page, resp, err := r.client.Repositories.ListReleases(ctx, r.owner, r.repo, opts)
		if err != nil {
			return nil, r.classify("list releases", err)
		}
		for _, rel := range page {
			all = append(all, toDomainRelease(rel))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func toDomainRelease(rel *github.RepositoryRelease) *domain.Release {
	return &domain.Release{
		ID:        rel.GetID(),
		TagName:   rel.GetTagName(),
		Name:      rel.GetName(),
		Body:      rel.GetBody(),
		CommitSHA: rel.GetTargetCommitish(),
		Draft:     rel.GetDraft(),
		CreatedAt: rel.GetCreatedAt().Time,
	}
}

// classify maps go-github errors onto the error taxonomy. Rate limits carry
// the server's retry-after hint so the retry policy can honor it.
func (r *githubReleaseRepository) classify(op string, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return domain.NewRateLimited("github", op+" rate limited", time.Until(rateErr.Rate.Reset.Time))
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return domain.NewRateLimited("github", op+" rate limited", abuseErr.GetRetryAfter())
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.NewUnauthorized("github", op+" rejected: bad or missing credential")
		case http.StatusNotFound:
			return domain.NewNotFound("github", op+": not found")
		case http.StatusUnprocessableEntity:
			return domain.NewConflict("github", op+": already exists")
		}
		if respErr.Response.StatusCode >= 500 {
			return domain.NewTransient("github", op+" failed upstream", err)
		}
		return fmt.Errorf("%s failed: %w", op, err)
	}
	return domain.NewTransient("github", op+" failed", err)
}
