package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// gitTagRepository is the go-git implementation of GitTagRepository.

type gitTagRepository struct {
	repo  *git.Repository
	token string
}

// NewGitTagRepository opens the clone at path. The token authenticates pushes
// and fetches; it is passed explicitly so the repository holds no process-wide
// credential state.
func NewGitTagRepository(path, token string) (GitTagRepository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, domain.NewNotFound("git", fmt.Sprintf("%s is not a git repository", path))
		}
		return nil, fmt.Errorf("failed to open git repository at %s: %w", path, err)
	}
	return &gitTagRepository{repo: repo, token: token}, nil
}

// ListTags returns the short names of all tag refs in the local clone.
func (r *gitTagRepository) ListTags(_ context.Context) ([]string, error) {
	tagRefs, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	var tags []string
	if err := tagRefs.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// TagExists checks if a tag exists in the local clone.
func (r *gitTagRepository) TagExists(_ context.Context, tag string) (bool, error) {
	_, err := r.repo.Tag(tag)
	if errors.Is(err, git.ErrTagNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tag %s: %w", tag, err)
	}
	return true, nil
}

// HeadCommit returns the SHA of the current HEAD commit.
func (r *gitTagRepository) HeadCommit(_ context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// CommitForTag resolves a tag to the commit it points at, following annotated
// tag objects.
func (r *gitTagRepository) CommitForTag(_ context.Context, tag string) (string, error) {
	ref, err := r.repo.Tag(tag)
	if errors.Is(err, git.ErrTagNotFound) {
		return "", domain.NewNotFound("git", fmt.Sprintf("tag %s not found", tag))
	}
	if err != nil {
		return "", fmt.Errorf("failed to get tag %s: %w", tag, err)
	}
	// Lightweight tags point straight at the commit
	if commit, err := r.repo.CommitObject(ref.Hash()); err == nil {
		return commit.Hash.String(), nil
	}
	tagObj, err := r.repo.TagObject(ref.Hash())
	if err != nil {
		return "", fmt.Errorf("failed to resolve tag %s: %w", tag, err)
	}
	commit, err := r.repo.CommitObject(tagObj.Target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve commit for tag %s: %w", tag, err)
	}
	return commit.Hash.String(), nil
}

// CreateTag creates an annotated tag at commit (or HEAD when commit is empty).
func (r *gitTagRepository) CreateTag(_ context.Context, tag, commit, message string) error {
	if _, err := r.repo.Tag(tag); err == nil {
		return domain.NewConflict("git", fmt.Sprintf("tag %s already exists", tag))
	}
	var hash plumbing.Hash
	if commit == "" {
		head, err := r.repo.Head()
		if err != nil {
			return fmt.Errorf("failed to get HEAD: %w", err)
		}
		hash = head.Hash()
	} else {
		resolved, err := r.repo.ResolveRevision(plumbing.Revision(commit))
		if err != nil {
			return domain.NewInvalidInput(fmt.Sprintf("unknown commit %s: %v", commit, err))
		}
		hash = *resolved
	}
	_, err := r.repo.CreateTag(tag, hash, &git.CreateTagOptions{
		Message: message,
		Tagger:  r.tagger(),
	})
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tag, err)
	}
	return nil
}

// DeleteLocalTag removes the tag from the local clone only.
func (r *gitTagRepository) DeleteLocalTag(_ context.Context, tag string) error {
	if _, err := r.repo.Tag(tag); errors.Is(err, git.ErrTagNotFound) {
		return domain.NewNotFound("git", fmt.Sprintf("tag %s not found locally", tag))
	}
	if err := r.repo.DeleteTag(tag); err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", tag, err)
	}
	return nil
}

// DeleteRemoteTag removes the tag from the configured remote only.
func (r *gitTagRepository) DeleteRemoteTag(ctx context.Context, tag string) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RefSpecs: []config.RefSpec{config.RefSpec(":refs/tags/" + tag)},
		Auth:     r.auth(),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return domain.NewNotFound("git", fmt.Sprintf("tag %s not found on remote", tag))
	}
	return r.classifyRemoteErr("delete of tag "+tag, err)
}

// PushTag pushes a single tag ref to the remote.
func (r *gitTagRepository) PushTag(ctx context.Context, tag string) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RefSpecs: []config.RefSpec{config.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag))},
		Auth:     r.auth(),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return domain.NewConflict("git", fmt.Sprintf("tag %s already exists on remote", tag))
	}
	return r.classifyRemoteErr("push of tag "+tag, err)
}

// FetchTags fetches all tag refs from the remote. A clone without a remote is
// left as-is.
func (r *gitTagRepository) FetchTags(ctx context.Context) error {
	remote, err := r.repo.Remote(git.DefaultRemoteName)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get remote: %w", err)
	}
	err = remote.FetchContext(ctx, &git.FetchOptions{
		RefSpecs: []config.RefSpec{config.RefSpec("+refs/tags/*:refs/tags/*")},
		Auth:     r.auth(),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return r.classifyRemoteErr("tag fetch", err)
}

// auth returns push/fetch credentials when a token is configured.
func (r *gitTagRepository) auth() *http.BasicAuth {
	if r.token == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: r.token,
	}
}

// tagger builds the annotated-tag signature from the clone's config, falling
// back to a tool identity.
func (r *gitTagRepository) tagger() *object.Signature {
	sig := &object.Signature{
		Name:  "releasectl",
		Email: "releasectl@localhost",
		When:  time.Now(),
	}
	if cfg, err := r.repo.Config(); err == nil && cfg.User.Name != "" {
		sig.Name = cfg.User.Name
		sig.Email = cfg.User.Email
	}
	return sig
}

// classifyRemoteErr maps transport failures onto the error taxonomy so the
// central retry policy can decide what to do with them.
func (r *gitTagRepository) classifyRemoteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return domain.NewUnauthorized("git", "credential rejected during "+op)
	}
	return domain.NewTransient("git", "remote unreachable during "+op, err)
}
