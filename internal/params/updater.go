package params

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultParamsFile is the structured file holding one release tag per
	// managed repository.
	DefaultParamsFile = "release-tags.yml"
	// LockTimeout is the maximum time to wait for the working-tree lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval is the interval between lock attempts
	LockRetryInterval = 100 * time.Millisecond
	// FilePermissions is the mode for the rewritten params file
	FilePermissions = 0644
)

// Updater mutates a single repository's release-tag key in the params repo.
// All other keys in the shared file are left byte-for-byte intact.

type Updater interface {
	GetReleaseTag(ctx context.Context, repo string) (string, error)
	SetReleaseTag(ctx context.Context, repo, tag string) error
}

// KeyFor derives the params key for a managed repository.
func KeyFor(repo string) string {
	return repo + "-release"
}

// gitParamsUpdater implements Updater against a local clone of the params
// repository.
type gitParamsUpdater struct {
	fs    afero.Fs
	path  string
	file  string
	token string
	log   *zap.Logger
}

// NewUpdater creates an Updater for the params clone at path. The file name
// is relative to the clone root.
func NewUpdater(fs afero.Fs, path, file, token string, log *zap.Logger) Updater {
	if file == "" {
		file = DefaultParamsFile
	}
	return &gitParamsUpdater{
		fs:    fs,
		path:  path,
		file:  file,
		token: token,
		log:   log,
	}
}

// GetReleaseTag reads the current value for repo without mutating state.
func (u *gitParamsUpdater) GetReleaseTag(_ context.Context, repo string) (string, error) {
	data, err := afero.ReadFile(u.fs, filepath.Join(u.path, u.file))
	if err != nil {
		return "", domain.NewNotFound("params", fmt.Sprintf("failed to read %s: %v", u.file, err))
	}
	var entries map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", u.file, err)
	}
	tag, ok := entries[KeyFor(repo)]
	if !ok {
		return "", domain.NewNotFound("params", fmt.Sprintf("no release tag recorded for %s", repo))
	}
	return tag, nil
}

// SetReleaseTag points repo's key at tag: fetch+pull latest, patch the one
// key, commit and push. The acquisition is released and the tree restored to
// a clean state on every exit path. A push rejected because the remote moved
// is retried once against the fresh content, then fails with a conflict.
func (u *gitParamsUpdater) SetReleaseTag(ctx context.Context, repo, tag string) (err error) {
	gitRepo, err := git.PlainOpen(u.path)
	if err != nil {
		return domain.NewNotFound("params", fmt.Sprintf("%s is not a git repository", u.path))
	}
	lock := flock.New(filepath.Join(u.path, ".git", "releasectl-params.lock"))
	if lockErr := u.acquireLock(ctx, lock); lockErr != nil {
		return fmt.Errorf("failed to acquire params lock: %w", lockErr)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			u.log.Warn("failed to release params lock", zap.Error(unlockErr))
		}
	}()
	wt, err := gitRepo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get params worktree: %w", err)
	}
	if dirty, dirtyErr := u.fileIsDirty(wt); dirtyErr != nil {
		return dirtyErr
	} else if dirty {
		return domain.NewConflict("params", fmt.Sprintf("%s has uncommitted changes, commit or stash them first", u.file))
	}

	if err := u.pull(ctx, wt); err != nil {
		return err
	}
	head, err := gitRepo.Head()
	if err != nil {
		return fmt.Errorf("failed to get params HEAD: %w", err)
	}
	baseline := head.Hash()
	// Any failure past this point must leave the tree as it was pulled.
	defer func() {
		if err != nil {
			if resetErr := u.resetTo(wt, baseline); resetErr != nil {
				u.log.Warn("failed to restore params worktree", zap.Error(resetErr))
			}
		}
	}()

	changed, err := u.patchAndCommit(gitRepo, wt, repo, tag)
	if err != nil {
		return err
	}
	if !changed {
		u.log.Info("params already point at tag, nothing to do",
			zap.String("repo", repo), zap.String("tag", tag))
		return nil
	}

	pushErr := u.push(ctx, gitRepo)
	if pushErr == nil {
		return nil
	}
	if !isRejectedPush(pushErr) {
		return pushErr
	}
	// Remote advanced underneath us: rebase onto the fresh content and retry
	// the single-field patch once.
	u.log.Info("params push rejected, retrying against fresh remote content")
	if err := u.rebaseOntoRemote(ctx, gitRepo, wt); err != nil {
		return err
	}
	if _, err := u.patchAndCommit(gitRepo, wt, repo, tag); err != nil {
		return err
	}
	if retryErr := u.push(ctx, gitRepo); retryErr != nil {
		if isRejectedPush(retryErr) {
			return domain.NewConflict("params", "push rejected twice, params repo is moving too fast")
		}
		return retryErr
	}
	return nil
}

// patchAndCommit rewrites the single key and commits. Returns false when the
// file already points at tag.
func (u *gitParamsUpdater) patchAndCommit(gitRepo *git.Repository, wt *git.Worktree, repo, tag string) (bool, error) {
	full := filepath.Join(u.path, u.file)
	data, err := afero.ReadFile(u.fs, full)
	if err != nil {
		return false, domain.NewNotFound("params", fmt.Sprintf("failed to read %s: %v", u.file, err))
	}
	patched, old, err := patchDocument(data, KeyFor(repo), tag)
	if err != nil {
		return false, fmt.Errorf("failed to patch %s: %w", u.file, err)
	}
	if old == tag {
		return false, nil
	}
	if err := u.writeAtomic(full, patched); err != nil {
		return false, err
	}
	if _, err := wt.Add(u.file); err != nil {
		return false, fmt.Errorf("failed to stage %s: %w", u.file, err)
	}
	message := fmt.Sprintf("Update %s release tag to %s", repo, tag)
	if _, err := wt.Commit(message, &git.CommitOptions{Author: u.author(gitRepo)}); err != nil {
		return false, fmt.Errorf("failed to commit params change: %w", err)
	}
	u.log.Info("params updated",
		zap.String("repo", repo),
		zap.String("from", old),
		zap.String("to", tag))
	return true, nil
}

// patchDocument replaces (or appends) key's scalar value in the YAML
// document, preserving every other node, key order and comments.
func patchDocument(data []byte, key, value string) ([]byte, string, error) {
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	} else if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, "", err
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, "", fmt.Errorf("params file is not a key-value document")
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		old := mapping.Content[i+1].Value
		mapping.Content[i+1].Value = value
		mapping.Content[i+1].Tag = "!!str"
		out, err := yaml.Marshal(&doc)
		return out, old, err
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
	out, err := yaml.Marshal(&doc)
	return out, "", err
}

// writeAtomic writes via a temp file and rename so a crash never leaves a
// half-written params file.
func (u *gitParamsUpdater) writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(u.fs, tmp, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write temp params file: %w", err)
	}
	if err := u.fs.Rename(tmp, path); err != nil {
		if removeErr := u.fs.Remove(tmp); removeErr != nil {
			u.log.Warn("failed to remove temp params file", zap.Error(removeErr))
		}
		return fmt.Errorf("failed to replace params file: %w", err)
	}
	return nil
}

func (u *gitParamsUpdater) fileIsDirty(wt *git.Worktree) (bool, error) {
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get params status: %w", err)
	}
	fileStatus := status.File(u.file)
	return fileStatus.Worktree != git.Unmodified || fileStatus.Staging != git.Unmodified, nil
}

func (u *gitParamsUpdater) pull(ctx context.Context, wt *git.Worktree) error {
	err := wt.PullContext(ctx, &git.PullOptions{
		RemoteName: git.DefaultRemoteName,
		Auth:       u.auth(),
	})
	if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) || errors.Is(err, git.ErrRemoteNotFound) {
		return nil
	}
	return u.classifyRemoteErr("params pull", err)
}

func (u *gitParamsUpdater) push(ctx context.Context, gitRepo *git.Repository) error {
	err := gitRepo.PushContext(ctx, &git.PushOptions{Auth: u.auth()})
	if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if isRejectedPush(err) {
		return err
	}
	return u.classifyRemoteErr("params push", err)
}

// rebaseOntoRemote discards the local commit and fast-forwards to the remote
// head so the patch can be reapplied to fresh content.
func (u *gitParamsUpdater) rebaseOntoRemote(ctx context.Context, gitRepo *git.Repository, wt *git.Worktree) error {
	if err := gitRepo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		Auth:       u.auth(),
	}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return u.classifyRemoteErr("params fetch", err)
	}
	head, err := gitRepo.Head()
	if err != nil {
		return fmt.Errorf("failed to get params HEAD: %w", err)
	}
	branch := head.Name().Short()
	remoteRef, err := gitRepo.Reference(
		plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch), true)
	if err != nil {
		return fmt.Errorf("failed to resolve remote head for %s: %w", branch, err)
	}
	return u.resetTo(wt, remoteRef.Hash())
}

func (u *gitParamsUpdater) resetTo(wt *git.Worktree, hash plumbing.Hash) error {
	return wt.Reset(&git.ResetOptions{Commit: hash, Mode: git.HardReset})
}

func (u *gitParamsUpdater) acquireLock(ctx context.Context, lock *flock.Flock) error {
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	ticker := time.NewTicker(LockRetryInterval)
	defer ticker.Stop()
	for {
		locked, err := lock.TryLock()
		if err != nil {
			return err
		}
		if locked {
			return nil
		}
		select {
		case <-lockCtx.Done():
			return lockCtx.Err()
		case <-ticker.C:
		}
	}
}

func (u *gitParamsUpdater) author(gitRepo *git.Repository) *object.Signature {
	sig := &object.Signature{
		Name:  "releasectl",
		Email: "releasectl@localhost",
		When:  time.Now(),
	}
	if cfg, err := gitRepo.Config(); err == nil && cfg.User.Name != "" {
		sig.Name = cfg.User.Name
		sig.Email = cfg.User.Email
	}
	return sig
}

func (u *gitParamsUpdater) auth() *http.BasicAuth {
	if u.token == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: u.token,
	}
}

func (u *gitParamsUpdater) classifyRemoteErr(op string, err error) error {
	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return domain.NewUnauthorized("params", "credential rejected during "+op)
	}
	return domain.NewTransient("params", "remote unreachable during "+op, err)
}

func isRejectedPush(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, git.ErrNonFastForwardUpdate) ||
		strings.Contains(err.Error(), "non-fast-forward") ||
		strings.Contains(err.Error(), "fetch first")
}
