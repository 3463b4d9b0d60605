package repository

import "context"

// GitTagRepository defines the interface for tag operations against a local
// clone of a source repository.

type GitTagRepository interface {
	ListTags(ctx context.Context) ([]string, error)
	TagExists(ctx context.Context, tag string) (bool, error)
	HeadCommit(ctx context.Context) (string, error)
	CommitForTag(ctx context.Context, tag string) (string, error)
	CreateTag(ctx context.Context, tag, commit, message string) error
	DeleteLocalTag(ctx context.Context, tag string) error
	DeleteRemoteTag(ctx context.Context, tag string) error
	PushTag(ctx context.Context, tag string) error
	FetchTags(ctx context.Context) error
}
