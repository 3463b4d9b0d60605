package domain

import "time"

// Release is a registry release object bound to a git tag. A Release cannot
// exist without its tag, but a tag may exist without a Release.

type Release struct {
	ID        int64
	TagName   string
	Name      string
	Body      string
	CommitSHA string
	Draft     bool
	CreatedAt time.Time
}
