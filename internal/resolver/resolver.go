package resolver

import (
	"fmt"
	"sort"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
)

// TagSet is the parsed, semver-ordered view of a repository's tag list.
// Malformed tags are kept aside for reporting, never silently coerced.
type TagSet struct {
	versions  []*domain.Version
	malformed []string
}

// Parse orders tags by semver precedence, ascending. Tags that do not match
// the semver grammar land in Malformed.
func Parse(tags []string) *TagSet {
	s := &TagSet{}
	for _, t := range tags {
		v, err := domain.NewVersion(t)
		if err != nil {
			s.malformed = append(s.malformed, t)
			continue
		}
		s.versions = append(s.versions, v)
	}
	sort.Slice(s.versions, func(i, j int) bool {
		return s.versions[i].Compare(s.versions[j]) < 0
	})
	return s
}

// Versions returns the parsed tags in ascending precedence order.
func (s *TagSet) Versions() []*domain.Version {
	return s.versions
}

// Malformed returns the tags excluded from ordering.
func (s *TagSet) Malformed() []string {
	return s.malformed
}

// Latest returns the highest-precedence tag, or nil if the set is empty.
func (s *TagSet) Latest() *domain.Version {
	if len(s.versions) == 0 {
		return nil
	}
	return s.versions[len(s.versions)-1]
}

// Predecessor returns the highest-precedence tag strictly less than tag.
func (s *TagSet) Predecessor(tag string) (*domain.Version, error) {
	target, err := domain.NewVersion(tag)
	if err != nil {
		return nil, err
	}
	var pred *domain.Version
	found := false
	for _, v := range s.versions {
		switch {
		case v.Compare(target) < 0:
			pred = v
		case v.Compare(target) == 0:
			found = true
		}
	}
	if !found {
		return nil, domain.NewInvalidInput(fmt.Sprintf("no predecessor: tag %s not present", tag))
	}
	if pred == nil {
		return nil, domain.NewInvalidInput(fmt.Sprintf("no predecessor: %s is the first release", tag))
	}
	return pred, nil
}

// Next computes the next unused tag by bumping the latest one. An empty set
// bumps from v0.0.0.
func (s *TagSet) Next(kind domain.BumpKind) (*domain.Version, error) {
	latest := s.Latest()
	if latest == nil {
		base, err := domain.NewVersion("v0.0.0")
		if err != nil {
			return nil, err
		}
		latest = base
	}
	return latest.Bump(kind), nil
}

// Contains reports whether tag is present in the ordered set.
func (s *TagSet) Contains(tag string) bool {
	target, err := domain.NewVersion(tag)
	if err != nil {
		return false
	}
	for _, v := range s.versions {
		if v.Compare(target) == 0 {
			return true
		}
	}
	return false
}
