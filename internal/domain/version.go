package domain

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// BumpKind selects which component of a version to increment.
type BumpKind string

const (
	BumpMajor BumpKind = "major"
	BumpMinor BumpKind = "minor"
	BumpPatch BumpKind = "patch"
)

// ParseBumpKind converts a flag value into a BumpKind. Empty defaults to patch.
func ParseBumpKind(s string) (BumpKind, error) {
	switch BumpKind(s) {
	case "":
		return BumpPatch, nil
	case BumpMajor, BumpMinor, BumpPatch:
		return BumpKind(s), nil
	}
	return "", NewInvalidInput(fmt.Sprintf("invalid bump kind %q (expected major, minor or patch)", s))
}

// Version wraps semver.Version for additional methods.
type Version struct {
	*semver.Version
}

// NewVersion creates a new Version from a string.
func NewVersion(s string) (*Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, NewInvalidInput(fmt.Sprintf("malformed tag %q: %v", s, err))
	}
	return &Version{v}, nil
}

// BumpMajor increments the major version.
func (v *Version) BumpMajor() *Version {
	newVer := v.IncMajor()
	return &Version{&newVer}
}

// BumpMinor increments the minor version.
func (v *Version) BumpMinor() *Version {
	newVer := v.IncMinor()
	return &Version{&newVer}
}

// BumpPatch increments the patch version.
func (v *Version) BumpPatch() *Version {
	newVer := v.IncPatch()
	return &Version{&newVer}
}

// Bump increments the component named by kind.
func (v *Version) Bump(kind BumpKind) *Version {
	switch kind {
	case BumpMajor:
		return v.BumpMajor()
	case BumpMinor:
		return v.BumpMinor()
	default:
		return v.BumpPatch()
	}
}

// Compare compares two versions using semver precedence.
func (v *Version) Compare(other *Version) int {
	return v.Version.Compare(other.Version)
}

// String returns the version string with v prefix.
func (v *Version) String() string {
	return "v" + v.Version.String()
}
