// Package version implements the build version value used across the launcher.
//
// A Version is a (major, minor, patch) triple with an optional prerelease tag.
// The prerelease tag is part of a build's identity (4.2.0 and 4.2.0-alpha are
// different builds) but never takes part in query matching, which looks at one
// numeric segment at a time.
//
// Version format: MAJOR[.MINOR[.PATCH]][-PRERELEASE][+BUILD]
//   - missing MINOR/PATCH default to 0
//   - BUILD metadata is discarded
//   - Blender's own "4.2.0 Alpha" spelling is accepted
package version

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version identifies a single build.
//
// Version is comparable and is used directly as a map key, so two values are
// equal only when all four fields are equal.
type Version struct {
	Major      uint
	Minor      uint
	Patch      uint
	Prerelease string
}

// New returns a release Version.
func New(major, minor, patch uint) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// WithPrerelease returns a copy of v with the prerelease tag replaced.
func (v Version) WithPrerelease(pre string) Version {
	v.Prerelease = pre
	return v
}

// Release returns v without its prerelease tag.
func (v Version) Release() Version {
	v.Prerelease = ""
	return v
}

// IsPrerelease reports whether v carries a prerelease tag.
func (v Version) IsPrerelease() bool {
	return v.Prerelease != ""
}

// String renders v as MAJOR.MINOR.PATCH[-PRERELEASE].
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

// Segment names the three numeric components of a Version.
type Segment int

const (
	SegmentMajor Segment = iota
	SegmentMinor
	SegmentPatch
)

// Segments lists the numeric segments in matching order.
var Segments = [...]Segment{SegmentMajor, SegmentMinor, SegmentPatch}

func (s Segment) String() string {
	switch s {
	case SegmentMajor:
		return "major"
	case SegmentMinor:
		return "minor"
	case SegmentPatch:
		return "patch"
	}
	return fmt.Sprintf("Segment(%d)", int(s))
}

// Get returns the value of segment s.
func (v Version) Get(s Segment) uint {
	switch s {
	case SegmentMajor:
		return v.Major
	case SegmentMinor:
		return v.Minor
	case SegmentPatch:
		return v.Patch
	}
	panic("version: unknown segment " + s.String())
}

// Compare orders two versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
//
// Order:
//  1. Numeric segments, major first
//  2. Prerelease versions sort BEFORE the release with the same numbers
//  3. Prerelease tags compare lexicographically
func Compare(a, b Version) int {
	if c := cmp.Compare(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Patch, b.Patch); c != 0 {
		return c
	}

	aIsPre := a.Prerelease != ""
	bIsPre := b.Prerelease != ""
	if aIsPre != bIsPre {
		if aIsPre {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Prerelease, b.Prerelease)
}

// Sort sorts versions in ascending order.
func Sort(versions []Version) {
	slices.SortFunc(versions, Compare)
}

// ParseError represents a version parsing error.
type ParseError struct {
	Version string
	Err     error
}

func (e *ParseError) Error() string {
	return "bad version " + e.Version + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses a version string.
//
// Besides semver-like input it accepts Blender's banner spelling where the
// release cycle follows the numbers after a space ("4.2.0 Alpha" parses as
// 4.2.0-alpha).
func Parse(s string) (Version, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return Version{}, &ParseError{Version: s, Err: fmt.Errorf("empty version")}
	}

	if release, cycle, ok := strings.Cut(in, " "); ok {
		cycle = strings.ToLower(strings.Join(strings.Fields(cycle), "-"))
		in = release
		if cycle != "" && !strings.Contains(release, "-") {
			in = release + "-" + cycle
		}
	}

	sv, err := semver.NewVersion(in)
	if err != nil {
		return Version{}, &ParseError{Version: s, Err: err}
	}

	return Version{
		Major:      uint(sv.Major()),
		Minor:      uint(sv.Minor()),
		Patch:      uint(sv.Patch()),
		Prerelease: sv.Prerelease(),
	}, nil
}

// MustParse is like Parse but panics on error. Use only for constants/tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}
