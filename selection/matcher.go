package selection

import (
	"slices"
	"strings"
	"sync"

	"github.com/albertocavalcante/go-blendlaunch/version"
)

// Matcher resolves queries against a fixed snapshot of versions.
//
// A Matcher is safe for concurrent use.
type Matcher struct {
	versions []version.Version

	mu      sync.Mutex
	extrema map[extremumKey]uint
}

// extremumKey identifies one memoized max/min computation. The candidate
// tuple is captured as an immutable fingerprint so a cached value can never
// outlive the exact set it was computed from.
type extremumKey struct {
	tuple   string
	segment version.Segment
	kind    SlotKind
}

// NewMatcher snapshots versions. The input slice is copied, deduplicated and
// sorted; later changes to it do not affect the Matcher.
func NewMatcher(versions []version.Version) *Matcher {
	vs := slices.Clone(versions)
	version.Sort(vs)
	vs = slices.Compact(vs)
	return &Matcher{
		versions: vs,
		extrema:  make(map[extremumKey]uint),
	}
}

// Match returns the candidates selected by q.
//
// Segments are processed left to right (major, minor, patch). Each slot is
// evaluated against the versions that survived the previous segments, not
// against the full snapshot:
//
//   - Exact(n) keeps versions whose segment equals n
//   - Any keeps all survivors
//   - Max/Min keep versions whose segment equals the highest/lowest value
//     present among the survivors
//
// As soon as exactly one version survives it is returned and the remaining
// segments are not evaluated. Otherwise the survivors after the patch segment
// are returned: possibly empty, possibly several versions (an Any slot keeps
// every value, and prereleases share their numbers). Ties are never broken
// here.
func (m *Matcher) Match(q Query) []version.Version {
	remaining := m.versions
	for _, seg := range version.Segments {
		slot := q.Slot(seg)
		switch slot.kind {
		case KindAny:
		case KindExact:
			remaining = keepSegment(remaining, seg, slot.value)
		case KindMax, KindMin:
			if len(remaining) > 0 {
				remaining = keepSegment(remaining, seg, m.extremum(remaining, seg, slot.kind))
			}
		}

		if len(remaining) == 1 {
			return slices.Clone(remaining)
		}
	}
	return slices.Clone(remaining)
}

// Versions returns a copy of the snapshot in ascending order.
func (m *Matcher) Versions() []version.Version {
	return slices.Clone(m.versions)
}

// Len returns the number of versions in the snapshot.
func (m *Matcher) Len() int {
	return len(m.versions)
}

// extremum returns the max (KindMax) or min (KindMin) value of seg in vs.
// vs must not be empty.
func (m *Matcher) extremum(vs []version.Version, seg version.Segment, kind SlotKind) uint {
	key := extremumKey{tuple: fingerprint(vs), segment: seg, kind: kind}

	m.mu.Lock()
	if v, ok := m.extrema[key]; ok {
		m.mu.Unlock()
		return v
	}
	m.mu.Unlock()

	v := computeExtremum(vs, seg, kind)

	m.mu.Lock()
	m.extrema[key] = v
	m.mu.Unlock()
	return v
}

func computeExtremum(vs []version.Version, seg version.Segment, kind SlotKind) uint {
	best := vs[0].Get(seg)
	for _, v := range vs[1:] {
		x := v.Get(seg)
		if (kind == KindMax && x > best) || (kind == KindMin && x < best) {
			best = x
		}
	}
	return best
}

func keepSegment(vs []version.Version, seg version.Segment, want uint) []version.Version {
	out := make([]version.Version, 0, len(vs))
	for _, v := range vs {
		if v.Get(seg) == want {
			out = append(out, v)
		}
	}
	return out
}

// fingerprint renders an ordered candidate tuple as a string key.
func fingerprint(vs []version.Version) string {
	var sb strings.Builder
	for i, v := range vs {
		if i > 0 {
			sb.WriteByte(0)
		}
		sb.WriteString(v.String())
	}
	return sb.String()
}

// Match is a convenience wrapper for a one-off match without memoization reuse.
func Match(q Query, versions []version.Version) []version.Version {
	return NewMatcher(versions).Match(q)
}
