package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/albertocavalcante/go-blendlaunch/version"
)

// ErrInvalidQuery is the sentinel wrapped by every query construction error.
var ErrInvalidQuery = errors.New("invalid version query")

// InvalidQueryError reports a query token that is neither a non-negative
// integer nor one of the wildcard markers.
type InvalidQueryError struct {
	Query string
	Token string
}

func (e *InvalidQueryError) Error() string {
	if e.Query == "" || e.Query == e.Token {
		return fmt.Sprintf("%s: %q must be a number or one of \"^\", \"*\", \"-\"", ErrInvalidQuery, e.Token)
	}
	return fmt.Sprintf("%s %q: %q must be a number or one of \"^\", \"*\", \"-\"", ErrInvalidQuery, e.Query, e.Token)
}

func (e *InvalidQueryError) Unwrap() error {
	return ErrInvalidQuery
}

// SlotKind discriminates the variants of a Slot.
type SlotKind uint8

const (
	// KindExact matches one concrete segment value.
	KindExact SlotKind = iota
	// KindMax keeps the highest segment value among the survivors.
	KindMax
	// KindAny keeps every survivor.
	KindAny
	// KindMin keeps the lowest segment value among the survivors.
	KindMin
)

// Wildcard markers in the textual query form.
const (
	MarkerMax = "^"
	MarkerAny = "*"
	MarkerMin = "-"
)

// Slot is one positional element of a Query.
//
// The fields are unexported so a Slot can only be one of the four variants.
// The zero Slot is Exact(0).
type Slot struct {
	kind  SlotKind
	value uint
}

// Exact returns a slot matching segment value n.
func Exact(n uint) Slot { return Slot{kind: KindExact, value: n} }

// Max returns a slot keeping the highest segment value.
func Max() Slot { return Slot{kind: KindMax} }

// Any returns a slot keeping every segment value.
func Any() Slot { return Slot{kind: KindAny} }

// Min returns a slot keeping the lowest segment value.
func Min() Slot { return Slot{kind: KindMin} }

// Kind returns the slot variant.
func (s Slot) Kind() SlotKind { return s.kind }

// Value returns the concrete value and true for an exact slot.
func (s Slot) Value() (uint, bool) {
	return s.value, s.kind == KindExact
}

func (s Slot) String() string {
	switch s.kind {
	case KindMax:
		return MarkerMax
	case KindAny:
		return MarkerAny
	case KindMin:
		return MarkerMin
	}
	return strconv.FormatUint(uint64(s.value), 10)
}

// ParseSlot parses a single slot token.
func ParseSlot(tok string) (Slot, error) {
	switch tok {
	case MarkerMax:
		return Max(), nil
	case MarkerAny:
		return Any(), nil
	case MarkerMin:
		return Min(), nil
	}
	n, err := strconv.ParseUint(tok, 10, 0)
	if err != nil {
		return Slot{}, &InvalidQueryError{Token: tok}
	}
	return Exact(uint(n)), nil
}

// Query is a three-slot search pattern over (major, minor, patch).
//
// Query is comparable; selector rules are keyed on structural equality.
type Query struct {
	Major Slot
	Minor Slot
	Patch Slot
}

// NewQuery builds a query from three slots.
func NewQuery(major, minor, patch Slot) Query {
	return Query{Major: major, Minor: minor, Patch: patch}
}

// DefaultQuery returns "^.^.^", the newest version overall.
func DefaultQuery() Query {
	return Query{Major: Max(), Minor: Max(), Patch: Max()}
}

// ExactQuery returns the query matching v's numeric segments exactly.
func ExactQuery(v version.Version) Query {
	return Query{Major: Exact(v.Major), Minor: Exact(v.Minor), Patch: Exact(v.Patch)}
}

// Slot returns the slot for segment s.
func (q Query) Slot(s version.Segment) Slot {
	switch s {
	case version.SegmentMajor:
		return q.Major
	case version.SegmentMinor:
		return q.Minor
	case version.SegmentPatch:
		return q.Patch
	}
	panic("selection: unknown segment " + s.String())
}

// IsExact reports whether every slot is concrete.
func (q Query) IsExact() bool {
	return q.Major.kind == KindExact && q.Minor.kind == KindExact && q.Patch.kind == KindExact
}

// String renders the query in its textual form, e.g. "3.-.*".
func (q Query) String() string {
	return q.Major.String() + "." + q.Minor.String() + "." + q.Patch.String()
}

// ParseQuery parses the textual query form.
//
// One to three dot-separated slots are accepted; missing trailing slots
// default to "^", so "4.2" asks for the newest 4.2.x. Prerelease suffixes are
// not part of the grammar and are rejected.
func ParseQuery(s string) (Query, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return Query{}, &InvalidQueryError{Query: s, Token: s}
	}

	parts := strings.Split(in, ".")
	if len(parts) > 3 {
		return Query{}, &InvalidQueryError{Query: s, Token: strings.Join(parts[3:], ".")}
	}

	slots := [3]Slot{Max(), Max(), Max()}
	for i, tok := range parts {
		slot, err := ParseSlot(tok)
		if err != nil {
			return Query{}, &InvalidQueryError{Query: s, Token: tok}
		}
		slots[i] = slot
	}
	return NewQuery(slots[0], slots[1], slots[2]), nil
}

// MustParseQuery is like ParseQuery but panics on error. Use only for constants/tests.
func MustParseQuery(s string) Query {
	q, err := ParseQuery(s)
	if err != nil {
		panic(err)
	}
	return q
}

// MarshalText implements encoding.TextMarshaler.
func (q Query) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Query) UnmarshalText(b []byte) error {
	parsed, err := ParseQuery(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
