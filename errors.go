package blendlaunch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-blendlaunch/version"
)

// Sentinel errors carried by resolution outcomes.
var (
	// ErrNoFavorite indicates no file or version was given and the favorite
	// build is unset or no longer installed.
	ErrNoFavorite = errors.New("no favorite build")

	// ErrNoMatch indicates no installed build satisfies the query.
	ErrNoMatch = errors.New("no matching build")

	// ErrAmbiguousMatch indicates more than one installed build satisfies the
	// query and none may be chosen silently.
	ErrAmbiguousMatch = errors.New("ambiguous build match")
)

// EscalationError wraps an Escalate outcome that could not be settled.
type EscalationError struct {
	Escalate Escalate
}

func (e *EscalationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot choose a build for %s", e.Escalate.Query)
	if e.Escalate.Selector != nil {
		fmt.Fprintf(&b, " (selector %s)", *e.Escalate.Selector)
	}
	b.WriteString(": ")
	b.WriteString(e.Escalate.Err().Error())
	if len(e.Escalate.Candidates) > 0 {
		b.WriteString("; candidates: ")
		b.WriteString(joinVersions(e.Escalate.Candidates))
	}
	return b.String()
}

func (e *EscalationError) Unwrap() error {
	return e.Escalate.Err()
}

func joinVersions(vs []version.Version) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
