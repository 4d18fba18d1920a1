package blendlaunch

import (
	"github.com/albertocavalcante/go-blendlaunch/library"
	"github.com/albertocavalcante/go-blendlaunch/selection"
	"github.com/albertocavalcante/go-blendlaunch/version"
)

// Request is a single launch invocation.
type Request struct {
	// File is a .blend file to open. Its header decides the version.
	File string
	// Version is a query string such as "4.2.^" or "3.-.*".
	Version string
}

// Outcome is the result of Resolve: exactly one of Launch, Failure or Escalate.
type Outcome interface {
	isOutcome()
}

// Launch names the single build to run.
type Launch struct {
	Build *library.BuildRecord
	// File is passed to the build; empty when none was requested.
	File string
}

// Failure is a terminal outcome with no candidate to offer.
type Failure struct {
	Reason error
}

// Escalate asks the user to settle a query the library could not satisfy
// with exactly one build.
type Escalate struct {
	// Query is the unresolved query.
	Query selection.Query
	// Selector is the resolution that was tried for Query, if any.
	Selector *selection.Query
	// Candidates are the versions worth offering: the tied builds when the
	// match was ambiguous, otherwise every installed version.
	Candidates []version.Version
	// Matches is what the last match returned: empty, or the tie set.
	Matches []version.Version
	// File is carried over from the request.
	File string
}

// Err returns ErrAmbiguousMatch for a tie and ErrNoMatch otherwise.
func (e Escalate) Err() error {
	if len(e.Matches) > 1 {
		return ErrAmbiguousMatch
	}
	return ErrNoMatch
}

func (Launch) isOutcome()   {}
func (Failure) isOutcome()  {}
func (Escalate) isOutcome() {}

var (
	_ Outcome = Launch{}
	_ Outcome = Failure{}
	_ Outcome = Escalate{}
)
