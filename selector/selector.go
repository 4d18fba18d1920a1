// Package selector stores the user's fallback rules for versions the library
// cannot satisfy exactly.
//
// A rule maps a trigger query (normally the exact version a .blend file was
// saved with) to a resolution query that is matched against the library
// instead. Rules are keyed on structural equality of the trigger.
//
// In settings files rules round-trip through their textual form:
//
//	{"2.93.0": "3.^.^", "4.3.0": "4.2.*"}
package selector

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/albertocavalcante/go-blendlaunch/selection"
)

// Entry is a single selector rule.
type Entry struct {
	Trigger    selection.Query
	Resolution selection.Query
}

func (e Entry) String() string {
	return e.Trigger.String() + " -> " + e.Resolution.String()
}

// Store is a concurrency-safe set of selector rules.
type Store struct {
	mu      sync.RWMutex
	entries map[selection.Query]selection.Query
}

// New returns a Store holding entries. Later entries replace earlier ones
// with the same trigger.
func New(entries ...Entry) *Store {
	s := &Store{entries: make(map[selection.Query]selection.Query, len(entries))}
	for _, e := range entries {
		s.entries[e.Trigger] = e.Resolution
	}
	return s
}

// FromMap parses rules in their textual form. Every malformed key or value is
// reported; a map with any invalid rule yields no Store.
func FromMap(m map[string]string) (*Store, error) {
	s := New()
	var errs []error
	for _, trigger := range slices.Sorted(maps.Keys(m)) {
		tq, err := selection.ParseQuery(trigger)
		if err != nil {
			errs = append(errs, fmt.Errorf("selector trigger: %w", err))
			continue
		}
		rq, err := selection.ParseQuery(m[trigger])
		if err != nil {
			errs = append(errs, fmt.Errorf("selector for %s: %w", trigger, err))
			continue
		}
		s.entries[tq] = rq
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// ToMap renders the rules in their textual form.
func (s *Store) ToMap() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := make(map[string]string, len(s.entries))
	for t, r := range s.entries {
		m[t.String()] = r.String()
	}
	return m
}

// Lookup returns the resolution query for trigger.
func (s *Store) Lookup(trigger selection.Query) (selection.Query, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.entries[trigger]
	return r, ok
}

// Set adds or replaces a rule.
func (s *Store) Set(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[e.Trigger] = e.Resolution
}

// Remove deletes the rule for trigger and reports whether it existed.
func (s *Store) Remove(trigger selection.Query) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[trigger]; !ok {
		return false
	}
	delete(s.entries, trigger)
	return true
}

// Len returns the number of rules.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Entries returns all rules sorted by trigger text.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for t, r := range s.entries {
		out = append(out, Entry{Trigger: t, Resolution: r})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Compare(a.Trigger.String(), b.Trigger.String())
	})
	return out
}
