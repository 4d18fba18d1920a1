package blendlaunch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/albertocavalcante/go-blendlaunch/library"
	"github.com/albertocavalcante/go-blendlaunch/selection"
	"github.com/albertocavalcante/go-blendlaunch/selector"
	"github.com/albertocavalcante/go-blendlaunch/version"
)

// Resolver picks the build to launch for a Request.
//
// A Resolver is bound to one Index; rescan the library and create a new
// Resolver to see installed or removed builds. It is safe for concurrent use.
type Resolver struct {
	idx     *library.Index
	matcher *selection.Matcher
	cfg     *resolverConfig
	logger  *slog.Logger
}

// NewResolver returns a Resolver over idx.
func NewResolver(idx *library.Index, opts ...Option) (*Resolver, error) {
	if idx == nil {
		return nil, errors.New("index cannot be nil")
	}
	cfg, err := newResolverConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid resolver option: %w", err)
	}
	return &Resolver{
		idx:     idx,
		matcher: selection.NewMatcher(idx.Versions()),
		cfg:     cfg,
		logger:  cfg.log(),
	}, nil
}

// Index returns the index the Resolver was built over.
func (r *Resolver) Index() *library.Index {
	return r.idx
}

// Selectors returns the selector store, including learned rules.
func (r *Resolver) Selectors() *selector.Store {
	return r.cfg.selectors
}

// Resolve decides what to do for req.
//
// Which inputs are present selects the policy:
//
//	neither          launch the favorite build
//	version only     match the query against the library
//	file only        match the version in the file header exactly,
//	                 falling back to a selector for that version
//	file and version as file only; the version is ignored with a warning
//
// The returned error is non-nil only for malformed input: an invalid
// version query or an unreadable file header. Everything else, including
// "nothing matches", is an Outcome.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case req.File == "" && req.Version == "":
		return r.resolveFavorite(), nil
	case req.File == "":
		return r.resolveVersion(req.Version)
	}

	if req.Version != "" {
		r.logger.Warn("both file and version given; using the file's version",
			"file", req.File, "version", req.Version)
	}
	return r.resolveFile(req.File)
}

func (r *Resolver) resolveFavorite() Outcome {
	link := r.cfg.favorite
	if link == "" {
		return Failure{Reason: ErrNoFavorite}
	}
	build, ok := r.idx.ByLink[link]
	if !ok {
		r.logger.Warn("favorite build is not installed", "link", link)
		return Failure{Reason: fmt.Errorf("%w: %s is not installed", ErrNoFavorite, link)}
	}
	r.logger.Debug("launching favorite", "link", link, "version", build.Version.String())
	return Launch{Build: build}
}

func (r *Resolver) resolveVersion(s string) (Outcome, error) {
	q, err := selection.ParseQuery(s)
	if err != nil {
		return nil, err
	}
	matches := r.matcher.Match(q)
	r.logger.Debug("matched version query", "query", q.String(), "matches", len(matches))

	if len(matches) == 1 {
		return Launch{Build: r.idx.ByVersion[matches[0]]}, nil
	}
	return r.escalate(q, nil, matches, ""), nil
}

func (r *Resolver) resolveFile(file string) (Outcome, error) {
	raw, err := r.cfg.headerReader(file)
	if err != nil {
		return nil, err
	}
	v := version.Decode(raw)
	q := selection.ExactQuery(v)
	r.logger.Debug("read file version", "file", file, "raw", raw, "version", v.String())

	matches := r.matcher.Match(q)
	switch {
	case len(matches) == 1:
		return Launch{Build: r.idx.ByVersion[matches[0]], File: file}, nil
	case len(matches) > 1:
		return r.escalate(q, nil, matches, file), nil
	}

	res, ok := r.cfg.selectors.Lookup(q)
	if !ok {
		r.logger.Info("no build for file version", "version", v.String())
		return r.escalate(q, nil, nil, file), nil
	}

	matches = r.matcher.Match(res)
	r.logger.Debug("applied selector", "trigger", q.String(), "resolution", res.String(), "matches", len(matches))
	if len(matches) == 1 {
		return Launch{Build: r.idx.ByVersion[matches[0]], File: file}, nil
	}
	return r.escalate(q, &res, matches, file), nil
}

func (r *Resolver) escalate(q selection.Query, sel *selection.Query, matches []version.Version, file string) Escalate {
	candidates := matches
	if len(matches) <= 1 {
		candidates = r.matcher.Versions()
	}
	return Escalate{
		Query:      q,
		Selector:   sel,
		Candidates: slices.Clone(candidates),
		Matches:    slices.Clone(matches),
		File:       file,
	}
}

// Learn stores a selector rule, usually the user's answer to an Escalate.
// It replaces any rule with the same trigger.
func (r *Resolver) Learn(e selector.Entry) {
	r.cfg.selectors.Set(e)
	r.logger.Info("learned selector", "rule", e.String())
}

// Pick settles esc with a version the user chose from its candidates.
func (r *Resolver) Pick(esc Escalate, v version.Version) (Launch, error) {
	if !slices.Contains(esc.Candidates, v) {
		return Launch{}, fmt.Errorf("%w: %s is not a candidate", ErrNoMatch, v)
	}
	build, ok := r.idx.ByVersion[v]
	if !ok {
		return Launch{}, fmt.Errorf("%w: %s is not installed", ErrNoMatch, v)
	}
	return Launch{Build: build, File: esc.File}, nil
}
