// Package blendlaunch picks which installed Blender build to run.
//
// A launch request names a .blend file, a version query, both or neither.
// The library of installed builds is scanned and indexed, and a Resolver
// turns the request into exactly one of three outcomes: Launch a single
// build, Failure with a reason, or Escalate to the user when no single
// build qualifies. A Resolver never picks among several equally good builds
// on its own.
//
// # Quick Start
//
//	s, err := settings.Load(settings.DefaultPath())
//	r, err := blendlaunch.Load(ctx, s)
//	out, err := r.Resolve(ctx, blendlaunch.Request{File: "scene.blend"})
//	switch out := out.(type) {
//	case blendlaunch.Launch:
//	    // run out.Build
//	case blendlaunch.Escalate:
//	    // ask the user, then r.Learn(...) or r.Pick(out, v)
//	case blendlaunch.Failure:
//	    // report out.Reason
//	}
//
// # Version Queries
//
// A query has one slot per version segment. A slot is a number, "^" (the
// highest value present), "*" (any value) or "-" (the lowest value present).
// Slots are evaluated left to right against the builds that survived the
// previous slot, so "3.-.*" means "the oldest 3.x minor, any patch". See
// package selection.
//
// # Selectors
//
// When a file was saved by a version that is not installed, the Resolver
// consults a selector: a persisted rule mapping that exact version to
// another query ("2.93.0" -> "3.^.^"). See package selector.
//
// # Thread Safety
//
// Resolver, Index and the selector store are safe for concurrent use.
package blendlaunch

import (
	"context"
	"fmt"

	"github.com/albertocavalcante/go-blendlaunch/library"
	"github.com/albertocavalcante/go-blendlaunch/settings"
)

// Load indexes the library described by s and returns a Resolver for it.
//
// The favorite build and selectors come from s; opts are applied after
// them and may override either.
func Load(ctx context.Context, s *settings.Settings, opts ...Option) (*Resolver, error) {
	cfg, err := newResolverConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid resolver option: %w", err)
	}

	indexOpts := []library.IndexOption{library.WithLogger(cfg.log())}
	if s.WorkerThreadCount > 0 {
		indexOpts = append(indexOpts, library.WithWorkers(s.WorkerThreadCount))
	}
	idx, err := library.Load(ctx, s.LibraryFolder, s.Categories, indexOpts...)
	if err != nil {
		return nil, fmt.Errorf("index library %s: %w", s.LibraryFolder, err)
	}

	store, err := s.Selectors()
	if err != nil {
		return nil, fmt.Errorf("load selectors: %w", err)
	}

	base := []Option{WithFavorite(s.FavoriteBuildLink), WithSelectors(store)}
	return NewResolver(idx, append(base, opts...)...)
}
