package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-blendlaunch/internal/logging"
	"github.com/albertocavalcante/go-blendlaunch/version"
)

// Index is the in-memory catalog of a library scan.
//
// It is rebuilt from scratch on every scan and never mutated afterwards;
// readers may share it freely.
type Index struct {
	// ByVersion maps each full version to its build.
	ByVersion map[version.Version]*BuildRecord
	// ByLink maps each library-relative link to its build.
	ByLink map[string]*BuildRecord
	// Failures lists builds whose metadata could not be read, in input order.
	Failures []*MetadataError
	// Conflicts lists versions claimed by more than one build, in input order.
	Conflicts []Conflict
}

// Conflict records two builds that report the same full version.
// Kept is the build that stays in ByVersion; Dropped is only reachable by link.
type Conflict struct {
	Version version.Version
	Kept    *BuildRecord
	Dropped *BuildRecord
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s: %s shadows %s", c.Version, c.Kept.Link, c.Dropped.Link)
}

// Versions returns the indexed versions in ascending order.
func (idx *Index) Versions() []version.Version {
	out := make([]version.Version, 0, len(idx.ByVersion))
	for v := range idx.ByVersion {
		out = append(out, v)
	}
	version.Sort(out)
	return out
}

// Builds returns the indexed builds ordered by version.
func (idx *Index) Builds() []*BuildRecord {
	out := make([]*BuildRecord, 0, len(idx.ByVersion))
	for _, v := range idx.Versions() {
		out = append(out, idx.ByVersion[v])
	}
	return out
}

// Len returns the number of distinct versions in the index.
func (idx *Index) Len() int {
	return len(idx.ByVersion)
}

// MetadataReader reads the metadata of one build folder.
type MetadataReader func(path string) (*BuildRecord, error)

type indexConfig struct {
	workers int
	reader  MetadataReader
	logger  *slog.Logger
}

// IndexOption configures BuildIndex.
type IndexOption func(*indexConfig) error

// WithWorkers sets how many build folders are read concurrently.
// Default is runtime.NumCPU().
func WithWorkers(n int) IndexOption {
	return func(c *indexConfig) error {
		if n <= 0 {
			return fmt.Errorf("worker count must be positive, got %d", n)
		}
		c.workers = n
		return nil
	}
}

// WithReader replaces ReadBuildInfo as the metadata reader.
func WithReader(fn MetadataReader) IndexOption {
	return func(c *indexConfig) error {
		if fn == nil {
			return errors.New("metadata reader cannot be nil")
		}
		c.reader = fn
		return nil
	}
}

// WithLogger sets the logger for per-build failures and conflicts.
// Pass nil to disable logging.
func WithLogger(logger *slog.Logger) IndexOption {
	return func(c *indexConfig) error {
		c.logger = logger
		return nil
	}
}

func newIndexConfig(opts []IndexOption) (indexConfig, error) {
	cfg := indexConfig{
		workers: runtime.NumCPU(),
		reader:  ReadBuildInfo,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return indexConfig{}, fmt.Errorf("invalid index option: %w", err)
		}
	}
	cfg.logger = logging.OrDiscard(cfg.logger)
	return cfg, nil
}

// result is the private slot of one worker.
type result struct {
	rec *BuildRecord
	err error
}

// BuildIndex reads the metadata of every path concurrently and assembles
// the Index.
//
// A build whose metadata cannot be read is logged, listed in
// Index.Failures and left out of both maps; the other builds are indexed
// normally. When two builds report the same full version the one later in
// paths wins, independent of which worker finished first, and the clash is
// listed in Index.Conflicts.
//
// If ctx is cancelled before all reads finish, BuildIndex returns ctx.Err()
// and no index.
func BuildIndex(ctx context.Context, paths []string, opts ...IndexOption) (*Index, error) {
	cfg, err := newIndexConfig(opts)
	if err != nil {
		return nil, err
	}

	results := make([]result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := cfg.reader(p)
			results[i] = result{rec: rec, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := &Index{
		ByVersion: make(map[version.Version]*BuildRecord, len(paths)),
		ByLink:    make(map[string]*BuildRecord, len(paths)),
	}
	for i, r := range results {
		if r.err != nil || r.rec == nil {
			merr := asMetadataError(paths[i], r.err)
			cfg.logger.Warn("skipping build", "path", paths[i], "error", merr.Err)
			idx.Failures = append(idx.Failures, merr)
			continue
		}

		rec := r.rec
		if prev, ok := idx.ByVersion[rec.Version]; ok && prev != rec {
			c := Conflict{Version: rec.Version, Kept: rec, Dropped: prev}
			cfg.logger.Warn("duplicate build version", "version", rec.Version.String(),
				"kept", rec.Link, "dropped", prev.Link)
			idx.Conflicts = append(idx.Conflicts, c)
		}
		idx.ByVersion[rec.Version] = rec
		idx.ByLink[rec.Link] = rec
	}

	cfg.logger.Debug("library indexed", "builds", len(idx.ByVersion),
		"failures", len(idx.Failures), "conflicts", len(idx.Conflicts))
	return idx, nil
}

func asMetadataError(path string, err error) *MetadataError {
	if err == nil {
		err = errors.New("reader returned no build")
	}
	var merr *MetadataError
	if errors.As(err, &merr) {
		return merr
	}
	return &MetadataError{Path: path, Err: err}
}

// Load scans root and indexes every recognized build in one step.
func Load(ctx context.Context, root string, categories []string, opts ...IndexOption) (*Index, error) {
	paths := Recognized(Scan(root, categories, runtime.GOOS))
	return BuildIndex(ctx, paths, opts...)
}
