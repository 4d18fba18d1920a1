package blendlaunch

import (
	"errors"
	"log/slog"

	"github.com/albertocavalcante/go-blendlaunch/blendfile"
	"github.com/albertocavalcante/go-blendlaunch/internal/logging"
	"github.com/albertocavalcante/go-blendlaunch/selector"
)

// Option configures a Resolver.
type Option func(*resolverConfig) error

// HeaderReader returns the raw version integer stored in a file header.
type HeaderReader func(path string) (uint, error)

// resolverConfig holds all resolver configuration.
type resolverConfig struct {
	favorite     string
	selectors    *selector.Store
	headerReader HeaderReader

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// WithFavorite sets the library-relative link of the favorite build,
// launched when neither a file nor a version is requested.
func WithFavorite(link string) Option {
	return func(c *resolverConfig) error {
		c.favorite = link
		return nil
	}
}

// WithSelectors sets the store consulted when a file's exact version is not
// installed. Learn adds to the same store.
func WithSelectors(s *selector.Store) Option {
	return func(c *resolverConfig) error {
		if s == nil {
			return errors.New("selector store cannot be nil")
		}
		c.selectors = s
		return nil
	}
}

// WithHeaderReader replaces blendfile.ReadHeaderVersion.
func WithHeaderReader(fn HeaderReader) Option {
	return func(c *resolverConfig) error {
		if fn == nil {
			return errors.New("header reader cannot be nil")
		}
		c.headerReader = fn
		return nil
	}
}

// WithLogger sets a structured logger for resolution diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "resolver")
//	r, err := blendlaunch.NewResolver(idx, blendlaunch.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *resolverConfig) error {
		c.logger = l
		return nil
	}
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *resolverConfig) log() *slog.Logger {
	return logging.OrDiscard(c.logger)
}

// newResolverConfig applies opts over the defaults.
func newResolverConfig(opts ...Option) (*resolverConfig, error) {
	c := &resolverConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.selectors == nil {
		c.selectors = selector.New()
	}
	if c.headerReader == nil {
		c.headerReader = blendfile.ReadHeaderVersion
	}
	return c, nil
}
