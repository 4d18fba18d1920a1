// Package settings holds the persisted launcher settings.
//
// Settings are stored as JSON (comments and trailing commas allowed, so
// .jsonc files work too) or YAML, chosen by file extension. A missing file
// yields the defaults.
package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-blendlaunch/library"
	"github.com/albertocavalcante/go-blendlaunch/selector"
)

// HomeEnv overrides the launcher data directory.
const HomeEnv = "BLENDLAUNCH_PATH"

// Settings is the launcher configuration.
type Settings struct {
	// LibraryFolder is the root holding one folder per build category.
	LibraryFolder string `json:"library_folder,omitempty" yaml:"library_folder,omitempty"`
	// FavoriteBuildLink is the library-relative link of the favorite build.
	FavoriteBuildLink string `json:"favorite_build_link,omitempty" yaml:"favorite_build_link,omitempty"`
	// WorkerThreadCount bounds concurrent metadata reads while indexing.
	WorkerThreadCount int `json:"worker_thread_count,omitempty" yaml:"worker_thread_count,omitempty"`
	// BuildSelectors maps trigger queries to resolution queries, in text form.
	BuildSelectors map[string]string `json:"build_selectors" yaml:"build_selectors"`
	// Categories lists the library subfolders that are scanned.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	// LaunchArgs are extra arguments for every launched build, shell quoted.
	LaunchArgs string `json:"launch_args,omitempty" yaml:"launch_args,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	s := &Settings{}
	applyDefaults(s)
	return s
}

// applyDefaults fills in zero-value fields.
func applyDefaults(s *Settings) {
	if s.LibraryFolder == "" {
		s.LibraryFolder = filepath.Join(Home(), "library")
	}
	s.LibraryFolder = expandPath(s.LibraryFolder)
	if s.WorkerThreadCount <= 0 {
		s.WorkerThreadCount = runtime.NumCPU()
	}
	if len(s.Categories) == 0 {
		s.Categories = slices.Clone(library.DefaultCategories)
	}
	if s.BuildSelectors == nil {
		s.BuildSelectors = make(map[string]string)
	}
}

// expandPath resolves a leading ~ and $VAR references.
func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(os.ExpandEnv(p))
}

// Selectors parses BuildSelectors into a store.
func (s *Settings) Selectors() (*selector.Store, error) {
	return selector.FromMap(s.BuildSelectors)
}

// SetSelectors replaces BuildSelectors with the contents of store.
func (s *Settings) SetSelectors(store *selector.Store) {
	s.BuildSelectors = store.ToMap()
}

// Home returns the launcher data directory.
// It uses $BLENDLAUNCH_PATH if set, otherwise defaults to ~/.blendlaunch.
func Home() string {
	if v := os.Getenv(HomeEnv); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".blendlaunch")
	}
	return filepath.Join(home, ".blendlaunch")
}

// DefaultPath returns the path of the settings file.
func DefaultPath() string {
	return filepath.Join(Home(), "settings.jsonc")
}
