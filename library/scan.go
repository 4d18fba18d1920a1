package library

import (
	"iter"
	"os"
	"path"
	"path/filepath"

	"github.com/albertocavalcante/go-blendlaunch/internal/platform"
)

// InfoFile is the per-build metadata file written by the launcher.
const InfoFile = ".blinfo"

// DefaultCategories are the library subfolders builds are installed into.
var DefaultCategories = []string{"stable", "daily", "experimental", "custom"}

// Entry is one subdirectory found by Scan.
type Entry struct {
	// Category is the library subfolder the build lives in.
	Category string
	// Name is the build folder name.
	Name string
	// Path is the absolute (root-joined) build folder path.
	Path string
	// Link is the library-relative slash path, e.g. "stable/blender-4.2.0".
	Link string
	// Recognized is true when the folder holds build metadata or an executable.
	Recognized bool
}

// Scan walks the category folders under root and yields every immediate
// subdirectory of each one that exists.
//
// A folder is recognized when it contains InfoFile or the executable for
// goos (see platform.Executable); anything else (a half-extracted archive, a
// stray folder) is yielded with Recognized set to false. Category folders
// that are missing or are not directories are skipped.
//
// The sequence is lazy: the filesystem is read while iterating, and every
// range over the returned sequence scans again. Callers that need a stable
// snapshot must collect it.
func Scan(root string, categories []string, goos string) iter.Seq[Entry] {
	exe := platform.Executable(goos)
	return func(yield func(Entry) bool) {
		for _, category := range categories {
			dir := filepath.Join(root, category)
			if !isDir(dir) {
				continue
			}
			children, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, child := range children {
				p := filepath.Join(dir, child.Name())
				if !isDir(p) {
					continue
				}
				e := Entry{
					Category:   category,
					Name:       child.Name(),
					Path:       p,
					Link:       path.Join(filepath.ToSlash(category), child.Name()),
					Recognized: isFile(filepath.Join(p, InfoFile)) || isFile(filepath.Join(p, exe)),
				}
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Recognized filters seq down to the paths of recognized builds.
func Recognized(seq iter.Seq[Entry]) []string {
	var paths []string
	for e := range seq {
		if e.Recognized {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// Unrecognized filters seq down to the entries that are not builds.
func Unrecognized(seq iter.Seq[Entry]) []Entry {
	var out []Entry
	for e := range seq {
		if !e.Recognized {
			out = append(out, e)
		}
	}
	return out
}

// isDir follows symlinks, so a linked build folder is scanned like a real one.
func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
