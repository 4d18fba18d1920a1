package library

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/albertocavalcante/go-blendlaunch/internal/platform"
	"github.com/albertocavalcante/go-blendlaunch/version"
)

// ErrMetadataRead is wrapped by every per-build metadata failure.
var ErrMetadataRead = errors.New("cannot read build metadata")

// MetadataError reports a build folder whose metadata could not be read.
// It is isolated to that build; indexing continues without it.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("%s %s: %v", ErrMetadataRead, e.Path, e.Err)
}

func (e *MetadataError) Unwrap() []error {
	return []error{ErrMetadataRead, e.Err}
}

// BuildRecord is the metadata of one installed build.
type BuildRecord struct {
	// Path is the build folder.
	Path string
	// Link is the library-relative slash path of the build folder
	// ("stable/blender-4.2.0"). The favorite setting refers to builds by Link.
	Link string
	// Category is the library subfolder, derived from Link.
	Category string
	Version  version.Version
	Branch   string
	// BuildHash is the short commit hash the build was made from.
	BuildHash  string
	CommitTime time.Time
	// CustomName is a user label shown instead of the folder name.
	CustomName string
	// CustomExecutable overrides the platform executable, relative to Path.
	CustomExecutable string
	// Raw is the metadata entry as found on disk; nil for probed builds.
	Raw json.RawMessage
}

// Executable returns the absolute path of the program to run for goos.
func (b *BuildRecord) Executable(goos string) string {
	if b.CustomExecutable != "" {
		return filepath.Join(b.Path, filepath.FromSlash(b.CustomExecutable))
	}
	return filepath.Join(b.Path, platform.Executable(goos))
}

// DisplayName returns CustomName if set, otherwise the build folder name.
func (b *BuildRecord) DisplayName() string {
	if b.CustomName != "" {
		return b.CustomName
	}
	return filepath.Base(b.Path)
}

// infoFile mirrors the on-disk .blinfo document.
type infoFile struct {
	FileVersion string            `json:"file_version"`
	Builds      []json.RawMessage `json:"blinfo"`
}

type infoEntry struct {
	Branch           string `json:"branch"`
	Subversion       string `json:"subversion"`
	BuildHash        string `json:"build_hash"`
	CommitTime       string `json:"commit_time"`
	CustomName       string `json:"custom_name"`
	IsFavorite       bool   `json:"is_favorite"`
	CustomExecutable string `json:"custom_executable"`
}

// commitTimeLayouts are tried in order when decoding commit_time.
var commitTimeLayouts = []string{
	"02-Jan-06-15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

// releaseBranches never become a prerelease tag.
var releaseBranches = map[string]bool{
	"":       true,
	"stable": true,
	"lts":    true,
	"daily":  true,
}

// ReadBuildInfo reads the metadata of the build folder at dir.
//
// The .blinfo file is preferred. When it is missing but the platform
// executable exists, the version is obtained by running the executable
// (see ProbeExecutable). Every failure is a *MetadataError.
func ReadBuildInfo(dir string) (*BuildRecord, error) {
	rec, err := readBuildInfo(dir)
	if err != nil {
		return nil, &MetadataError{Path: dir, Err: err}
	}
	return rec, nil
}

func readBuildInfo(dir string) (*BuildRecord, error) {
	data, err := os.ReadFile(filepath.Join(dir, InfoFile))
	if errors.Is(err, os.ErrNotExist) {
		exe := filepath.Join(dir, platform.Executable(""))
		v, perr := ProbeExecutable(context.Background(), exe)
		if perr != nil {
			return nil, perr
		}
		rec := &BuildRecord{Path: dir, Version: v}
		setLink(rec)
		return rec, nil
	}
	if err != nil {
		return nil, err
	}

	rec, err := parseBuildInfo(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", InfoFile, err)
	}
	rec.Path = dir
	setLink(rec)
	return rec, nil
}

func parseBuildInfo(data []byte) (*BuildRecord, error) {
	var doc infoFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Builds) == 0 {
		return nil, errors.New("no build entry")
	}

	raw := doc.Builds[0]
	var e infoEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	if e.Subversion == "" {
		return nil, errors.New("missing subversion")
	}

	v, err := version.Parse(e.Subversion)
	if err != nil {
		return nil, err
	}
	branch := strings.ToLower(strings.TrimSpace(e.Branch))
	if !v.IsPrerelease() && !releaseBranches[branch] {
		v = v.WithPrerelease(branchTag(branch))
	}

	rec := &BuildRecord{
		Version:          v,
		Branch:           e.Branch,
		BuildHash:        e.BuildHash,
		CustomName:       e.CustomName,
		CustomExecutable: e.CustomExecutable,
		Raw:              bytes.Clone(raw),
	}
	if e.CommitTime != "" {
		for _, layout := range commitTimeLayouts {
			if t, err := time.Parse(layout, e.CommitTime); err == nil {
				rec.CommitTime = t
				break
			}
		}
	}
	return rec, nil
}

// branchTag turns a branch name into a valid prerelease identifier.
func branchTag(branch string) string {
	var b strings.Builder
	for _, r := range branch {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}

// setLink derives Link and Category from the last two path elements.
func setLink(rec *BuildRecord) {
	category := filepath.Base(filepath.Dir(rec.Path))
	rec.Category = category
	rec.Link = path.Join(category, filepath.Base(rec.Path))
}

// ProbeTimeout bounds how long ProbeExecutable waits for the version banner.
var ProbeTimeout = 10 * time.Second

// bannerPattern matches "Blender 4.2.0" with an optional release cycle.
var bannerPattern = regexp.MustCompile(`Blender\s+(\d+\.\d+(?:\.\d+)?)(?:\s+(Alpha|Beta|RC\d*)\b)?`)

// ProbeExecutable runs exe with -v and parses the "Blender X.Y.Z" banner.
func ProbeExecutable(ctx context.Context, exe string) (version.Version, error) {
	if _, err := os.Stat(exe); err != nil {
		return version.Version{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, exe, "-v").Output()
	if err != nil {
		return version.Version{}, fmt.Errorf("run %s -v: %w", exe, err)
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := bannerPattern.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		if m[2] != "" {
			return version.Parse(m[1] + " " + m[2])
		}
		return version.Parse(m[1])
	}
	return version.Version{}, fmt.Errorf("no version banner in output of %s", exe)
}
