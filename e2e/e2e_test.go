package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	blendlaunch "github.com/albertocavalcante/go-blendlaunch"
	"github.com/albertocavalcante/go-blendlaunch/internal/platform"
	"github.com/albertocavalcante/go-blendlaunch/launch"
	"github.com/albertocavalcante/go-blendlaunch/library"
	"github.com/albertocavalcante/go-blendlaunch/selection"
	"github.com/albertocavalcante/go-blendlaunch/selector"
	"github.com/albertocavalcante/go-blendlaunch/settings"
	"github.com/albertocavalcante/go-blendlaunch/version"
)

// testLibrary is an on-disk build library plus its settings file.
type testLibrary struct {
	root     string
	settings string
}

func newTestLibrary(t *testing.T) *testLibrary {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(settings.HomeEnv, dir)
	return &testLibrary{
		root:     filepath.Join(dir, "library"),
		settings: filepath.Join(dir, "settings.yaml"),
	}
}

// install creates a build folder with metadata and a fake executable that
// prints its arguments.
func (l *testLibrary) install(t *testing.T, category, subversion, branch string) string {
	t.Helper()
	dir := filepath.Join(l.root, category, "blender-"+strings.ReplaceAll(subversion, " ", "-"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	info, err := json.Marshal(map[string]any{
		"file_version": "1.3",
		"blinfo": []map[string]any{{
			"branch":      branch,
			"subversion":  subversion,
			"build_hash":  "deadbeef",
			"commit_time": "2024-07-16 10:05",
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, library.InfoFile), info, 0o644); err != nil {
		t.Fatal(err)
	}

	exe := filepath.Join(dir, platform.Executable(runtime.GOOS))
	if err := os.MkdirAll(filepath.Dir(exe), 0o755); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\necho \"" + subversion + " $*\"\n"
	if err := os.WriteFile(exe, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func (l *testLibrary) saveSettings(t *testing.T, mutate func(*settings.Settings)) *settings.Settings {
	t.Helper()
	s := settings.Default()
	s.LibraryFolder = l.root
	s.WorkerThreadCount = 4
	if mutate != nil {
		mutate(s)
	}
	if err := s.Save(l.settings); err != nil {
		t.Fatal(err)
	}
	loaded, err := settings.Load(l.settings)
	if err != nil {
		t.Fatal(err)
	}
	return loaded
}

// writeBlend writes a zstd-compressed .blend file with the given header,
// as Blender 3.0 and later save them.
func writeBlend(t *testing.T, header string) string {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write(append([]byte(header), make([]byte, 1024)...)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(t.TempDir(), "scene.blend")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func resolve(t *testing.T, s *settings.Settings, req blendlaunch.Request) blendlaunch.Outcome {
	t.Helper()
	r, err := blendlaunch.Load(context.Background(), s)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := r.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve(%+v): %v", req, err)
	}
	return out
}

func TestPipeline_VersionQueries(t *testing.T) {
	lib := newTestLibrary(t)
	lib.install(t, "stable", "3.3.18", "lts")
	lib.install(t, "stable", "3.6.0", "lts")
	lib.install(t, "stable", "4.1.0", "stable")
	lib.install(t, "stable", "4.2.0", "stable")
	lib.install(t, "daily", "4.3.0 Alpha", "daily")
	s := lib.saveSettings(t, nil)

	tests := []struct {
		query string
		want  string
	}{
		{"^.^.^", "4.3.0-alpha"},
		{"4.2", "4.2.0"},
		{"3.-.*", "3.3.18"},
		{"-.^.^", "3.6.0"},
	}
	for _, tt := range tests {
		out := resolve(t, s, blendlaunch.Request{Version: tt.query})
		l, ok := out.(blendlaunch.Launch)
		if !ok {
			t.Errorf("%s: outcome = %#v, want Launch", tt.query, out)
			continue
		}
		if l.Build.Version.String() != tt.want {
			t.Errorf("%s: launched %s, want %s", tt.query, l.Build.Version, tt.want)
		}
	}

	out := resolve(t, s, blendlaunch.Request{Version: "4.*.*"})
	esc, ok := out.(blendlaunch.Escalate)
	if !ok {
		t.Fatalf("4.*.*: outcome = %#v, want Escalate", out)
	}
	if len(esc.Matches) != 3 {
		t.Errorf("4.*.*: %d matches, want 3 (4.1.0, 4.2.0, 4.3.0-alpha)", len(esc.Matches))
	}
}

func TestPipeline_FileToSelectorToLaunch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake builds are shell scripts")
	}

	lib := newTestLibrary(t)
	lib.install(t, "stable", "3.6.0", "lts")
	lib.install(t, "stable", "4.2.0", "stable")
	s := lib.saveSettings(t, func(s *settings.Settings) {
		s.LaunchArgs = "--factory-startup"
	})
	file := writeBlend(t, "BLENDER-v410")

	// 4.1.0 is not installed and there is no rule yet.
	r, err := blendlaunch.Load(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Resolve(context.Background(), blendlaunch.Request{File: file})
	if err != nil {
		t.Fatal(err)
	}
	esc, ok := out.(blendlaunch.Escalate)
	if !ok {
		t.Fatalf("outcome = %#v, want Escalate", out)
	}
	if esc.Query != selection.ExactQuery(version.New(4, 1, 0)) {
		t.Errorf("Query = %s, want 4.1.0", esc.Query)
	}

	// The user answers; the rule is persisted like the CLI does.
	r.Learn(selector.Entry{Trigger: esc.Query, Resolution: selection.MustParseQuery("4.^.^")})
	if err := settings.SaveSelectors(lib.settings, r.Selectors()); err != nil {
		t.Fatal(err)
	}

	// A fresh process picks the rule up from the settings file.
	reloaded, err := settings.Load(lib.settings)
	if err != nil {
		t.Fatal(err)
	}
	out = resolve(t, reloaded, blendlaunch.Request{File: file})
	l, ok := out.(blendlaunch.Launch)
	if !ok {
		t.Fatalf("outcome after selector = %#v, want Launch", out)
	}
	if l.Build.Version != version.New(4, 2, 0) || l.File != file {
		t.Errorf("Launch = {%s, %s}, want {4.2.0, %s}", l.Build.Version, l.File, file)
	}

	var stdout bytes.Buffer
	obs := launch.NewObserver()
	launcher := &launch.Launcher{Args: reloaded.LaunchArgs, Stdout: &stdout, Observer: obs}
	p, err := launcher.Start(context.Background(), l.Build, l.File)
	if err != nil {
		t.Fatal(err)
	}
	if err := obs.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.Wait(); err != nil {
		t.Fatal(err)
	}
	if want := "4.2.0 --factory-startup " + file + "\n"; stdout.String() != want {
		t.Errorf("build output = %q, want %q", stdout.String(), want)
	}
}

func TestPipeline_FavoriteAndFileOverVersion(t *testing.T) {
	lib := newTestLibrary(t)
	lib.install(t, "stable", "3.6.0", "lts")
	lib.install(t, "stable", "4.2.0", "stable")
	s := lib.saveSettings(t, func(s *settings.Settings) {
		s.FavoriteBuildLink = "stable/blender-3.6.0"
	})

	out := resolve(t, s, blendlaunch.Request{})
	if l, ok := out.(blendlaunch.Launch); !ok || l.Build.Version != version.New(3, 6, 0) {
		t.Errorf("favorite outcome = %#v, want Launch 3.6.0", out)
	}

	file := writeBlend(t, "BLENDER-v420")
	out = resolve(t, s, blendlaunch.Request{File: file, Version: "3.6.0"})
	if l, ok := out.(blendlaunch.Launch); !ok || l.Build.Version != version.New(4, 2, 0) {
		t.Errorf("file+version outcome = %#v, want Launch 4.2.0 from the file", out)
	}
}

func TestPipeline_LegacyFileVersion(t *testing.T) {
	lib := newTestLibrary(t)
	lib.install(t, "stable", "2.93", "")
	lib.install(t, "stable", "2.79", "")
	s := lib.saveSettings(t, nil)

	// 2.x headers store the minor version in two digits.
	out := resolve(t, s, blendlaunch.Request{File: writeBlend(t, "BLENDER-v293")})
	if l, ok := out.(blendlaunch.Launch); !ok || l.Build.Version != version.New(2, 93, 0) {
		t.Errorf("outcome = %#v, want Launch 2.93.0", out)
	}
}
