package library

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/albertocavalcante/go-blendlaunch/internal/platform"
)

func TestScan(t *testing.T) {
	root := t.TempDir()
	installBuild(t, root, "stable", "blender-4.2.0", "4.2.0", "stable")
	installBuild(t, root, "daily", "blender-4.3.0-alpha", "4.3.0 Alpha", "daily")
	writeFile(t, filepath.Join(root, "custom", "portable", platform.Executable(runtime.GOOS)), "", 0o755)
	if err := os.MkdirAll(filepath.Join(root, "stable", "half-extracted"), 0o755); err != nil {
		t.Fatal(err)
	}
	// Files next to builds and unknown categories are ignored.
	writeFile(t, filepath.Join(root, "stable", "notes.txt"), "x", 0o644)
	installBuild(t, root, "archive", "blender-2.79", "2.79", "")

	var got []Entry
	for e := range Scan(root, DefaultCategories, runtime.GOOS) {
		got = append(got, e)
	}

	want := []Entry{
		{Category: "stable", Name: "blender-4.2.0", Path: filepath.Join(root, "stable", "blender-4.2.0"), Link: "stable/blender-4.2.0", Recognized: true},
		{Category: "stable", Name: "half-extracted", Path: filepath.Join(root, "stable", "half-extracted"), Link: "stable/half-extracted", Recognized: false},
		{Category: "daily", Name: "blender-4.3.0-alpha", Path: filepath.Join(root, "daily", "blender-4.3.0-alpha"), Link: "daily/blender-4.3.0-alpha", Recognized: true},
		{Category: "custom", Name: "portable", Path: filepath.Join(root, "custom", "portable"), Link: "custom/portable", Recognized: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	n := 0
	for range Scan(filepath.Join(t.TempDir(), "nope"), DefaultCategories, "linux") {
		n++
	}
	if n != 0 {
		t.Errorf("Scan(missing root) yielded %d entries, want 0", n)
	}
}

func TestScan_IsLazyAndRepeatable(t *testing.T) {
	root := t.TempDir()
	installBuild(t, root, "stable", "a", "4.0.0", "")
	seq := Scan(root, DefaultCategories, "linux")

	if got := len(Recognized(seq)); got != 1 {
		t.Fatalf("first pass = %d builds, want 1", got)
	}
	installBuild(t, root, "stable", "b", "4.1.0", "")
	if got := len(Recognized(seq)); got != 2 {
		t.Errorf("second pass = %d builds, want 2", got)
	}
}

func TestScan_EarlyBreak(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		installBuild(t, root, "stable", name, "4.0.0", "")
	}
	n := 0
	for range Scan(root, DefaultCategories, "linux") {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterations after break = %d, want 1", n)
	}
}

func TestUnrecognized(t *testing.T) {
	root := t.TempDir()
	installBuild(t, root, "stable", "good", "4.0.0", "")
	if err := os.MkdirAll(filepath.Join(root, "daily", "junk"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := Unrecognized(Scan(root, DefaultCategories, "linux"))
	if len(got) != 1 || got[0].Link != "daily/junk" {
		t.Errorf("Unrecognized = %+v, want [daily/junk]", got)
	}
}
