package e2e

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	blendlaunch "github.com/albertocavalcante/go-blendlaunch"
	"github.com/albertocavalcante/go-blendlaunch/library"
	"github.com/albertocavalcante/go-blendlaunch/version"
)

// TestDiagnostic_UntidyLibrary loads a library with the problems users
// actually have: a broken metadata file, a half-extracted download, and the
// same release installed twice.
func TestDiagnostic_UntidyLibrary(t *testing.T) {
	lib := newTestLibrary(t)
	lib.install(t, "stable", "3.6.0", "lts")
	lib.install(t, "stable", "4.2.0", "stable")
	lib.install(t, "daily", "4.3.0 Alpha", "daily")
	copyDir := lib.install(t, "custom", "4.2.0", "stable")

	broken := lib.install(t, "stable", "4.0.0", "stable")
	if err := os.WriteFile(filepath.Join(broken, library.InfoFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(lib.root, "daily", "blender-4.4-downloading"), 0o755); err != nil {
		t.Fatal(err)
	}
	s := lib.saveSettings(t, nil)

	r, err := blendlaunch.Load(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	idx := r.Index()

	t.Logf("=== LIBRARY DIAGNOSTIC ===")
	for _, b := range idx.Builds() {
		t.Logf("  %-14s %s", b.Version, b.Link)
	}
	for _, f := range idx.Failures {
		t.Logf("  unreadable: %v", f)
	}
	for _, c := range idx.Conflicts {
		t.Logf("  duplicate: %s", c)
	}

	if idx.Len() != 3 {
		t.Errorf("indexed %d builds, want 3", idx.Len())
	}
	if len(idx.Failures) != 1 || idx.Failures[0].Path != broken {
		t.Errorf("Failures = %v, want only %s", idx.Failures, broken)
	} else if !errors.Is(idx.Failures[0], library.ErrMetadataRead) {
		t.Errorf("failure %v does not wrap ErrMetadataRead", idx.Failures[0])
	}

	// custom is scanned after stable, so its copy of 4.2.0 is the one kept.
	if len(idx.Conflicts) != 1 {
		t.Fatalf("Conflicts = %v, want one", idx.Conflicts)
	}
	if got := idx.ByVersion[version.New(4, 2, 0)].Path; got != copyDir {
		t.Errorf("4.2.0 resolves to %s, want %s", got, copyDir)
	}

	var unrecognized []string
	for _, e := range library.Unrecognized(library.Scan(s.LibraryFolder, s.Categories, runtime.GOOS)) {
		unrecognized = append(unrecognized, e.Link)
	}
	if len(unrecognized) != 1 || unrecognized[0] != "daily/blender-4.4-downloading" {
		t.Errorf("unrecognized = %v, want [daily/blender-4.4-downloading]", unrecognized)
	}

	// The broken build is invisible to resolution rather than fatal.
	out, err := r.Resolve(context.Background(), blendlaunch.Request{Version: "4.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	esc, ok := out.(blendlaunch.Escalate)
	if !ok {
		t.Fatalf("outcome = %#v, want Escalate", out)
	}
	if !errors.Is(esc.Err(), blendlaunch.ErrNoMatch) {
		t.Errorf("Err() = %v, want ErrNoMatch", esc.Err())
	}
	if len(esc.Candidates) != 3 {
		t.Errorf("Candidates = %v, want the 3 indexed versions", esc.Candidates)
	}
}
