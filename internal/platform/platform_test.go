package platform

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestExecutable(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"windows", "blender.exe"},
		{"linux", "blender"},
		{"darwin", filepath.FromSlash("Blender.app/Contents/MacOS/Blender")},
		{"plan9", "blender"},
	}

	for _, tt := range tests {
		if got := Executable(tt.goos); got != tt.want {
			t.Errorf("Executable(%q) = %q, want %q", tt.goos, got, tt.want)
		}
	}

	if Executable("") != Executable(runtime.GOOS) {
		t.Errorf("Executable(\"\") does not default to the running system")
	}
}

func TestName(t *testing.T) {
	if got := Name("darwin"); got != "macOS" {
		t.Errorf("Name(darwin) = %q, want macOS", got)
	}
	if got := Name("freebsd"); got != "freebsd" {
		t.Errorf("Name(freebsd) = %q, want freebsd", got)
	}
}
