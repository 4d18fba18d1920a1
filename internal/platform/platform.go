// Package platform maps operating systems to the on-disk layout of a build.
// This is an internal package used by the library scanner and the launcher.
package platform

import (
	"path/filepath"
	"runtime"
)

// executables maps GOOS to the executable path relative to a build folder.
var executables = map[string]string{
	"windows": "blender.exe",
	"linux":   "blender",
	"darwin":  "Blender.app/Contents/MacOS/Blender",
}

// defaultExecutable is used for operating systems without a known layout.
const defaultExecutable = "blender"

// Executable returns the executable path, relative to a build folder, for goos.
// An empty goos means the running system.
func Executable(goos string) string {
	if goos == "" {
		goos = runtime.GOOS
	}
	if exe, ok := executables[goos]; ok {
		return filepath.FromSlash(exe)
	}
	return defaultExecutable
}

// Name returns the display name of goos as used in build metadata.
func Name(goos string) string {
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	case "darwin":
		return "macOS"
	}
	return goos
}
