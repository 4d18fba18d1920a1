package library

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// installBuild creates root/category/name with a .blinfo describing subversion.
func installBuild(t *testing.T, root, category, name, subversion, branch string) string {
	t.Helper()

	dir := filepath.Join(root, category, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	doc := map[string]any{
		"file_version": "1.3",
		"blinfo": []map[string]any{{
			"branch":            branch,
			"subversion":        subversion,
			"build_hash":        "a1b2c3d4e5f6",
			"commit_time":       "16-Jul-24-10:05",
			"custom_name":       "",
			"is_favorite":       false,
			"custom_executable": "",
		}},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, InfoFile), data, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
}
