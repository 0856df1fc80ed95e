package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/benedict2310/siteindex/internal/config"
)

// writeSite creates a.html, B.html and sub/c.html under a temp dir.
func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, rel := range []string{"a.html", "B.html", "sub/c.html", "notes.txt"} {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(p, []byte("<p>"+rel+"</p>"), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return dir
}

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range []string{config.EnvConfigPath, config.EnvBaseURL, config.EnvSubRoot} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cmd := NewRootCmd("test")
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetContext(context.Background())
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
