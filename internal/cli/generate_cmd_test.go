package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateCommandWritesOutputs(t *testing.T) {
	dir := writeSite(t)

	out, _, err := runCommand(t, "generate", dir, "--no-git", "--base-url", "https://example.com/")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, name := range []string{"index.html", "sitemap.xml", "robots.txt"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected report to list %s:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "Generated 3 outputs for 3 pages in 2 folders; changed in latest commit: <none>") {
		t.Fatalf("unexpected summary:\n%s", out)
	}

	index := readFile(t, filepath.Join(dir, "index.html"))
	if strings.Index(index, `href="sub/c.html"`) > strings.Index(index, `href="a.html"`) {
		t.Fatalf("expected subfolder pages before root pages:\n%s", index)
	}
	if strings.Contains(index, "notes.txt") {
		t.Fatalf("non-page files must not be listed:\n%s", index)
	}
	robots := readFile(t, filepath.Join(dir, "robots.txt"))
	if robots != "User-agent: *\nAllow: /\nSitemap: https://example.com/sitemap.xml\n" {
		t.Fatalf("robots.txt = %q", robots)
	}
	if sitemap := readFile(t, filepath.Join(dir, "sitemap.xml")); !strings.Contains(sitemap, "<loc>https://example.com/sub/c.html</loc>") {
		t.Fatalf("unexpected sitemap:\n%s", sitemap)
	}
}

func TestGenerateCommandJSONReport(t *testing.T) {
	dir := writeSite(t)

	out, _, err := runCommand(t, "generate", dir, "--no-git", "--sitemap", "split", "-o", "json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var res struct {
		Pages   int `json:"pages"`
		Outputs []struct {
			Path string `json:"path"`
		} `json:"outputs"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("unmarshal report: %v\n%s", err, out)
	}
	if res.Pages != 3 {
		t.Fatalf("pages = %d, want 3", res.Pages)
	}
	var paths []string
	for _, o := range res.Outputs {
		paths = append(paths, o.Path)
	}
	want := "index.html sitemaps/root.xml sitemaps/sub.xml sitemap_index.xml robots.txt"
	if got := strings.Join(paths, " "); got != want {
		t.Fatalf("outputs = %s, want %s", got, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "sitemap.xml")); !os.IsNotExist(err) {
		t.Fatalf("split mode must not write sitemap.xml, stat err = %v", err)
	}
}

func TestGenerateCommandDryRunWritesNothing(t *testing.T) {
	dir := writeSite(t)

	out, _, err := runCommand(t, "generate", dir, "--no-git", "--dry-run")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Rendered (dry run)") {
		t.Fatalf("expected dry-run summary:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote index.html, stat err = %v", err)
	}
}

func TestGenerateCommandWithoutRepositoryStillWrites(t *testing.T) {
	dir := writeSite(t)

	_, errOut, err := runCommand(t, "generate", dir)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(errOut, "changed pages unavailable") {
		t.Fatalf("expected a warning about the change query, got:\n%s", errOut)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		t.Fatalf("expected index.html: %v", err)
	}
}

func TestGenerateCommandMissingDirectoryExitCode(t *testing.T) {
	_, _, err := runCommand(t, "generate", filepath.Join(t.TempDir(), "missing"), "--no-git")
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
	if got := ExitCode(err); got != exitUnreadable {
		t.Fatalf("ExitCode() = %d, want %d", got, exitUnreadable)
	}
}

func TestGenerateCommandRejectsInvalidStyle(t *testing.T) {
	dir := writeSite(t)

	_, _, err := runCommand(t, "generate", dir, "--no-git", "--style", "tree")
	if err == nil || !strings.Contains(err.Error(), "index.style") {
		t.Fatalf("expected index.style error, got %v", err)
	}
	if got := ExitCode(err); got != 1 {
		t.Fatalf("ExitCode() = %d, want 1", got)
	}
}

func TestGenerateCommandUsesConfigFile(t *testing.T) {
	dir := writeSite(t)
	cfg := "index:\n  title: Handbook\n  style: nested\nrecent:\n  enabled: true\n"
	if err := os.WriteFile(filepath.Join(dir, ".siteindex.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := runCommand(t, "generate", dir, "--no-git"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	index := readFile(t, filepath.Join(dir, "index.html"))
	if !strings.Contains(index, "<title>Handbook</title>") || !strings.Contains(index, "<details>") {
		t.Fatalf("expected nested index titled Handbook:\n%s", index)
	}
	if _, err := os.Stat(filepath.Join(dir, "recent.html")); err != nil {
		t.Fatalf("expected recent.html: %v", err)
	}
}
