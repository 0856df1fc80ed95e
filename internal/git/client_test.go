package git

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func writeRepoFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func commitAll(t *testing.T, wt *gogit.Worktree, msg string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			t.Fatalf("add %s: %v", p, err)
		}
	}
	_, err := wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit %q: %v", msg, err)
	}
}

func initRepo(t *testing.T) (string, *gogit.Worktree) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	return dir, wt
}

func TestChangedFilesLatestCommit(t *testing.T) {
	dir, wt := initRepo(t)
	writeRepoFile(t, dir, "a.html", "one")
	writeRepoFile(t, dir, "notes.txt", "notes")
	writeRepoFile(t, dir, "site/x.html", "x")
	commitAll(t, wt, "initial", "a.html", "notes.txt", "site/x.html")

	writeRepoFile(t, dir, "a.html", "two")
	writeRepoFile(t, dir, "site/y.html", "y")
	if _, err := wt.Remove("notes.txt"); err != nil {
		t.Fatalf("remove notes.txt: %v", err)
	}
	commitAll(t, wt, "second", "a.html", "site/y.html")

	got, err := NewClient(dir).ChangedFiles(context.Background())
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	if want := []string{"a.html", "site/y.html"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ChangedFiles() = %v, want %v", got, want)
	}
}

func TestChangedFilesRelativeToSubdirectory(t *testing.T) {
	dir, wt := initRepo(t)
	writeRepoFile(t, dir, "README.md", "readme")
	writeRepoFile(t, dir, "site/x.html", "x")
	commitAll(t, wt, "initial", "README.md", "site/x.html")

	writeRepoFile(t, dir, "README.md", "changed")
	writeRepoFile(t, dir, "site/docs/y.html", "y")
	commitAll(t, wt, "second", "README.md", "site/docs/y.html")

	got, err := NewClient(filepath.Join(dir, "site")).ChangedFiles(context.Background())
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	if want := []string{"docs/y.html"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ChangedFiles() = %v, want %v", got, want)
	}
}

func TestChangedFilesRootCommitListsEveryFile(t *testing.T) {
	dir, wt := initRepo(t)
	writeRepoFile(t, dir, "b.html", "b")
	writeRepoFile(t, dir, "a.html", "a")
	writeRepoFile(t, dir, "sub/c.html", "c")
	commitAll(t, wt, "initial", "a.html", "b.html", "sub/c.html")

	got, err := NewClient(dir).ChangedFiles(context.Background())
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	if want := []string{"a.html", "b.html", "sub/c.html"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ChangedFiles() = %v, want %v", got, want)
	}
}

func TestChangedFilesOutsideRepository(t *testing.T) {
	_, err := NewClient(t.TempDir()).ChangedFiles(context.Background())
	if err == nil {
		t.Fatalf("expected error outside a repository")
	}
	if !errors.Is(err, ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed, got %v", err)
	}
}

func TestChangedFilesWithoutCommits(t *testing.T) {
	dir, _ := initRepo(t)
	_, err := NewClient(dir).ChangedFiles(context.Background())
	if !errors.Is(err, ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed for an empty repository, got %v", err)
	}
}

func TestChangedFilesCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(t.TempDir()).ChangedFiles(ctx)
	if !errors.Is(err, ErrQueryFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled query failure, got %v", err)
	}
}

type stubSource struct {
	files []string
	err   error
}

func (s stubSource) ChangedFiles(context.Context) ([]string, error) {
	return s.files, s.err
}

func TestChangedPagesBestEffort(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	got := ChangedPages(context.Background(), stubSource{err: ErrQueryFailed}, logger)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list on failure, got %#v", got)
	}
	if !strings.Contains(logs.String(), "changed pages unavailable") {
		t.Fatalf("expected warning log, got %q", logs.String())
	}

	if got := ChangedPages(context.Background(), nil, logger); len(got) != 0 {
		t.Fatalf("expected empty list for nil source, got %v", got)
	}
	if got := ChangedPages(context.Background(), stubSource{}, logger); got == nil {
		t.Fatalf("expected non-nil list for empty result")
	}

	got = ChangedPages(context.Background(), stubSource{files: []string{"a.html"}}, logger)
	if !reflect.DeepEqual(got, []string{"a.html"}) {
		t.Fatalf("ChangedPages() = %v", got)
	}
}
