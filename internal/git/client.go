// Package git answers which files the latest commit touched.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrQueryFailed marks every failure of the version-control query.
var ErrQueryFailed = errors.New("version control query failed")

// ChangeSource lists the files changed by the most recent revision, relative
// to the site root.
type ChangeSource interface {
	ChangedFiles(ctx context.Context) ([]string, error)
}

// Client reads the repository that contains dir.
type Client struct {
	dir string
}

func NewClient(dir string) *Client {
	return &Client{dir: dir}
}

// ChangedFiles diffs HEAD against its first parent and returns the added or
// modified files below the client's directory, relative to it and sorted
// bytewise. For a root commit every file in HEAD counts as added.
func (c *Client) ChangedFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	dir, err := resolveDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrQueryFailed, c.dir, err)
	}
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: open repository at %s: %w", ErrQueryFailed, dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: open worktree: %w", ErrQueryFailed, err)
	}
	toplevel, err := resolveDir(wt.Filesystem.Root())
	if err != nil {
		return nil, fmt.Errorf("%w: resolve worktree root: %w", ErrQueryFailed, err)
	}

	files, err := latestCommitFiles(repo)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	prefix, err := filepath.Rel(toplevel, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: relate %s to %s: %w", ErrQueryFailed, dir, toplevel, err)
	}
	prefix = filepath.ToSlash(prefix)
	if prefix == "." {
		prefix = ""
	}

	out := make([]string, 0, len(files))
	for _, name := range files {
		if prefix == "" {
			out = append(out, name)
			continue
		}
		if rest, ok := strings.CutPrefix(name, prefix+"/"); ok {
			out = append(out, rest)
		}
	}
	sort.Strings(out)
	return out, nil
}

func latestCommitFiles(repo *gogit.Repository) ([]string, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", head.Hash(), err)
	}
	headTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load tree of %s: %w", head.Hash(), err)
	}

	var files []string
	if commit.NumParents() == 0 {
		err := headTree.Files().ForEach(func(f *object.File) error {
			files = append(files, f.Name)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list files of root commit: %w", err)
		}
		return files, nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("load parent of %s: %w", head.Hash(), err)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, fmt.Errorf("load tree of %s: %w", parent.Hash, err)
	}
	changes, err := object.DiffTree(parentTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", parent.Hash, head.Hash(), err)
	}
	for _, change := range changes {
		// deletions have no destination
		if change.To.Name == "" {
			continue
		}
		files = append(files, change.To.Name)
	}
	return files, nil
}

func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ChangedPages queries src and degrades to an empty list when the query
// fails. A nil source yields an empty list.
func ChangedPages(ctx context.Context, src ChangeSource, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	if src == nil {
		return []string{}
	}
	files, err := src.ChangedFiles(ctx)
	if err != nil {
		logger.Warn("changed pages unavailable", "error", err)
		return []string{}
	}
	if files == nil {
		return []string{}
	}
	return files
}
