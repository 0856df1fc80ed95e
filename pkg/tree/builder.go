package tree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benedict2310/siteindex/pkg/model"
	"github.com/benedict2310/siteindex/pkg/sitepath"
)

const DefaultPageExtension = ".html"

// ErrDirectoryUnreadable is matched by every UnreadableError.
var ErrDirectoryUnreadable = errors.New("directory unreadable")

// UnreadableError reports a directory that could not be listed. It unwraps
// to the underlying fs error, so errors.Is(err, fs.ErrNotExist) and
// errors.Is(err, fs.ErrPermission) distinguish the two failure kinds.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("read directory %s: %v", e.Path, e.Err)
}

func (e *UnreadableError) Unwrap() []error {
	return []error{ErrDirectoryUnreadable, e.Err}
}

// Options controls which entries become part of the tree.
type Options struct {
	PageExtension string
	Collation     Collation
	Exclude       []string
	// Skip is consulted after the hidden-entry and Exclude rules with the
	// slash-separated path relative to the scan root.
	Skip func(rel string, isDir bool) bool
}

// Build scans rootPath recursively and returns its folder tree. Hidden
// entries are skipped at every level, non-page files are ignored, and
// subfolders and pages are sorted by the configured collation. Any
// directory that cannot be listed aborts the build.
func Build(rootPath string, opts Options) (*model.FolderNode, error) {
	if strings.TrimSpace(rootPath) == "" {
		return nil, fmt.Errorf("root path is required")
	}
	if opts.PageExtension == "" {
		opts.PageExtension = DefaultPageExtension
	}
	cmp, err := opts.Collation.comparer()
	if err != nil {
		return nil, err
	}

	b := &builder{root: rootPath, opts: opts, less: cmp}
	root := &model.FolderNode{Name: filepath.Base(filepath.Clean(rootPath))}
	if err := b.fill(root); err != nil {
		return nil, err
	}
	return root, nil
}

type builder struct {
	root string
	opts Options
	less func(a, b string) bool
}

func (b *builder) fill(node *model.FolderNode) error {
	dir := filepath.Join(b.root, filepath.FromSlash(node.RelativePath))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &UnreadableError{Path: dir, Err: err}
	}

	for _, entry := range entries {
		name := entry.Name()
		if sitepath.IsHidden(name) {
			continue
		}
		rel := name
		if node.RelativePath != "" {
			rel = node.RelativePath + "/" + name
		}
		isDir := entry.IsDir()
		if shouldExclude(rel, isDir, b.opts.Exclude) {
			continue
		}
		if b.opts.Skip != nil && b.opts.Skip(rel, isDir) {
			continue
		}

		if isDir {
			child := &model.FolderNode{Name: name, RelativePath: rel}
			if err := b.fill(child); err != nil {
				return err
			}
			node.Subfolders = append(node.Subfolders, child)
			continue
		}
		if !sitepath.HasExtension(name, b.opts.PageExtension) {
			continue
		}
		node.Pages = append(node.Pages, model.PageEntry{Name: name, RelativePath: rel})
	}

	sortFolders(node.Subfolders, b.less)
	sortPages(node.Pages, b.less)
	return nil
}
