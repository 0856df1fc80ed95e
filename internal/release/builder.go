// Package release plans, renders and writes every generated document of a
// site in one run.
package release

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/benedict2310/siteindex/internal/git"
	"github.com/benedict2310/siteindex/internal/names"
	"github.com/benedict2310/siteindex/pkg/model"
	"github.com/benedict2310/siteindex/pkg/renderer"
	"github.com/benedict2310/siteindex/pkg/sitepath"
	"github.com/benedict2310/siteindex/pkg/tree"
)

// SitemapMode selects between one sitemap and one sitemap per folder.
type SitemapMode string

const (
	SitemapSingle SitemapMode = "single"
	SitemapSplit  SitemapMode = "split"
)

const (
	DefaultSitemapName      = "sitemap.xml"
	DefaultSitemapDir       = "sitemaps"
	DefaultSitemapIndexName = "sitemap_index.xml"
	DefaultRobotsName       = "robots.txt"
)

// ParseSitemapMode accepts "", "single" and "split".
func ParseSitemapMode(v string) (SitemapMode, error) {
	switch SitemapMode(strings.ToLower(strings.TrimSpace(v))) {
	case "", SitemapSingle:
		return SitemapSingle, nil
	case SitemapSplit:
		return SitemapSplit, nil
	default:
		return "", fmt.Errorf("invalid sitemap mode %q (expected single or split)", v)
	}
}

// Config describes one generation run. Root is the output directory; pages
// are scanned from Root/SubRoot. Output names are relative to Root.
type Config struct {
	Root    string
	SubRoot string
	BaseURL string

	PageExtension string
	Collation     tree.Collation
	Exclude       []string

	Index renderer.Options

	SitemapMode      SitemapMode
	SitemapName      string
	SitemapDir       string
	SitemapIndexName string
	RobotsName       string

	// DryRun renders every output without writing any of them.
	DryRun bool
}

func (c Config) withDefaults() Config {
	c.SubRoot = sitepath.Normalize(c.SubRoot)
	c.Index.SubRoot = c.SubRoot
	if c.SitemapMode == "" {
		c.SitemapMode = SitemapSingle
	}
	if c.SitemapName == "" {
		c.SitemapName = DefaultSitemapName
	}
	if c.SitemapDir == "" {
		c.SitemapDir = DefaultSitemapDir
	}
	if c.SitemapIndexName == "" {
		c.SitemapIndexName = DefaultSitemapIndexName
	}
	if c.RobotsName == "" {
		c.RobotsName = DefaultRobotsName
	}
	if c.PageExtension == "" {
		c.PageExtension = tree.DefaultPageExtension
	}
	if c.Index.IndexName == "" {
		c.Index.IndexName = renderer.DefaultIndexName
	}
	if c.Index.RecentName == "" {
		c.Index.RecentName = renderer.DefaultRecentName
	}
	if c.Index.FolderDir == "" {
		c.Index.FolderDir = renderer.DefaultFolderDir
	}
	if c.Index.FolderIndexName == "" {
		c.Index.FolderIndexName = renderer.DefaultFolderIndexName
	}
	if c.Index.FolderLayout == "" {
		c.Index.FolderLayout = renderer.LayoutColocated
	}
	return c
}

func (c Config) writesRecent() bool {
	return c.Index.Recent || c.Index.Style == renderer.StyleFolders
}

// Output is one generated file.
type Output struct {
	Path   string `json:"path" yaml:"path"`
	Bytes  int    `json:"bytes" yaml:"bytes"`
	Digest string `json:"digest" yaml:"digest"`
}

// Result summarizes a generation run.
type Result struct {
	RunID    string   `json:"runId" yaml:"runId"`
	Root     string   `json:"root" yaml:"root"`
	Folders  int      `json:"folders" yaml:"folders"`
	Pages    int      `json:"pages" yaml:"pages"`
	Changed  []string `json:"changed" yaml:"changed"`
	Outputs  []Output `json:"outputs" yaml:"outputs"`
	DryRun   bool     `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	BuildLog []string `json:"buildLog,omitempty" yaml:"buildLog,omitempty"`
}

type renderedFile struct {
	path    string
	content []byte
}

type Builder struct {
	changes git.ChangeSource
	logger  *slog.Logger
	nowFn   func() time.Time
	idFn    func(time.Time) (string, error)
	writeFn func(path string, content []byte) error
}

// NewBuilder returns a builder that reads changed pages from changes. A nil
// source renders an empty changed list.
func NewBuilder(changes git.ChangeSource, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		changes: changes,
		logger:  logger,
		nowFn:   time.Now,
		idFn:    NewRunID,
		writeFn: writeFileAtomic,
	}
}

// Generate builds the tree, renders every output into memory and only then
// writes them. A tree that cannot be read aborts the run before any write; a
// failed changed-files query degrades to an empty changed list.
func (b *Builder) Generate(ctx context.Context, cfg Config) (Result, error) {
	var out Result
	if strings.TrimSpace(cfg.Root) == "" {
		return out, fmt.Errorf("root directory is required")
	}
	cfg = cfg.withDefaults()

	runID, err := b.idFn(b.nowFn())
	if err != nil {
		return out, err
	}
	out.RunID = runID
	out.Root = cfg.Root
	out.DryRun = cfg.DryRun

	log := newBuildLog(b.nowFn)
	log.Addf("starting generation run=%s root=%s subRoot=%q", runID, cfg.Root, cfg.SubRoot)

	root, err := Scan(cfg)
	if err != nil {
		return out, err
	}
	out.Folders, out.Pages = root.Counts()
	log.Addf("scanned %s folders=%d pages=%d", scanRoot(cfg), out.Folders, out.Pages)

	changed := filterChanged(git.ChangedPages(ctx, b.changes, b.logger), root, cfg)
	out.Changed = changed
	log.Addf("changed pages in latest commit: %d", len(changed))

	files, err := renderAll(root, changed, cfg)
	if err != nil {
		return out, err
	}
	if err := checkUnique(files); err != nil {
		return out, err
	}

	// Once writing starts the whole set is written, so a canceled watch run
	// never leaves a mix of old and new outputs.
	if err := ctx.Err(); err != nil {
		return out, err
	}
	for _, f := range files {
		if !cfg.DryRun {
			target := filepath.Join(cfg.Root, filepath.FromSlash(f.path))
			if err := b.writeFn(target, f.content); err != nil {
				return out, fmt.Errorf("write %s: %w", f.path, err)
			}
		}
		out.Outputs = append(out.Outputs, Output{
			Path:   f.path,
			Bytes:  len(f.content),
			Digest: fmt.Sprintf("%016x", xxhash.Sum64(f.content)),
		})
	}
	if cfg.DryRun {
		log.Addf("dry run: rendered %d outputs, nothing written", len(files))
	} else {
		log.Addf("wrote %d outputs", len(files))
	}
	b.logger.Info("generation complete", "run", runID, "root", cfg.Root, "pages", out.Pages, "outputs", len(files), "dry_run", cfg.DryRun)
	out.BuildLog = log.Lines()
	return out, nil
}

// Scan builds the page tree a run with cfg would render. Files the run
// itself generates are left out.
func Scan(cfg Config) (*model.FolderNode, error) {
	cfg = cfg.withDefaults()
	root, err := tree.Build(scanRoot(cfg), tree.Options{
		PageExtension: cfg.PageExtension,
		Collation:     cfg.Collation,
		Exclude:       cfg.Exclude,
		Skip:          generatedSkipper(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	return root, nil
}

func scanRoot(cfg Config) string {
	return filepath.Join(cfg.Root, filepath.FromSlash(cfg.SubRoot))
}

func renderAll(root *model.FolderNode, changed model.ChangedPages, cfg Config) ([]renderedFile, error) {
	folders := root.Folders()
	rels := make([]string, 0, len(folders))
	for _, f := range folders {
		rels = append(rels, f.RelativePath)
	}
	fileNames := names.FolderFileNames(rels)

	opts := cfg.Index
	opts.FolderNames = fileNames

	files := []renderedFile{{path: opts.IndexName, content: []byte(renderer.RenderIndex(changed, root, opts))}}
	if cfg.writesRecent() {
		files = append(files, renderedFile{path: opts.RecentName, content: []byte(renderer.RenderRecent(changed, opts))})
	}
	if opts.Style == renderer.StyleFolders {
		for _, folder := range folders {
			if folder.IsRoot() {
				continue
			}
			files = append(files, renderedFile{
				path:    opts.FolderIndexPath(folder.RelativePath),
				content: []byte(renderer.RenderFolderIndex(folder, opts)),
			})
		}
	}

	loc := Locator{BaseURL: cfg.BaseURL, SubRoot: cfg.SubRoot}
	var sitemapURL string
	switch cfg.SitemapMode {
	case SitemapSplit:
		locs := make([]string, 0, len(folders))
		for _, folder := range folders {
			content, err := GenerateFolderSitemap(folder, loc)
			if err != nil {
				return nil, fmt.Errorf("render sitemap for %q: %w", folder.RelativePath, err)
			}
			p := path.Join(sitepath.Normalize(cfg.SitemapDir), fileNames[folder.RelativePath]+".xml")
			files = append(files, renderedFile{path: p, content: content})
			locs = append(locs, loc.URL(p))
		}
		content, err := GenerateSitemapIndex(locs)
		if err != nil {
			return nil, err
		}
		files = append(files, renderedFile{path: cfg.SitemapIndexName, content: content})
		sitemapURL = loc.URL(cfg.SitemapIndexName)
	default:
		content, err := GenerateSitemap(root, loc)
		if err != nil {
			return nil, err
		}
		files = append(files, renderedFile{path: cfg.SitemapName, content: content})
		sitemapURL = loc.URL(cfg.SitemapName)
	}

	files = append(files, renderedFile{path: cfg.RobotsName, content: []byte(GenerateRobotsText(sitemapURL))})
	return files, nil
}

func checkUnique(files []renderedFile) error {
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, dup := seen[f.path]; dup {
			return fmt.Errorf("output %s would be written twice; check the configured output names", f.path)
		}
		seen[f.path] = struct{}{}
	}
	return nil
}

// filterChanged keeps changed paths that name pages of the scanned tree and
// rewrites them relative to the output root.
func filterChanged(files []string, root *model.FolderNode, cfg Config) model.ChangedPages {
	pages := root.PageSet()
	out := model.ChangedPages{}
	for _, f := range files {
		f = sitepath.Normalize(f)
		if !sitepath.HasExtension(f, cfg.PageExtension) {
			continue
		}
		rel := f
		if cfg.SubRoot != "" {
			var ok bool
			rel, ok = strings.CutPrefix(f, cfg.SubRoot+"/")
			if !ok {
				continue
			}
		}
		if _, ok := pages[rel]; !ok {
			continue
		}
		out = append(out, sitepath.Join(cfg.SubRoot, rel))
	}
	return out
}

// generatedSkipper keeps the run's own outputs out of the scanned tree.
func generatedSkipper(cfg Config) func(rel string, isDir bool) bool {
	fixed := map[string]struct{}{
		cfg.Index.IndexName: {},
		cfg.SitemapName:     {},
		cfg.RobotsName:      {},
	}
	if cfg.writesRecent() {
		fixed[cfg.Index.RecentName] = struct{}{}
	}
	if cfg.SitemapMode == SitemapSplit {
		fixed[cfg.SitemapIndexName] = struct{}{}
	}
	folderStyle := cfg.Index.Style == renderer.StyleFolders

	return func(rel string, isDir bool) bool {
		outRel := sitepath.Join(cfg.SubRoot, rel)
		if isDir {
			if cfg.SitemapMode == SitemapSplit && outRel == sitepath.Normalize(cfg.SitemapDir) {
				return true
			}
			return folderStyle && cfg.Index.FolderLayout == renderer.LayoutSide && outRel == sitepath.Normalize(cfg.Index.FolderDir)
		}
		if _, ok := fixed[outRel]; ok {
			return true
		}
		return folderStyle && cfg.Index.FolderLayout == renderer.LayoutColocated &&
			strings.Contains(rel, "/") && path.Base(rel) == cfg.Index.FolderIndexName
	}
}

func writeFileAtomic(target string, content []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file %s: %w", tmpName, err)
	}
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	cleanup = false
	return nil
}
