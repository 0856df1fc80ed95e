package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benedict2310/siteindex/internal/config"
	"github.com/benedict2310/siteindex/internal/git"
	"github.com/benedict2310/siteindex/internal/release"
)

// siteFlags are the config overrides shared by every command that scans a
// site.
type siteFlags struct {
	baseURL     string
	subRoot     string
	title       string
	style       string
	layout      string
	sitemapMode string
	collation   string
	recent      bool
	exclude     []string
}

func (f *siteFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.baseURL, "base-url", "", "Absolute site URL used for sitemap and robots locations (env SITEINDEX_BASE_URL)")
	fs.StringVar(&f.subRoot, "sub-root", "", "Subdirectory holding the pages, relative to the site directory (env SITEINDEX_SUB_ROOT)")
	fs.StringVar(&f.title, "title", "", "Index page title")
	fs.StringVar(&f.style, "style", "", "Index style: flat, nested, or folders")
	fs.StringVar(&f.layout, "layout", "", "Folder index layout for the folders style: colocated or side")
	fs.StringVar(&f.sitemapMode, "sitemap", "", "Sitemap mode: single or split")
	fs.StringVar(&f.collation, "collation", "", "Name ordering: locale or bytewise")
	fs.BoolVar(&f.recent, "recent", false, "Also write the recently changed page")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Glob patterns to leave out of the tree (repeatable)")
}

func (f *siteFlags) overrides(cmd *cobra.Command) config.Overrides {
	o := config.Overrides{
		BaseURL:     f.baseURL,
		SubRoot:     f.subRoot,
		Title:       f.title,
		Style:       f.style,
		Layout:      f.layout,
		SitemapMode: f.sitemapMode,
		Collation:   f.collation,
		Exclude:     f.exclude,
	}
	if cmd.Flags().Changed("recent") {
		recent := f.recent
		o.Recent = &recent
	}
	return o
}

// site is a loaded site directory ready to scan or generate.
type site struct {
	root   string
	cfg    config.Config
	path   string
	logger *slog.Logger
}

func loadSite(cmd *cobra.Command, opts *rootOptions, args []string, flags *siteFlags) (*site, error) {
	logger, err := NewLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
	if err != nil {
		return nil, err
	}
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve site directory %s: %w", dir, err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, exitCodeError(exitUnreadable, fmt.Errorf("stat site directory %s: %w", root, err))
	} else if !info.IsDir() {
		return nil, fmt.Errorf("site path is not a directory: %s", root)
	}

	var overrides config.Overrides
	if flags != nil {
		overrides = flags.overrides(cmd)
	}
	cfg, path, err := config.Load(opts.configPath, root, overrides)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", path, "root", root, "style", cfg.Index.Style, "sitemap", cfg.Sitemap.Mode)
	return &site{root: root, cfg: cfg, path: path, logger: logger}, nil
}

func (s *site) generate(ctx context.Context, dryRun, useGit bool) (release.Result, error) {
	rc := s.cfg.ReleaseConfig(s.root)
	rc.DryRun = dryRun
	var changes git.ChangeSource
	if useGit {
		changes = git.NewClient(s.root)
	}
	res, err := release.NewBuilder(changes, s.logger).Generate(ctx, rc)
	for _, line := range res.BuildLog {
		s.logger.Debug("build log", "line", line)
	}
	if err != nil {
		return res, classify(err)
	}
	return res, nil
}
