package cli

import (
	"context"
	"os"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/benedict2310/siteindex/internal/release"
	"github.com/benedict2310/siteindex/internal/watch"
	"github.com/benedict2310/siteindex/pkg/renderer"
	"github.com/benedict2310/siteindex/pkg/sitepath"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var flags siteFlags
	var noGit bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Generate once, then regenerate whenever pages change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalNotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := loadSite(cmd, opts, args, &flags)
			if err != nil {
				return err
			}
			return s.watch(ctx, debounce, !noGit)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noGit, "no-git", false, "Skip the version-control query; the changed list stays empty")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period after the last change before regenerating")

	return cmd
}

// watch runs an initial generation and then one more per burst of changes.
// A failed run is logged and the loop keeps going.
func (s *site) watch(ctx context.Context, debounce time.Duration, useGit bool) error {
	ignore := newOutputFilter(s.cfg.ReleaseConfig(s.root))

	run := func(ctx context.Context) {
		res, err := s.generate(ctx, false, useGit)
		if err != nil {
			s.logger.Error("generation failed", "root", s.root, "error", err)
			return
		}
		ignore.update(res)
	}
	run(ctx)
	if err := ctx.Err(); err != nil {
		return nil
	}

	s.logger.Info("watching for changes", "root", s.root)
	return watch.Run(ctx, s.root, watch.Options{
		Debounce: debounce,
		Ignore:   ignore.match,
		Logger:   s.logger,
	}, run)
}

// outputFilter recognizes events caused by the run's own writes.
type outputFilter struct {
	dirs  []string
	files map[string]struct{}
}

func newOutputFilter(cfg release.Config) *outputFilter {
	f := &outputFilter{files: map[string]struct{}{}}
	sitemapDir := cfg.SitemapDir
	if sitemapDir == "" {
		sitemapDir = release.DefaultSitemapDir
	}
	if cfg.SitemapMode == release.SitemapSplit {
		f.dirs = append(f.dirs, sitepath.Normalize(sitemapDir))
	}
	if cfg.Index.Style == renderer.StyleFolders && cfg.Index.FolderLayout == renderer.LayoutSide {
		folderDir := cfg.Index.FolderDir
		if folderDir == "" {
			folderDir = renderer.DefaultFolderDir
		}
		f.dirs = append(f.dirs, sitepath.Normalize(folderDir))
	}
	return f
}

func (f *outputFilter) update(res release.Result) {
	files := make(map[string]struct{}, len(res.Outputs))
	for _, o := range res.Outputs {
		files[o.Path] = struct{}{}
	}
	f.files = files
}

func (f *outputFilter) match(rel string) bool {
	rel = path.Clean(rel)
	if _, ok := f.files[rel]; ok {
		return true
	}
	for _, dir := range f.dirs {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}
