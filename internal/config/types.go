package config

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/benedict2310/siteindex/internal/names"
	"github.com/benedict2310/siteindex/internal/release"
	"github.com/benedict2310/siteindex/pkg/renderer"
	"github.com/benedict2310/siteindex/pkg/sitepath"
	"github.com/benedict2310/siteindex/pkg/tree"
)

const (
	EnvConfigPath = "SITEINDEX_CONFIG"
	EnvBaseURL    = "SITEINDEX_BASE_URL"
	EnvSubRoot    = "SITEINDEX_SUB_ROOT"

	DefaultFileName   = ".siteindex.yaml"
	DefaultAPIVersion = "siteindex/v1"
)

// Config is the .siteindex.yaml file structure.
type Config struct {
	APIVersion string        `yaml:"apiVersion,omitempty"`
	BaseURL    string        `yaml:"baseURL,omitempty"`
	SubRoot    string        `yaml:"subRoot,omitempty"`
	Pages      PagesConfig   `yaml:"pages"`
	Index      IndexConfig   `yaml:"index"`
	Recent     RecentConfig  `yaml:"recent"`
	Sitemap    SitemapConfig `yaml:"sitemap"`
	Robots     RobotsConfig  `yaml:"robots"`
}

// PagesConfig selects which files are pages and how they sort.
type PagesConfig struct {
	Extension string   `yaml:"extension,omitempty"`
	Collation string   `yaml:"collation,omitempty"`
	Exclude   []string `yaml:"exclude,omitempty"`
}

type IndexConfig struct {
	Title           string `yaml:"title,omitempty"`
	Style           string `yaml:"style,omitempty"`
	File            string `yaml:"file,omitempty"`
	Layout          string `yaml:"layout,omitempty"`
	FolderDir       string `yaml:"folderDir,omitempty"`
	FolderIndexFile string `yaml:"folderIndexFile,omitempty"`
}

type RecentConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file,omitempty"`
}

type SitemapConfig struct {
	Mode      string `yaml:"mode,omitempty"`
	File      string `yaml:"file,omitempty"`
	Dir       string `yaml:"dir,omitempty"`
	IndexFile string `yaml:"indexFile,omitempty"`
}

type RobotsConfig struct {
	File string `yaml:"file,omitempty"`
}

// Default returns a config with every default filled in.
func Default() Config {
	cfg := Config{}
	cfg.normalize()
	return cfg
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.APIVersion) == "" {
		c.APIVersion = DefaultAPIVersion
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.SubRoot = normalizeDir(c.SubRoot)

	setDefault(&c.Pages.Extension, tree.DefaultPageExtension)
	if !strings.HasPrefix(c.Pages.Extension, ".") {
		c.Pages.Extension = "." + c.Pages.Extension
	}
	c.Pages.Collation = lowerDefault(c.Pages.Collation, string(tree.CollationLocale))

	setDefault(&c.Index.Title, renderer.DefaultTitle)
	c.Index.Style = lowerDefault(c.Index.Style, string(renderer.StyleFlat))
	setDefault(&c.Index.File, renderer.DefaultIndexName)
	c.Index.Layout = lowerDefault(c.Index.Layout, string(renderer.LayoutColocated))
	setDefault(&c.Index.FolderDir, renderer.DefaultFolderDir)
	c.Index.FolderDir = normalizeDir(c.Index.FolderDir)
	setDefault(&c.Index.FolderIndexFile, renderer.DefaultFolderIndexName)

	setDefault(&c.Recent.File, renderer.DefaultRecentName)

	c.Sitemap.Mode = lowerDefault(c.Sitemap.Mode, string(release.SitemapSingle))
	setDefault(&c.Sitemap.File, release.DefaultSitemapName)
	setDefault(&c.Sitemap.Dir, release.DefaultSitemapDir)
	c.Sitemap.Dir = normalizeDir(c.Sitemap.Dir)
	setDefault(&c.Sitemap.IndexFile, release.DefaultSitemapIndexName)

	setDefault(&c.Robots.File, release.DefaultRobotsName)
}

// normalizeDir slash-normalizes a relative directory and leaves absolute
// ones recognizable for Validate.
func normalizeDir(v string) string {
	v = filepath.ToSlash(strings.TrimSpace(v))
	if strings.HasPrefix(v, "/") || filepath.IsAbs(v) {
		return v
	}
	return sitepath.Normalize(v)
}

func setDefault(v *string, def string) {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		*v = def
	}
}

func lowerDefault(v, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}

// Validate checks config invariants that must hold for a run.
func (c Config) Validate() error {
	if c.BaseURL != "" {
		if err := validateBaseURL(c.BaseURL); err != nil {
			return err
		}
	}
	if err := validateRelativeDir("subRoot", c.SubRoot); err != nil {
		return err
	}
	if _, err := tree.ParseCollation(c.Pages.Collation); err != nil {
		return fmt.Errorf("pages.collation: %w", err)
	}
	if len(c.Pages.Extension) < 2 || strings.ContainsAny(c.Pages.Extension, `/\`) {
		return fmt.Errorf("pages.extension %q is not a file extension", c.Pages.Extension)
	}
	for i, pattern := range c.Pages.Exclude {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("pages.exclude[%d] %q: %w", i, pattern, err)
		}
	}
	if _, err := renderer.ParseStyle(c.Index.Style); err != nil {
		return fmt.Errorf("index.style: %w", err)
	}
	if _, err := renderer.ParseFolderLayout(c.Index.Layout); err != nil {
		return fmt.Errorf("index.layout: %w", err)
	}
	if _, err := release.ParseSitemapMode(c.Sitemap.Mode); err != nil {
		return fmt.Errorf("sitemap.mode: %w", err)
	}
	if err := validateRelativeDir("index.folderDir", c.Index.FolderDir); err != nil {
		return err
	}
	if err := validateRelativeDir("sitemap.dir", c.Sitemap.Dir); err != nil {
		return err
	}

	files := []struct {
		field string
		value string
	}{
		{"index.file", c.Index.File},
		{"index.folderIndexFile", c.Index.FolderIndexFile},
		{"recent.file", c.Recent.File},
		{"sitemap.file", c.Sitemap.File},
		{"sitemap.indexFile", c.Sitemap.IndexFile},
		{"robots.file", c.Robots.File},
	}
	seen := make(map[string]string, len(files))
	for _, f := range files {
		if err := names.ValidateFileName(f.value); err != nil {
			return fmt.Errorf("%s: %w", f.field, err)
		}
		if f.field == "index.folderIndexFile" {
			continue
		}
		if prev, dup := seen[f.value]; dup {
			return fmt.Errorf("%s and %s both name %q", prev, f.field, f.value)
		}
		seen[f.value] = f.field
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("baseURL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("baseURL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("baseURL %q must include a host", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("baseURL %q must not carry a query or fragment", raw)
	}
	return nil
}

func validateRelativeDir(field, value string) error {
	if value == "" {
		return nil
	}
	if path.IsAbs(value) || filepath.IsAbs(value) || (len(value) > 1 && value[1] == ':') {
		return fmt.Errorf("%s %q must be relative", field, value)
	}
	for _, seg := range strings.Split(value, "/") {
		if seg == ".." {
			return fmt.Errorf("%s %q must not contain ..", field, value)
		}
	}
	return nil
}

// ReleaseConfig converts a validated config into the run description for
// the site rooted at root.
func (c Config) ReleaseConfig(root string) release.Config {
	collation, _ := tree.ParseCollation(c.Pages.Collation)
	style, _ := renderer.ParseStyle(c.Index.Style)
	layout, _ := renderer.ParseFolderLayout(c.Index.Layout)
	mode, _ := release.ParseSitemapMode(c.Sitemap.Mode)

	return release.Config{
		Root:          root,
		SubRoot:       c.SubRoot,
		BaseURL:       c.BaseURL,
		PageExtension: c.Pages.Extension,
		Collation:     collation,
		Exclude:       append([]string(nil), c.Pages.Exclude...),
		Index: renderer.Options{
			Title:           c.Index.Title,
			Style:           style,
			SubRoot:         c.SubRoot,
			IndexName:       c.Index.File,
			RecentName:      c.Recent.File,
			Recent:          c.Recent.Enabled,
			FolderLayout:    layout,
			FolderDir:       c.Index.FolderDir,
			FolderIndexName: c.Index.FolderIndexFile,
		},
		SitemapMode:      mode,
		SitemapName:      c.Sitemap.File,
		SitemapDir:       c.Sitemap.Dir,
		SitemapIndexName: c.Sitemap.IndexFile,
		RobotsName:       c.Robots.File,
	}
}
