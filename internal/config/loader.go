package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envFiles are read from the site root in order; earlier files win and the
// process environment wins over both.
var envFiles = []string{".env", ".env.local"}

// Overrides carries command-line values. Empty fields leave the loaded
// value untouched.
type Overrides struct {
	BaseURL     string
	SubRoot     string
	Title       string
	Style       string
	Layout      string
	SitemapMode string
	Collation   string
	Recent      *bool
	Exclude     []string
}

// DefaultPath returns the config path inside the site root.
func DefaultPath(root string) string {
	return filepath.Join(root, DefaultFileName)
}

// resolvePath picks the config path from explicit input, the env var, or the
// default. The bool reports whether the file must exist.
func resolvePath(explicit, root string, lookup func(string) (string, bool)) (string, bool) {
	if path := strings.TrimSpace(explicit); path != "" {
		return path, true
	}
	if path, ok := lookup(EnvConfigPath); ok && strings.TrimSpace(path) != "" {
		return strings.TrimSpace(path), true
	}
	return DefaultPath(root), false
}

// Load reads the site root's env files and config file, applies environment
// and command-line overrides, and validates the result. It returns the
// config path that was consulted.
func Load(explicitPath, root string, o Overrides) (Config, string, error) {
	dotenv, err := readEnvFiles(root)
	if err != nil {
		return Config{}, "", err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	path, required := resolvePath(explicitPath, root, lookup)
	cfg, err := readFile(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !required:
		cfg = Config{}
	case errors.Is(err, os.ErrNotExist):
		return Config{}, path, fmt.Errorf("config file not found at %s (create it with `siteindex init` or unset %s)", path, EnvConfigPath)
	default:
		return Config{}, path, err
	}

	if v, ok := lookup(EnvBaseURL); ok && strings.TrimSpace(v) != "" {
		cfg.BaseURL = v
	}
	if v, ok := lookup(EnvSubRoot); ok && strings.TrimSpace(v) != "" {
		cfg.SubRoot = v
	}
	o.Apply(&cfg)

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, path, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, path, nil
}

// Apply copies the non-empty overrides into cfg. Exclude patterns are
// appended.
func (o Overrides) Apply(cfg *Config) {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&cfg.BaseURL, o.BaseURL)
	set(&cfg.SubRoot, o.SubRoot)
	set(&cfg.Index.Title, o.Title)
	set(&cfg.Index.Style, o.Style)
	set(&cfg.Index.Layout, o.Layout)
	set(&cfg.Sitemap.Mode, o.SitemapMode)
	set(&cfg.Pages.Collation, o.Collation)
	if o.Recent != nil {
		cfg.Recent.Enabled = *o.Recent
	}
	cfg.Pages.Exclude = append(cfg.Pages.Exclude, o.Exclude...)
}

func readEnvFiles(root string) (map[string]string, error) {
	merged := map[string]string{}
	for _, name := range envFiles {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		for k, v := range values {
			if _, exists := merged[k]; !exists {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

func readFile(path string) (Config, error) {
	cfg := Config{}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// loadFromPath loads and validates config from the provided path.
func loadFromPath(path string) (Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file not found at %s", path)
		}
		return cfg, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to path, replacing the file atomically.
func Save(path string, cfg Config) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("config path is required")
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config file %s: %w", path, err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config file %s: %w", path, err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	perm := os.FileMode(0o644)
	info, err := os.Stat(path)
	if err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".siteindex-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp config %s: %w", tmpName, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config file %s: %w", path, err)
	}

	cleanup = false
	return nil
}
