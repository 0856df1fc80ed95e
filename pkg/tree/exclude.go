package tree

import (
	"path"
	"strings"
)

// shouldExclude matches rel against exclusion patterns. A pattern ending in
// "/" prunes any directory whose segment matches it; a pattern containing
// "/" is matched against the full relative path; any other pattern is
// matched against the base name.
func shouldExclude(rel string, isDir bool, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.HasSuffix(pattern, "/") {
			if !isDir {
				continue
			}
			dirPattern := strings.TrimSuffix(pattern, "/")
			if strings.Contains(dirPattern, "/") {
				if matched, _ := path.Match(dirPattern, rel); matched {
					return true
				}
				continue
			}
			if matched, _ := path.Match(dirPattern, path.Base(rel)); matched {
				return true
			}
			continue
		}
		if strings.Contains(pattern, "/") {
			if matched, _ := path.Match(pattern, rel); matched {
				return true
			}
			continue
		}
		if matched, _ := path.Match(pattern, path.Base(rel)); matched {
			return true
		}
	}
	return false
}
