// Package names derives file names for generated per-folder documents.
package names

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const (
	// RootName names the document generated for the scan root.
	RootName = "root"
	// Separator replaces "/" between folder path segments.
	Separator = "__"

	MaxFileNameLength = 128
)

var fileNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9._-]*$`)

// FolderFileName maps a folder's relative path to a base file name without
// extension. Distinct paths can map to the same name; FolderFileNames
// resolves those collisions.
func FolderFileName(rel string) string {
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return RootName
	}
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		segments[i] = strings.Join(strings.FieldsFunc(seg, unicode.IsSpace), "-")
	}
	return strings.Join(segments, Separator)
}

// FolderFileNames returns a collision-free base name for every folder path.
// Names that would be shared by more than one path get a suffix derived from
// the xxhash of the raw path, so the mapping only depends on the set of
// folders and is stable across runs.
func FolderFileNames(rels []string) map[string]string {
	groups := make(map[string][]string, len(rels))
	for _, rel := range rels {
		rel = strings.Trim(rel, "/")
		name := FolderFileName(rel)
		groups[name] = append(groups[name], rel)
	}

	out := make(map[string]string, len(rels))
	taken := make(map[string]struct{}, len(rels))
	for name, members := range groups {
		if len(members) == 1 {
			out[members[0]] = name
			taken[name] = struct{}{}
		}
	}

	keys := make([]string, 0, len(groups))
	for name, members := range groups {
		if len(members) > 1 {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	for _, name := range keys {
		members := groups[name]
		sort.Strings(members)
		for _, rel := range members {
			candidate := fmt.Sprintf("%s-%08x", name, uint32(xxhash.Sum64String(rel)))
			for attempt := 1; ; attempt++ {
				if _, exists := taken[candidate]; !exists {
					break
				}
				candidate = fmt.Sprintf("%s-%08x-%d", name, uint32(xxhash.Sum64String(rel)), attempt)
			}
			out[rel] = candidate
			taken[candidate] = struct{}{}
		}
	}
	return out
}

// ValidateFileName checks a configured output file or directory name.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > MaxFileNameLength {
		return fmt.Errorf("name must be at most %d characters", MaxFileNameLength)
	}
	if !fileNamePattern.MatchString(name) {
		return fmt.Errorf("name %q must match %q", name, fileNamePattern.String())
	}
	return nil
}
