// Package sitepath normalizes and encodes slash-separated paths relative to
// the site root.
package sitepath

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// Normalize converts a host path to forward slashes and strips leading "./"
// segments and leading or trailing separators. Whitespace is part of a name
// and is kept.
func Normalize(p string) string {
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// Join prefixes rel with the sub-root label. An empty sub-root returns rel.
func Join(subRoot, rel string) string {
	subRoot = Normalize(subRoot)
	rel = Normalize(rel)
	switch {
	case subRoot == "":
		return rel
	case rel == "":
		return subRoot
	default:
		return subRoot + "/" + rel
	}
}

// Encode percent-encodes every byte outside the unreserved URI set
// (ALPHA, DIGIT, "-", ".", "_", "~") in each segment and keeps "/" between
// segments.
func Encode(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = encodeSegment(seg)
	}
	return strings.Join(segments, "/")
}

// Decode reverses Encode.
func Decode(p string) (string, error) {
	return url.PathUnescape(p)
}

func encodeSegment(seg string) string {
	n := 0
	for i := 0; i < len(seg); i++ {
		if !unreserved(seg[i]) {
			n++
		}
	}
	if n == 0 {
		return seg
	}
	var b strings.Builder
	b.Grow(len(seg) + 2*n)
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

// RelativeHref returns the unencoded path that a document stored at from
// must use to reach to. Both arguments are site-root relative file paths.
func RelativeHref(from, to string) string {
	fromDir := path.Dir(Normalize(from))
	if fromDir == "." {
		fromDir = ""
	}
	to = Normalize(to)

	var fromParts, toParts []string
	if fromDir != "" {
		fromParts = strings.Split(fromDir, "/")
	}
	if to != "" {
		toParts = strings.Split(to, "/")
	}

	common := 0
	for common < len(fromParts) && common < len(toParts)-1 && fromParts[common] == toParts[common] {
		common++
	}

	parts := make([]string, 0, len(fromParts)-common+len(toParts)-common)
	for i := common; i < len(fromParts); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[common:]...)
	return strings.Join(parts, "/")
}

// IsHidden reports whether a single path segment is a hidden entry.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// HasExtension reports whether name ends with ext, ignoring case.
func HasExtension(name, ext string) bool {
	if ext == "" || len(name) < len(ext) {
		return false
	}
	return strings.EqualFold(name[len(name)-len(ext):], ext)
}
