package renderer

import (
	"fmt"
	"path"
	"strings"

	"github.com/benedict2310/siteindex/pkg/model"
	"github.com/benedict2310/siteindex/pkg/sitepath"
)

// Style selects how the main index presents the folder tree.
type Style string

const (
	// StyleFlat renders every folder expanded inline.
	StyleFlat Style = "flat"
	// StyleNested renders the root inline and every subfolder inside a
	// closed <details> element.
	StyleNested Style = "nested"
	// StyleFolders renders one index page per folder.
	StyleFolders Style = "folders"
)

// FolderLayout selects where per-folder index pages are stored.
type FolderLayout string

const (
	// LayoutColocated stores each folder's index inside the folder.
	LayoutColocated FolderLayout = "colocated"
	// LayoutSide stores every folder index in one side directory.
	LayoutSide FolderLayout = "side"
)

const (
	DefaultTitle           = "Site index"
	DefaultIndexName       = "index.html"
	DefaultRecentName      = "recent.html"
	DefaultFolderDir       = "indexes"
	DefaultFolderIndexName = "index.html"

	noChangesPlaceholder = "None in latest commit"
)

// ParseStyle accepts "", "flat", "nested" and "folders".
func ParseStyle(v string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(v))) {
	case "", StyleFlat:
		return StyleFlat, nil
	case StyleNested:
		return StyleNested, nil
	case StyleFolders:
		return StyleFolders, nil
	default:
		return "", fmt.Errorf("invalid index style %q (expected flat, nested, or folders)", v)
	}
}

// ParseFolderLayout accepts "", "colocated" and "side".
func ParseFolderLayout(v string) (FolderLayout, error) {
	switch FolderLayout(strings.ToLower(strings.TrimSpace(v))) {
	case "", LayoutColocated:
		return LayoutColocated, nil
	case LayoutSide:
		return LayoutSide, nil
	default:
		return "", fmt.Errorf("invalid folder layout %q (expected colocated or side)", v)
	}
}

// Options configures every HTML document the renderer produces. All file
// locations are slash-separated and relative to the output root.
type Options struct {
	Title   string
	Style   Style
	SubRoot string

	IndexName  string
	RecentName string
	// Recent makes flat and nested indexes link to the recently changed
	// page. Folder index pages always link to it.
	Recent bool

	FolderLayout    FolderLayout
	FolderDir       string
	FolderIndexName string
	// FolderNames maps a folder's relative path to the base name (without
	// extension) of its side-layout index file.
	FolderNames map[string]string
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Title) == "" {
		o.Title = DefaultTitle
	}
	if o.Style == "" {
		o.Style = StyleFlat
	}
	if o.IndexName == "" {
		o.IndexName = DefaultIndexName
	}
	if o.RecentName == "" {
		o.RecentName = DefaultRecentName
	}
	if o.FolderLayout == "" {
		o.FolderLayout = LayoutColocated
	}
	if o.FolderDir == "" {
		o.FolderDir = DefaultFolderDir
	}
	if o.FolderIndexName == "" {
		o.FolderIndexName = DefaultFolderIndexName
	}
	o.SubRoot = sitepath.Normalize(o.SubRoot)
	return o
}

// FolderIndexPath returns where the index page of the folder at rel is
// written. The root folder's index is the main index.
func (o Options) FolderIndexPath(rel string) string {
	o = o.withDefaults()
	rel = sitepath.Normalize(rel)
	if rel == "" {
		return o.IndexName
	}
	if o.FolderLayout == LayoutSide {
		name, ok := o.FolderNames[rel]
		if !ok {
			name = strings.ReplaceAll(rel, "/", "__")
		}
		return path.Join(sitepath.Normalize(o.FolderDir), name+".html")
	}
	return sitepath.Join(o.SubRoot, rel) + "/" + o.FolderIndexName
}

// RenderIndex renders the main index document. Flat and nested styles list
// the changed pages followed by the whole tree; the folders style renders
// the root folder's own index page.
func RenderIndex(changed model.ChangedPages, root *model.FolderNode, opts Options) string {
	opts = opts.withDefaults()
	if root == nil {
		root = &model.FolderNode{}
	}
	if opts.Style == StyleFolders {
		return RenderFolderIndex(root, opts)
	}

	w := newDocWriter()
	w.open(opts.Title)
	w.line(1, "<h1>%s</h1>", escape(opts.Title))
	if opts.Recent {
		w.line(1, `<p class="recent-link"><a href="%s">Recently changed pages</a></p>`, href(opts.IndexName, opts.RecentName))
	}

	w.line(1, `<section id="changed">`)
	w.line(1, "<h2>Changed in latest commit</h2>")
	writeChangedList(w, opts.IndexName, changed)
	w.line(1, "</section>")

	w.line(1, `<section id="pages">`)
	w.line(1, "<h2>All pages</h2>")
	switch opts.Style {
	case StyleNested:
		writeNestedFolder(w, 1, root, opts)
	default:
		writeFlatFolder(w, 1, root, opts)
	}
	w.line(1, "</section>")
	w.close()
	return w.String()
}

func writeChangedList(w *docWriter, from string, changed model.ChangedPages) {
	if len(changed) == 0 {
		w.line(1, `<p class="placeholder">%s</p>`, noChangesPlaceholder)
		return
	}
	w.line(1, `<ul class="changed">`)
	for _, p := range changed {
		w.line(2, `<li><a href="%s">%s</a></li>`, href(from, p), escape(p))
	}
	w.line(1, "</ul>")
}

func writeFlatFolder(w *docWriter, indent int, folder *model.FolderNode, opts Options) {
	if len(folder.Subfolders) == 0 && len(folder.Pages) == 0 {
		return
	}
	w.line(indent, `<ul class="tree">`)
	for _, sub := range folder.Subfolders {
		w.line(indent+1, `<li class="folder"><span class="folder-name">%s</span>`, escape(folderLabel(sub, opts)))
		writeFlatFolder(w, indent+2, sub, opts)
		w.line(indent+1, "</li>")
	}
	writePageItems(w, indent+1, folder, opts)
	w.line(indent, "</ul>")
}

func writeNestedFolder(w *docWriter, indent int, folder *model.FolderNode, opts Options) {
	if len(folder.Subfolders) == 0 && len(folder.Pages) == 0 {
		return
	}
	w.line(indent, `<ul class="tree">`)
	for _, sub := range folder.Subfolders {
		w.line(indent+1, `<li class="folder"><details>`)
		w.line(indent+2, "<summary>%s</summary>", escape(folderLabel(sub, opts)))
		writeNestedFolder(w, indent+2, sub, opts)
		w.line(indent+1, "</details></li>")
	}
	writePageItems(w, indent+1, folder, opts)
	w.line(indent, "</ul>")
}

func writePageItems(w *docWriter, indent int, folder *model.FolderNode, opts Options) {
	for _, page := range folder.Pages {
		target := sitepath.Join(opts.SubRoot, page.RelativePath)
		w.line(indent, `<li class="page"><a href="%s">%s</a></li>`, href(opts.IndexName, target), escape(target))
	}
}

func folderLabel(folder *model.FolderNode, opts Options) string {
	return sitepath.Join(opts.SubRoot, folder.RelativePath) + "/"
}

// href builds the encoded link from the document at from to the site path to.
func href(from, to string) string {
	return sitepath.Encode(sitepath.RelativeHref(from, to))
}
