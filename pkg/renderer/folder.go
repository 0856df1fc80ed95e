package renderer

import (
	"path"

	"github.com/benedict2310/siteindex/pkg/model"
	"github.com/benedict2310/siteindex/pkg/sitepath"
)

// RenderFolderIndex renders the index page of one folder: a link back to
// the parent folder's index (except at the root), a link to the recently
// changed page, the immediate subfolders linking to their own index pages,
// and the immediate pages. Links are relative to the page's own location.
func RenderFolderIndex(folder *model.FolderNode, opts Options) string {
	opts = opts.withDefaults()
	if folder == nil {
		folder = &model.FolderNode{}
	}
	self := opts.FolderIndexPath(folder.RelativePath)

	title := opts.Title
	if !folder.IsRoot() {
		title = "Index of " + folderLabel(folder, opts)
	}

	w := newDocWriter()
	w.open(title)
	w.line(1, "<h1>%s</h1>", escape(title))
	w.line(1, `<nav>`)
	if !folder.IsRoot() {
		parent := path.Dir(folder.RelativePath)
		if parent == "." {
			parent = ""
		}
		w.line(2, `<a class="parent" href="%s">Parent folder</a>`, href(self, opts.FolderIndexPath(parent)))
	}
	w.line(2, `<a class="recent" href="%s">Recently changed pages</a>`, href(self, opts.RecentName))
	w.line(1, `</nav>`)

	if len(folder.Subfolders) == 0 && len(folder.Pages) == 0 {
		w.line(1, `<p class="placeholder">No pages in this folder</p>`)
		w.close()
		return w.String()
	}

	w.line(1, `<ul class="folder-index">`)
	for _, sub := range folder.Subfolders {
		w.line(2, `<li class="folder"><a href="%s">%s/</a></li>`, href(self, opts.FolderIndexPath(sub.RelativePath)), escape(sub.Name))
	}
	for _, page := range folder.Pages {
		target := sitepath.Join(opts.SubRoot, page.RelativePath)
		w.line(2, `<li class="page"><a href="%s">%s</a></li>`, href(self, target), escape(page.Name))
	}
	w.line(1, "</ul>")
	w.close()
	return w.String()
}

// RenderRecent renders the recently changed page with a link back to the
// main index.
func RenderRecent(changed model.ChangedPages, opts Options) string {
	opts = opts.withDefaults()
	title := "Recently changed pages"

	w := newDocWriter()
	w.open(title)
	w.line(1, "<h1>%s</h1>", escape(title))
	w.line(1, `<p><a class="index" href="%s">Back to index</a></p>`, href(opts.RecentName, opts.IndexName))
	writeChangedList(w, opts.RecentName, changed)
	w.close()
	return w.String()
}
