package model

// PageEntry is one page file found under the scan root.
type PageEntry struct {
	Name         string `yaml:"name" json:"name"`
	RelativePath string `yaml:"path" json:"path"`
}

// FolderNode is one directory under the scan root. The root node has an
// empty RelativePath.
type FolderNode struct {
	Name         string        `yaml:"name" json:"name"`
	RelativePath string        `yaml:"path" json:"path"`
	Subfolders   []*FolderNode `yaml:"folders,omitempty" json:"folders,omitempty"`
	Pages        []PageEntry   `yaml:"pages,omitempty" json:"pages,omitempty"`
}

// ChangedPages lists root-relative page paths touched by the latest
// revision, in the order the version-control query returned them.
type ChangedPages []string

// IsRoot reports whether the node is the scan root.
func (f *FolderNode) IsRoot() bool {
	return f.RelativePath == ""
}

// Depth is the number of path segments between the scan root and the node.
func (f *FolderNode) Depth() int {
	if f.IsRoot() {
		return 0
	}
	depth := 1
	for i := 0; i < len(f.RelativePath); i++ {
		if f.RelativePath[i] == '/' {
			depth++
		}
	}
	return depth
}

// Walk visits the node and every descendant in pre-order, subfolders in
// their sorted order.
func (f *FolderNode) Walk(visit func(*FolderNode)) {
	if f == nil {
		return
	}
	visit(f)
	for _, sub := range f.Subfolders {
		sub.Walk(visit)
	}
}

// AllPages returns every page in the subtree: for each folder its
// subfolders' pages first, then its own pages.
func (f *FolderNode) AllPages() []PageEntry {
	if f == nil {
		return nil
	}
	var out []PageEntry
	for _, sub := range f.Subfolders {
		out = append(out, sub.AllPages()...)
	}
	return append(out, f.Pages...)
}

// Folders returns the node and all descendants in pre-order.
func (f *FolderNode) Folders() []*FolderNode {
	var out []*FolderNode
	f.Walk(func(n *FolderNode) {
		out = append(out, n)
	})
	return out
}

// PageSet indexes every page path in the subtree.
func (f *FolderNode) PageSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, page := range f.AllPages() {
		set[page.RelativePath] = struct{}{}
	}
	return set
}

// Counts returns the number of folders (including the node) and pages in
// the subtree.
func (f *FolderNode) Counts() (folders, pages int) {
	f.Walk(func(n *FolderNode) {
		folders++
		pages += len(n.Pages)
	})
	return folders, pages
}
