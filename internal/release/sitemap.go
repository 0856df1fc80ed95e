package release

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/benedict2310/siteindex/pkg/model"
	"github.com/benedict2310/siteindex/pkg/sitepath"
)

const sitemapXMLNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	XMLNS    string       `xml:"xmlns,attr"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

// Locator turns site paths into sitemap locations. With a base URL every
// location is absolute; without one it is root-absolute ("/a.html").
type Locator struct {
	BaseURL string
	SubRoot string
}

// URL locates a path relative to the output root.
func (l Locator) URL(sitePath string) string {
	encoded := sitepath.Encode(sitepath.Normalize(sitePath))
	base := strings.TrimRight(strings.TrimSpace(l.BaseURL), "/")
	if base == "" {
		return "/" + encoded
	}
	return base + "/" + encoded
}

// Page locates a page given its path relative to the scanned directory.
func (l Locator) Page(rel string) string {
	return l.URL(sitepath.Join(l.SubRoot, rel))
}

// GenerateSitemap lists every page of the tree in traversal order.
func GenerateSitemap(root *model.FolderNode, loc Locator) ([]byte, error) {
	return GenerateFolderSitemap(root, loc)
}

// GenerateFolderSitemap lists the folder's own and descendant pages.
func GenerateFolderSitemap(folder *model.FolderNode, loc Locator) ([]byte, error) {
	pages := folder.AllPages()
	urls := make([]sitemapURL, 0, len(pages))
	for _, page := range pages {
		urls = append(urls, sitemapURL{Loc: loc.Page(page.RelativePath)})
	}
	return marshalSitemapXML(sitemapURLSet{XMLNS: sitemapXMLNS, URLs: urls}, "sitemap")
}

// GenerateSitemapIndex references each sitemap location in the given order.
func GenerateSitemapIndex(locs []string) ([]byte, error) {
	refs := make([]sitemapRef, 0, len(locs))
	for _, loc := range locs {
		refs = append(refs, sitemapRef{Loc: loc})
	}
	return marshalSitemapXML(sitemapIndex{XMLNS: sitemapXMLNS, Sitemaps: refs}, "sitemap index")
}

func marshalSitemapXML(doc any, what string) ([]byte, error) {
	payload, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s xml: %w", what, err)
	}
	out := append([]byte(xml.Header), payload...)
	out = append(out, '\n')
	return out, nil
}
