package release

import "strings"

// GenerateRobotsText allows all crawling and points crawlers at the sitemap
// or sitemap index location.
func GenerateRobotsText(sitemapURL string) string {
	lines := []string{
		"User-agent: *",
		"Allow: /",
	}
	if sitemapURL = strings.TrimSpace(sitemapURL); sitemapURL != "" {
		lines = append(lines, "Sitemap: "+sitemapURL)
	}
	return strings.Join(lines, "\n") + "\n"
}
