package frontier

import (
	"net/url"
	"regexp"
	"strings"
)

// Domain is the canonical host of the target site. Bare-domain links
// are rewritten to this form during normalization.
const Domain = "www.fragrantica.com"

// detailPathRE matches fragrance detail pages:
// /perfume/<Brand>/<Name>-<id>.html
var detailPathRE = regexp.MustCompile(`(?i)^/perfume/[^/]+/[^/]+-\d+\.html$`)

// hubPathRE matches designer hub pages, which list a brand's
// fragrances. Hub pages are traversed for links but never persisted.
var hubPathRE = regexp.MustCompile(`(?i)^/designers/[^/]+\.html$`)

// denyPrefixes are path prefixes that are never worth fetching:
// forums, search, editorial content, and other rate-limit-sensitive
// sections.
var denyPrefixes = []string{
	"/board/",
	"/search/",
	"/news/",
	"/articles/",
	"/perfumery/",
}

// assetExtensions are file extensions that mark a URL as a
// non-document asset.
var assetExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".css", ".js", ".json", ".xml",
}

// IsDetailURL reports whether the normalized URL is a fragrance
// detail page.
func IsDetailURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, Domain) && detailPathRE.MatchString(u.Path)
}

// IsHubURL reports whether the normalized URL is a designer hub page.
func IsHubURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, Domain) && hubPathRE.MatchString(u.Path)
}

// isDenied reports whether the path falls under a deny prefix.
func isDenied(path string) bool {
	for _, prefix := range denyPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isAsset reports whether the URL points at an obviously non-document
// asset, judged by extension.
func isAsset(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Normalize canonicalizes a URL for scope testing and deduplication:
// the scheme must be present, the bare domain is rewritten to the
// canonical www host, the host is lowercased, and the fragment is
// stripped. Returns false for unparsable or scheme-less URLs.
func Normalize(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return "", false
	}

	host := strings.ToLower(u.Host)
	if host == "fragrantica.com" || strings.HasPrefix(host, "fragrantica.com:") {
		host = Domain
	}
	u.Host = host
	u.Fragment = ""

	return u.String(), true
}
