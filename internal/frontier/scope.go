package frontier

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var (
	alnumRunRE     = regexp.MustCompile(`[A-Za-z0-9]+`)
	nonAlnumRE     = regexp.MustCompile(`[^A-Za-z0-9]+`)
	apostropheRE   = regexp.MustCompile("[’'`]+")
	whitespaceRE   = regexp.MustCompile(`\s+`)
	detailSuffixRE = regexp.MustCompile(`(?i)-\d+\.html$`)
)

// Scope restricts a crawl to one brand. It carries a casefolded
// comparison key for matching extracted brand names and a URL slug
// for pre-filtering detail links before they are even fetched.
//
// Hub pages are always traversable under a scope; only detail links
// are filtered by slug. Seed URLs bypass scope filtering entirely.
type Scope struct {
	// Brand is the brand name as given by the user.
	Brand string

	key  string
	slug string
}

// NewScope creates a Scope for the given brand name. Returns nil for
// a blank brand, meaning the crawl is unscoped.
func NewScope(brand string) *Scope {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil
	}
	return &Scope{
		Brand: brand,
		key:   FoldKey(brand),
		slug:  strings.ToLower(perfumeSlug(brand)),
	}
}

// MatchesBrand reports whether an extracted brand name belongs to the
// scoped brand, compared on collapsed-whitespace casefolded keys.
func (s *Scope) MatchesBrand(brand string) bool {
	return FoldKey(brand) == s.key
}

// AllowsDetail reports whether a detail page URL belongs to the
// scoped brand, judged by the brand segment of its path. URLs whose
// brand segment cannot be derived are allowed through; the extracted
// brand is checked again before persistence.
func (s *Scope) AllowsDetail(rawURL string) bool {
	segment := brandSegmentFromURL(rawURL)
	if segment == "" {
		return true
	}
	return strings.ToLower(perfumeSlug(DeSlug(segment))) == s.slug
}

// SeedURL returns the designer hub page used to seed a scoped crawl
// when no explicit seed URLs were given.
func (s *Scope) SeedURL() string {
	return fmt.Sprintf("https://%s/designers/%s.html", Domain, designerSlug(s.Brand))
}

// FoldKey normalizes a brand name for comparison: whitespace
// collapsed, then Unicode casefolded.
func FoldKey(s string) string {
	collapsed := strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
	return cases.Fold().String(collapsed)
}

// DeSlug converts a URL path segment back into readable text:
// percent-decoded ampersands and spaces, hyphens to spaces,
// whitespace collapsed.
func DeSlug(segment string) string {
	s := strings.ReplaceAll(segment, "%26", "&")
	s = strings.ReplaceAll(s, "%20", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// BrandAndNameFromURL derives the brand and fragrance name from a
// detail page path (/perfume/<brand>/<name>-<id>.html), de-slugged.
// Both are empty when the path does not have the detail shape.
func BrandAndNameFromURL(rawURL string) (brand, name string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	parts := splitPath(u.Path)
	if len(parts) < 3 || !strings.EqualFold(parts[0], "perfume") {
		return "", ""
	}
	return DeSlug(parts[1]), DeSlug(detailSuffixRE.ReplaceAllString(parts[2], ""))
}

// brandSegmentFromURL returns the raw brand segment of a detail page
// path, or empty when absent.
func brandSegmentFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := splitPath(u.Path)
	if len(parts) < 3 || !strings.EqualFold(parts[0], "perfume") {
		return ""
	}
	return parts[1]
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// designerSlug converts a brand name to the slug used in designer hub
// URLs: apostrophes dropped, "&" spelled out, every other non-alnum
// run collapsed to a hyphen.
func designerSlug(brand string) string {
	s := apostropheRE.ReplaceAllString(strings.TrimSpace(brand), "")
	s = strings.ReplaceAll(s, "&", "and")
	return strings.Trim(nonAlnumRE.ReplaceAllString(s, "-"), "-")
}

// perfumeSlug converts a brand name to the slug form used in detail
// page paths: alphanumeric runs joined by hyphens.
func perfumeSlug(brand string) string {
	return strings.Join(alnumRunRE.FindAllString(brand, -1), "-")
}
