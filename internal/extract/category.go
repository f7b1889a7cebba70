package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// categorySexRE matches the full description sentence, e.g.
	// "Orpheon by Diptyque is a Woody Chypre fragrance for women and men."
	categorySexRE = regexp.MustCompile(`(?i)is\s+an?\s+([^.]+?)\s+fragrance\s+for\s+([^.]+?)[.,]`)

	// sexOnlyRE matches the looser audience-only sentence,
	// "is a fragrance for women.".
	sexOnlyRE = regexp.MustCompile(`(?i)is\s+a\s+fragrance\s+for\s+(.+?)[.,]`)
)

// maxCategoryLen rejects grammatically broken over-long category
// matches that swallow surrounding prose.
const maxCategoryLen = 80

// CategoryAndSex extracts the fragrance category and target audience
// from the page's opening description sentence.
//
// Three tiers are searched in order: meta description tags, individual
// block-level elements in document order, then the full page text.
// An audience-only match found in an earlier tier is held as a
// fallback and used only after every tier has been searched for the
// fuller category+audience sentence; it never pre-empts a later full
// match. Both values are empty when nothing matches anywhere.
func CategoryAndSex(doc *goquery.Document) (category, sex string) {
	sexFallback := ""

	// Tier 1: meta description tags, the cleanest source.
	for _, selector := range []string{
		`meta[name="description"]`,
		`meta[property="og:description"]`,
	} {
		content, ok := doc.Find(selector).Attr("content")
		if !ok || content == "" {
			continue
		}
		if cat, sx, ok := fullMatch(content); ok {
			return cat, sx
		}
		if sexFallback == "" {
			sexFallback = sexOnlyMatch(content)
		}
	}

	// Tier 2: individual block elements, avoiding sentence fragments
	// glued together across unrelated parts of the page.
	doc.Find("p, div, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := Text(s)
		if !strings.Contains(strings.ToLower(text), "fragrance for") {
			return true
		}
		if cat, sx, ok := fullMatch(text); ok {
			category, sex = cat, sx
			return false
		}
		if sexFallback == "" {
			sexFallback = sexOnlyMatch(text)
		}
		return true
	})
	if category != "" {
		return category, sex
	}

	// Tier 3: the full page text, scanning every candidate sentence
	// for one with an acceptable category.
	pageText := Text(doc.Selection)
	for _, m := range categorySexRE.FindAllStringSubmatch(pageText, -1) {
		if cat := CleanSpace(m[1]); len(cat) <= maxCategoryLen {
			return cat, CleanSpace(m[2])
		}
	}
	if sexFallback == "" {
		sexFallback = sexOnlyMatch(pageText)
	}

	return "", sexFallback
}

// fullMatch applies the category+audience pattern with the category
// length sanity bound.
func fullMatch(text string) (category, sex string, ok bool) {
	m := categorySexRE.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	category = CleanSpace(m[1])
	if len(category) > maxCategoryLen {
		return "", "", false
	}
	return category, CleanSpace(m[2]), true
}

func sexOnlyMatch(text string) string {
	m := sexOnlyRE.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return CleanSpace(m[1])
}
