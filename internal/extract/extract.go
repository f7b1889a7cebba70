package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/scentdb/scentcrawl/internal/frontier"
	"github.com/scentdb/scentcrawl/internal/model"
)

var (
	// ratingVotesRE matches the fixed-shape rating sentence, e.g.
	// "Perfume rating 4.20 out of 5 with 1,234 votes".
	ratingVotesRE = regexp.MustCompile(`(?i)Perfume\s+rating\s+([0-9]+(?:\.[0-9]+)?)\s+out\s+of\s+5\s+with\s+([\d,]+)\s+votes`)

	// designerValueRE captures the brand following a "Designer" label.
	designerValueRE = regexp.MustCompile(`(?i)Designer\s+(.*)`)

	// audienceSuffixRE matches the trailing audience qualifier on
	// titles, e.g. "Chance Chanel for women".
	audienceSuffixRE = regexp.MustCompile(`(?i)\s+for\s+(men|women|unisex)\s*$`)

	whitespaceRE = regexp.MustCompile(`\s+`)
)

// maxDesignerBlock bounds the text length of an element considered a
// designer label. Larger blocks are page-level containers that merely
// start with the word.
const maxDesignerBlock = 120

// Record extracts a fragrance record from a fetched detail page.
// pageURL must be the canonical (post-redirect) URL; it doubles as
// the fallback source for brand and name when the document yields
// nothing.
func Record(doc *goquery.Document, pageURL string, now time.Time) model.Record {
	pageText := Text(doc.Selection)
	rating, votes := ratingVotes(pageText)

	brand := brandFromDoc(doc)
	name := nameFromDoc(doc)

	urlBrand, urlName := frontier.BrandAndNameFromURL(pageURL)
	if brand == "" {
		brand = urlBrand
	}
	if name == "" {
		name = urlName
	}

	category, sex := CategoryAndSex(doc)

	return model.Record{
		Brand:       CleanSpace(brand),
		Name:        CleanSpace(name),
		Rating:      rating,
		Votes:       votes,
		URL:         pageURL,
		LastCrawled: now.UTC(),
		Sex:         sex,
		Category:    category,
	}
}

// Links returns the absolute form of every anchor href in the
// document, resolved against the page URL. The caller is responsible
// for normalization and scope filtering.
func Links(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})
	return links
}

// brandFromDoc looks for an explicit "Designer <Brand>" label. The
// tightest (shortest) matching element wins, which skips page-level
// containers whose text merely begins with the label.
func brandFromDoc(doc *goquery.Document) string {
	best, bestText := "", ""
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		text := CleanSpace(Text(s))
		if len(text) > maxDesignerBlock || !strings.HasPrefix(text, "Designer") {
			return
		}
		m := designerValueRE.FindStringSubmatch(text)
		if m == nil {
			return
		}
		if bestText == "" || len(text) < len(bestText) {
			best, bestText = CleanSpace(m[1]), text
		}
	})
	return best
}

// nameFromDoc reads the fragrance name from the page heading, falling
// back to the og:title meta tag. A trailing audience qualifier is
// stripped in both cases.
func nameFromDoc(doc *goquery.Document) string {
	if heading := doc.Find("h1, h2").First(); heading.Length() > 0 {
		if text := stripAudienceSuffix(CleanSpace(Text(heading))); text != "" {
			return text
		}
	}

	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return stripAudienceSuffix(CleanSpace(content))
	}
	return ""
}

// ratingVotes extracts the rating and vote count from the page text.
// No match leaves both nil: an unrated fragrance is not a zero-rated
// one.
func ratingVotes(pageText string) (*float64, *int) {
	m := ratingVotesRE.FindStringSubmatch(pageText)
	if m == nil {
		return nil, nil
	}

	rating, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, nil
	}
	votes, err := strconv.Atoi(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return nil, nil
	}
	return &rating, &votes
}

func stripAudienceSuffix(s string) string {
	return strings.TrimSpace(audienceSuffixRE.ReplaceAllString(s, ""))
}

// CleanSpace collapses runs of whitespace to single spaces and trims.
func CleanSpace(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// Text renders the visible text of a selection with a space between
// adjacent text nodes, so sentence patterns spanning inline elements
// still match.
func Text(s *goquery.Selection) string {
	var b strings.Builder
	for _, node := range s.Nodes {
		appendText(&b, node)
	}
	return CleanSpace(b.String())
}

func appendText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(trimmed)
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(b, c)
	}
}
