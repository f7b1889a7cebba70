package extract

import (
	"strings"
	"testing"
)

// TestCategoryAndSex tests the three-tier search and its fallback
// ordering.
func TestCategoryAndSex(t *testing.T) {
	t.Parallel()

	t.Run("meta description preferred", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<meta name="description" content="Orpheon by Diptyque is a Woody Chypre fragrance for women and men.">
		</head><body>
			<p>Some review says it is a fragrance for teenagers.</p>
		</body></html>`

		category, sex := CategoryAndSex(parseDoc(t, html))
		if category != "Woody Chypre" {
			t.Errorf("category = %q, want %q", category, "Woody Chypre")
		}
		if sex != "women and men" {
			t.Errorf("sex = %q, want %q", sex, "women and men")
		}
	})

	t.Run("audience-only never pre-empts a later full match", func(t *testing.T) {
		t.Parallel()

		// Tier 1 carries only an audience-only sentence; tier 2 has
		// the full sentence. The full match must win.
		html := `<html><head>
			<meta name="description" content="This is a fragrance for women.">
		</head><body>
			<p>Chance by Chanel is a Chypre Floral fragrance for women.</p>
		</body></html>`

		category, sex := CategoryAndSex(parseDoc(t, html))
		if category != "Chypre Floral" {
			t.Errorf("category = %q, want full-sentence match %q", category, "Chypre Floral")
		}
		if sex != "women" {
			t.Errorf("sex = %q, want %q", sex, "women")
		}
	})

	t.Run("audience-only fallback after all tiers", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<p>This is a fragrance for women and men.</p>
		</body></html>`

		category, sex := CategoryAndSex(parseDoc(t, html))
		if category != "" {
			t.Errorf("category = %q, want empty", category)
		}
		if sex != "women and men" {
			t.Errorf("sex = %q, want %q", sex, "women and men")
		}
	})

	t.Run("over-long category rejected", func(t *testing.T) {
		t.Parallel()

		longCategory := strings.Repeat("very ", 30) + "strange"
		html := `<html><body>
			<p>It is a ` + longCategory + ` fragrance for women.</p>
			<p>Chance is a Chypre Floral fragrance for women.</p>
		</body></html>`

		category, _ := CategoryAndSex(parseDoc(t, html))
		if category != "Chypre Floral" {
			t.Errorf("category = %q, want sane later match %q", category, "Chypre Floral")
		}
	})

	t.Run("nothing matches", func(t *testing.T) {
		t.Parallel()

		category, sex := CategoryAndSex(parseDoc(t, `<html><body><p>no description</p></body></html>`))
		if category != "" || sex != "" {
			t.Errorf("expected empty results, got %q/%q", category, sex)
		}
	})

	t.Run("og description is second tier-1 source", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<meta property="og:description" content="Le Male by Jean Paul Gaultier is an Oriental Fougere fragrance for men.">
		</head><body></body></html>`

		category, sex := CategoryAndSex(parseDoc(t, html))
		if category != "Oriental Fougere" {
			t.Errorf("category = %q, want %q", category, "Oriental Fougere")
		}
		if sex != "men" {
			t.Errorf("sex = %q, want %q", sex, "men")
		}
	})
}
