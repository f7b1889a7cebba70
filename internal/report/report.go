package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/scentdb/scentcrawl/internal/crawler"
	"github.com/scentdb/scentcrawl/internal/frontier"
)

// Summary is the material for one report: every sub-run's stats in
// the order they ran.
type Summary struct {
	Started  time.Time
	Duration time.Duration
	Runs     []*crawler.Stats
}

// TotalSaved sums saved records across sub-runs.
func (s *Summary) TotalSaved() int {
	n := 0
	for _, run := range s.Runs {
		n += run.RecordsSaved
	}
	return n
}

// TotalFetched sums fetched pages across sub-runs.
func (s *Summary) TotalFetched() int {
	n := 0
	for _, run := range s.Runs {
		n += run.PagesFetched
	}
	return n
}

// TotalGaveUp sums abandoned URLs across sub-runs.
func (s *Summary) TotalGaveUp() int {
	n := 0
	for _, run := range s.Runs {
		n += run.GaveUp
	}
	return n
}

// TotalRotations sums identity rotations across sub-runs.
func (s *Summary) TotalRotations() int {
	n := 0
	for _, run := range s.Runs {
		n += run.Rotations
	}
	return n
}

// MarkdownWriter renders a Summary as Markdown.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter writing to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write renders the full report.
func (w *MarkdownWriter) Write(summary *Summary) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeTotals(md, summary)
	w.writeBrands(md, summary)
	w.writeFooter(md)

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + frontier.Domain + "`"},
			{"Started", summary.Started.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration.Round(time.Second).String()},
			{"Brands", strconv.Itoa(len(summary.Runs))},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTotals(md *markdown.Markdown, summary *Summary) {
	md.H2("Totals")
	md.PlainText("")

	var incomplete, known, robots, terminal int
	for _, run := range summary.Runs {
		incomplete += run.Incomplete
		known += run.SkippedKnown
		robots += run.SkippedRobots
		terminal += run.SkippedTerminal
	}

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Pages fetched", strconv.Itoa(summary.TotalFetched())},
			{"Records saved", strconv.Itoa(summary.TotalSaved())},
			{"Incomplete pages", strconv.Itoa(incomplete)},
			{"Already known", strconv.Itoa(known)},
			{"Robots-disallowed", strconv.Itoa(robots)},
			{"Unusable pages", strconv.Itoa(terminal)},
			{"Gave up", strconv.Itoa(summary.TotalGaveUp())},
			{"Identity rotations", strconv.Itoa(summary.TotalRotations())},
		},
	})
	md.PlainText("")

	switch {
	case summary.TotalGaveUp() > 0:
		md.Warningf(
			"%d URL(s) were abandoned after exhausting retries. The site may be rate limiting; consider a longer base delay or more proxies.",
			summary.TotalGaveUp(),
		)
	case summary.TotalSaved() == 0:
		md.Note("No new records were saved. The catalog may already be fully crawled for these brands.")
	default:
		md.Tipf("%d new record(s) saved.", summary.TotalSaved())
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeBrands(md *markdown.Markdown, summary *Summary) {
	md.H2("Per-Brand Breakdown")
	md.PlainText("")

	if len(summary.Runs) == 0 {
		md.PlainText("No runs completed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Runs))
	for i, run := range summary.Runs {
		brand := run.Brand
		if brand == "" {
			brand = "(unscoped)"
		}
		rows[i] = []string{
			brand,
			strconv.Itoa(run.PagesFetched),
			strconv.Itoa(run.RecordsSaved),
			strconv.Itoa(run.GaveUp),
			run.Duration.Round(time.Second).String(),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Brand", "Pages", "Saved", "Gave Up", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [scentcrawl](https://github.com/scentdb/scentcrawl)*")
}
