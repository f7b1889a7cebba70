package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/scentdb/scentcrawl/internal/model"
	"github.com/scentdb/scentcrawl/internal/store"
)

func writeStore(t *testing.T, path string, records ...model.Record) {
	t.Helper()

	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	for _, rec := range records {
		if err := st.Append(rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
}

func record(brand, name, url string) model.Record {
	rating := 4.1
	votes := 321
	return model.Record{
		Brand:       brand,
		Name:        name,
		Rating:      &rating,
		Votes:       &votes,
		URL:         url,
		LastCrawled: time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC),
		Sex:         "women and men",
		Category:    "amber woody",
	}
}

func TestExporterXLSX(t *testing.T) {
	t.Parallel()

	t.Run("one sheet per non-empty store", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		orpheonCSV := filepath.Join(dir, "orpheon.csv")
		diorCSV := filepath.Join(dir, "dior.csv")
		emptyCSV := filepath.Join(dir, "empty.csv")
		writeStore(t, orpheonCSV,
			record("Orpheon", "Nocturne", "https://www.fragrantica.com/perfume/Orpheon/Nocturne-101.html"),
			record("Orpheon", "Aurora", "https://www.fragrantica.com/perfume/Orpheon/Aurora-102.html"),
		)
		writeStore(t, diorCSV,
			record("Dior", "Sauvage", "https://www.fragrantica.com/perfume/Dior/Sauvage-200.html"),
		)
		writeStore(t, emptyCSV)

		outPath := filepath.Join(dir, "catalog.xlsx")
		stats, err := New().XLSX(context.Background(), []Input{
			{Label: "Orpheon", Path: orpheonCSV},
			{Label: "Dior", Path: diorCSV},
			{Label: "Empty", Path: emptyCSV},
			{Label: "Missing", Path: filepath.Join(dir, "missing.csv")},
		}, outPath)
		if err != nil {
			t.Fatalf("XLSX() error = %v", err)
		}

		if stats.Sheets != 2 {
			t.Errorf("Sheets = %d, want 2", stats.Sheets)
		}
		if stats.Rows != 3 {
			t.Errorf("Rows = %d, want 3", stats.Rows)
		}
		if stats.Skipped != 2 {
			t.Errorf("Skipped = %d, want 2", stats.Skipped)
		}

		f, err := excelize.OpenFile(outPath)
		if err != nil {
			t.Fatalf("OpenFile() error = %v", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) != 2 || sheets[0] != "Orpheon" || sheets[1] != "Dior" {
			t.Errorf("sheets = %v, want [Orpheon Dior]", sheets)
		}

		got, err := f.GetCellValue("Orpheon", "B2")
		if err != nil {
			t.Fatalf("GetCellValue() error = %v", err)
		}
		if got != "Nocturne" {
			t.Errorf("Orpheon!B2 = %q, want Nocturne", got)
		}
		header, err := f.GetCellValue("Dior", "H1")
		if err != nil {
			t.Fatalf("GetCellValue() error = %v", err)
		}
		if header != "fragrance_category" {
			t.Errorf("Dior!H1 = %q, want fragrance_category", header)
		}
	})

	t.Run("all stores empty fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := New().XLSX(context.Background(), []Input{
			{Label: "Missing", Path: filepath.Join(dir, "none.csv")},
		}, filepath.Join(dir, "catalog.xlsx"))
		if err != ErrNoSheets {
			t.Errorf("XLSX() error = %v, want ErrNoSheets", err)
		}
	})

	t.Run("colliding labels get their own sheets", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		parisCSV := filepath.Join(dir, "paris.csv")
		archiveCSV := filepath.Join(dir, "archive.csv")
		writeStore(t, parisCSV,
			record("Guerlain", "Shalimar", "https://www.fragrantica.com/perfume/Guerlain/Shalimar-1.html"),
		)
		writeStore(t, archiveCSV,
			record("Guerlain", "Habit Rouge", "https://www.fragrantica.com/perfume/Guerlain/Habit-Rouge-2.html"),
		)

		outPath := filepath.Join(dir, "catalog.xlsx")
		// Both labels sanitize to "Guerlain Paris".
		stats, err := New().XLSX(context.Background(), []Input{
			{Label: "Guerlain/Paris", Path: parisCSV},
			{Label: "Guerlain:Paris", Path: archiveCSV},
		}, outPath)
		if err != nil {
			t.Fatalf("XLSX() error = %v", err)
		}
		if stats.Sheets != 2 {
			t.Fatalf("Sheets = %d, want 2", stats.Sheets)
		}

		f, err := excelize.OpenFile(outPath)
		if err != nil {
			t.Fatalf("OpenFile() error = %v", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) != 2 || sheets[0] != "Guerlain Paris" || sheets[1] != "Guerlain Paris 2" {
			t.Errorf("sheets = %v, want [Guerlain Paris, Guerlain Paris 2]", sheets)
		}
		got, err := f.GetCellValue("Guerlain Paris 2", "B2")
		if err != nil {
			t.Fatalf("GetCellValue() error = %v", err)
		}
		if got != "Habit Rouge" {
			t.Errorf("second sheet B2 = %q, want Habit Rouge", got)
		}
	})

	t.Run("suffixed names stay within the length limit", func(t *testing.T) {
		t.Parallel()

		used := make(map[string]struct{})
		long := "This Brand Name Is Much Longer Than Excel Allows"
		first := uniqueSheetName(used, long)
		second := uniqueSheetName(used, long)
		if first == second {
			t.Errorf("uniqueSheetName() repeated %q", first)
		}
		if len(second) > maxSheetName {
			t.Errorf("len(%q) = %d, want <= %d", second, len(second), maxSheetName)
		}
	})

	t.Run("sheet names are sanitized", func(t *testing.T) {
		t.Parallel()

		if got := sheetName("Mugler/Thierry: [Archive] *Rare?"); got != "Mugler Thierry   Archive   Rare" {
			t.Errorf("sheetName() = %q", got)
		}
		if got := sheetName("This Brand Name Is Much Longer Than Excel Allows"); len(got) != maxSheetName {
			t.Errorf("sheetName() length = %d, want %d", len(got), maxSheetName)
		}
		if got := sheetName(""); got != "Sheet" {
			t.Errorf("sheetName(\"\") = %q, want Sheet", got)
		}
	})
}
