// Package export joins per-brand CSV stores into a single XLSX
// workbook, one sheet per brand. Stores are loaded concurrently;
// missing and empty stores are skipped rather than failing the
// export.
package export
