// Package enrich backfills category and audience fields on records
// that were saved before extraction covered them. It re-visits each
// candidate's detail page through the same retry engine and politeness
// scheduler the crawler uses, and rewrites the CSV atomically at a
// fixed cadence so an interrupted pass loses little work.
package enrich
