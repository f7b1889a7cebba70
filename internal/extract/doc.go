// Package extract derives structured records from fetched fragrance
// pages.
//
// Every field group has an ordered fallback chain and fails soft:
// brand and name prefer in-document sources and fall back to values
// de-slugged from the URL path; the rating sentence either matches
// fully or leaves both rating and votes nil; category and audience
// are searched in three tiers (meta descriptions, block elements,
// full page text) and an audience-only match is accepted only after
// every tier has been scanned for the fuller category+audience
// sentence. Fields that stay empty after all tiers remain empty.
package extract
