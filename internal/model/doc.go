// Package model defines the core data types shared across the crawler.
//
// The central type is Record, one persisted fragrance detail page.
// Records use pointer fields for rating and votes so that "not yet
// rated" is distinguishable from "rated zero"; an absent rating is
// nil, never 0.
package model
