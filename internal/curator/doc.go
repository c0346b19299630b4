// Package curator fetches Steam curator recommendation lists.
//
// The store exposes a curator's recommendations as paged JSON responses whose
// results_html field holds one rendered block per recommended app. Client walks the
// pages, parses each block and returns the recommendation kind per app id.
// CachingFetcher keeps the last successful result in SQLite so categorization still
// works when the store is unreachable.
package curator
