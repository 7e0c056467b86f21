// Package web serves the job listing UI.
//
// The server renders a listing page with semantic search, a detail page per
// posting with application tracking, and a scrape trigger that runs
// ingestion in the background.
package web
