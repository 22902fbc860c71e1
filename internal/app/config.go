package app

import "time"

// Config holds runtime configuration for one invocation of the tool.
type Config struct {
	// Sources are the inputs to process, file paths or http(s) URLs.
	Sources []string

	OutputDir string
	Splits    int

	// PreserveStructure inserts a page-range header and horizontal-rule
	// separators into each split artifact.
	PreserveStructure bool
	// IncludeMetadata emits the JSON manifest alongside the splits.
	IncludeMetadata bool
	// PageMarker is an optional custom boundary pattern that takes priority
	// over the default cascade.
	PageMarker string

	// Force allows writing into a non-empty output directory.
	Force bool
	// WritePDF additionally renders each split artifact as a simple PDF.
	WritePDF bool

	// CacheDir enables on-disk caching of fetched URL content when set.
	CacheDir string
	// CacheMaxAge bounds how old a cached entry may be before refetching.
	CacheMaxAge time.Duration

	Verbose bool
}
