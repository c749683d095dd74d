package models

import "time"

// MinScore is the lowest fingerprint confidence that is reported. Matches
// below it are dropped to keep false positives out of the report.
const MinScore = 85.0

// VideoMetadata describes the submitted video as reported by the metadata API.
type VideoMetadata struct {
	VideoID   string
	Title     string
	Author    string        // Channel name
	Views     uint64        // 0 when the API omits statistics
	Thumbnail string        // Best available of maxres > high > medium > default
	Duration  time.Duration // 0 when unknown
}

// AudioAsset is the trimmed clip handed to the fingerprint service. It lives
// in the temp directory for the duration of one scan only.
type AudioAsset struct {
	Path      string
	SizeBytes int64
	VideoID   string
	ScanID    string
}

// FingerprintMatch is a candidate returned by the fingerprint service that
// passed the MinScore filter.
type FingerprintMatch struct {
	Title     string
	Artists   string  // Artist names joined with ", "
	CatalogID string  // "spotify:track:<id>" or empty
	Score     float64 // 0-100
}

// EnrichedTrack is a FingerprintMatch with catalog details merged in.
// Catalog fields stay empty when they could not be resolved.
type EnrichedTrack struct {
	FingerprintMatch
	CatalogURL  string
	CoverURL    string
	ReleaseDate string
	Label       string
}

// ScanReport is the outcome of one scan.
type ScanReport struct {
	ScanID       string
	SourceURL    string
	Video        VideoMetadata
	Matches      []EnrichedTrack
	ResultsCount int
}

// NewScanReport builds a report and keeps ResultsCount in sync with Matches.
func NewScanReport(scanID, sourceURL string, video VideoMetadata, matches []EnrichedTrack) *ScanReport {
	if matches == nil {
		matches = []EnrichedTrack{}
	}
	return &ScanReport{
		ScanID:       scanID,
		SourceURL:    sourceURL,
		Video:        video,
		Matches:      matches,
		ResultsCount: len(matches),
	}
}
