package beatlink

import (
	"context"

	"github.com/himanishpuri/BeatLink/pkg/models"
)

// Service runs scans end to end.
type Service interface {
	Scan(ctx context.Context, sourceURL string) (*models.ScanReport, error)
}

// MetadataLookup resolves a submitted URL to video metadata. Errors should be
// *models.ScanError values.
type MetadataLookup interface {
	Lookup(ctx context.Context, sourceURL string) (*models.VideoMetadata, error)
}

// AudioAcquirer produces the clip to fingerprint for one scan.
type AudioAcquirer interface {
	Acquire(ctx context.Context, sourceURL, videoID, scanID string) (*models.AudioAsset, error)
}

// FingerprintMatcher identifies an audio file. It reports failures as an
// empty result.
type FingerprintMatcher interface {
	Identify(ctx context.Context, path string) []models.FingerprintMatch
}

// Enricher adds catalog details to matches, one track per match, in order.
type Enricher interface {
	Enrich(ctx context.Context, matches []models.FingerprintMatch) []models.EnrichedTrack
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
