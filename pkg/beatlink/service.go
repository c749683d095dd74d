// Package beatlink runs a scan: it looks up the submitted video, extracts a
// short clip of its audio, fingerprints it and enriches the matches with
// catalog details.
package beatlink

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/himanishpuri/BeatLink/pkg/beatlink/acrcloud"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/audio"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/spotify"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/youtube"
	"github.com/himanishpuri/BeatLink/pkg/logger"
	"github.com/himanishpuri/BeatLink/pkg/models"
	"github.com/himanishpuri/BeatLink/pkg/utils"
)

// scanService is the default implementation of the Service interface.
type scanService struct {
	metadata MetadataLookup
	acquirer AudioAcquirer
	matcher  FingerprintMatcher
	enricher Enricher
	log      Logger
	config   *Config
}

// NewService wires the pipeline. Stages not supplied through options are
// built unconfigured; they report missing credentials at scan time.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger().Named("pipeline")
	}

	if cfg.Metadata == nil {
		m, err := youtube.NewMetadataClient(context.Background(), youtube.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create metadata lookup: %w", err)
		}
		cfg.Metadata = m
	}
	if cfg.Acquirer == nil {
		cfg.Acquirer = audio.NewAcquirer(audio.Config{TempDir: cfg.TempDir})
	}
	if cfg.Matcher == nil {
		cfg.Matcher = acrcloud.NewMatcher(acrcloud.Config{})
	}
	if cfg.Enricher == nil {
		cfg.Enricher = spotify.NewEnricher(spotify.NewTokenCache(spotify.TokenConfig{}))
	}

	return &scanService{
		metadata: cfg.Metadata,
		acquirer: cfg.Acquirer,
		matcher:  cfg.Matcher,
		enricher: cfg.Enricher,
		log:      cfg.Logger,
		config:   cfg,
	}, nil
}

// Scan runs the four stages for sourceURL. Any failure is a *models.ScanError.
func (s *scanService) Scan(ctx context.Context, sourceURL string) (report *models.ScanReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("Unexpected error: %v\n%s", r, debug.Stack())
			report = nil
			err = models.NewScanError(models.KindInternal, "internal server error", fmt.Errorf("panic: %v", r))
		}
	}()

	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, models.NewScanError(models.KindMissingURL, "youtube_url is required in request body", nil)
	}

	scanID := utils.NewScanID()
	s.log.Infof("[%s] Scanning URL: %s", scanID, sourceURL)

	s.log.Infof("[%s] Step 1: getting video metadata", scanID)
	video, err := s.metadata.Lookup(ctx, sourceURL)
	if err != nil {
		return nil, models.AsScanError(err)
	}

	s.log.Infof("[%s] Step 2: downloading audio", scanID)
	asset, err := s.acquirer.Acquire(ctx, sourceURL, video.VideoID, scanID)
	if err != nil {
		if errors.Is(err, audio.ErrNotConfigured) {
			return nil, models.NewScanError(models.KindConfiguration, "audio download is not configured", err)
		}
		return nil, models.NewScanError(models.KindDownloadFailed, "Failed to download audio from YouTube", err)
	}
	defer s.cleanup(asset)

	s.log.Infof("[%s] Step 3: identifying audio", scanID)
	matches := s.matcher.Identify(ctx, asset.Path)
	if len(matches) == 0 {
		s.log.Infof("[%s] No matches found", scanID)
		return models.NewScanReport(scanID, sourceURL, *video, nil), nil
	}
	s.log.Infof("[%s] Found %d matches", scanID, len(matches))

	s.log.Infof("[%s] Step 4: enriching matches", scanID)
	tracks := s.enricher.Enrich(ctx, matches)
	s.log.Infof("[%s] Enriched %d songs", scanID, len(tracks))

	return models.NewScanReport(scanID, sourceURL, *video, tracks), nil
}

func (s *scanService) cleanup(asset *models.AudioAsset) {
	if asset == nil {
		return
	}
	if err := utils.RemoveIfExists(asset.Path); err != nil {
		s.log.Warnf("[%s] Could not remove %s: %v", asset.ScanID, asset.Path, err)
		return
	}
	s.log.Debugf("[%s] Cleaned up %s", asset.ScanID, asset.Path)
}
