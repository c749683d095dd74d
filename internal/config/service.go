package config

import (
	"context"
	"fmt"
	"time"

	"github.com/himanishpuri/BeatLink/pkg/beatlink"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/acrcloud"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/audio"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/spotify"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/youtube"
	"github.com/himanishpuri/BeatLink/pkg/logger"
)

// NewService builds the scan pipeline with every stage configured from c.
func (c *Config) NewService(ctx context.Context) (beatlink.Service, error) {
	if lvl, ok := logger.ParseLevel(c.Logging.Level); ok {
		logger.SetLevel(lvl)
	}
	root := logger.GetLogger()

	meta, err := youtube.NewMetadataClient(ctx, youtube.Config{
		APIKey:   c.YouTube.APIKey,
		Endpoint: c.YouTube.Endpoint,
		Logger:   root.Named("youtube"),
	})
	if err != nil {
		return nil, err
	}

	profile, err := c.JobProfile()
	if err != nil {
		return nil, err
	}
	audioLog := root.Named("audio")
	acquirer := audio.NewAcquirer(audio.Config{
		Token:           c.Apify.Token,
		BaseURL:         c.Apify.BaseURL,
		TempDir:         c.Audio.TempDir,
		Profile:         profile,
		JobTimeout:      seconds(c.Apify.JobTimeoutSeconds),
		DownloadTimeout: seconds(c.Apify.DownloadTimeoutSeconds),
	},
		audio.WithTrimmer(audio.NewTrimmer(audio.NewCommandRunner(), c.Audio.FFmpegPath, audioLog)),
		audio.WithLogger(audioLog),
	)

	matcher := acrcloud.NewMatcher(acrcloud.Config{
		Host:      c.ACRCloud.Host,
		AccessKey: c.ACRCloud.AccessKey,
		SecretKey: c.ACRCloud.SecretKey,
		BaseURL:   c.ACRCloud.BaseURL,
		Timeout:   seconds(c.ACRCloud.TimeoutSeconds),
	}, acrcloud.WithLogger(root.Named("acrcloud")))

	spotifyLog := root.Named("spotify")
	tokens := spotify.NewTokenCache(spotify.TokenConfig{
		ClientID:     c.Spotify.ClientID,
		ClientSecret: c.Spotify.ClientSecret,
		TokenURL:     c.Spotify.TokenURL,
		Logger:       spotifyLog,
	})
	if !tokens.Configured() {
		spotifyLog.Errorf("Spotify credentials missing")
	}
	enricher := spotify.NewEnricher(tokens,
		spotify.WithAPIBase(c.Spotify.APIBase),
		spotify.WithConcurrency(c.Spotify.Concurrency),
		spotify.WithLogger(spotifyLog),
	)

	svc, err := beatlink.NewService(
		beatlink.WithTempDir(c.Audio.TempDir),
		beatlink.WithLogger(root.Named("pipeline")),
		beatlink.WithMetadataLookup(meta),
		beatlink.WithAcquirer(acquirer),
		beatlink.WithMatcher(matcher),
		beatlink.WithEnricher(enricher),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan service: %w", err)
	}
	return svc, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
