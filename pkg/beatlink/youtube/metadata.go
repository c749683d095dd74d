// Package youtube resolves submitted links to video metadata through the
// YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/himanishpuri/BeatLink/pkg/logger"
	"github.com/himanishpuri/BeatLink/pkg/models"
	"github.com/himanishpuri/BeatLink/pkg/utils"
)

const DefaultTimeout = 15 * time.Second

var videoParts = []string{"snippet", "statistics", "contentDetails"}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Config configures the YouTube Data API client.
type Config struct {
	APIKey string
	// Endpoint overrides the API root, e.g. a local test server.
	Endpoint string
	Timeout  time.Duration
	Logger   Logger
}

// MetadataClient resolves submitted URLs to video metadata.
type MetadataClient struct {
	svc     *yt.Service
	timeout time.Duration
	log     Logger
}

// NewMetadataClient builds the client. A missing API key is not an error
// here: Lookup reports it per request.
func NewMetadataClient(ctx context.Context, cfg Config) (*MetadataClient, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger().Named("youtube")
	}

	c := &MetadataClient{timeout: cfg.Timeout, log: cfg.Logger}
	if cfg.APIKey == "" {
		c.log.Warnf("YOUTUBE_API_KEY not set")
		return c, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	c.svc = svc
	c.log.Infof("YOUTUBE_API_KEY configured")
	return c, nil
}

// Lookup extracts the video id from rawURL and fetches its metadata.
// Failures are *models.ScanError values carrying the lookup failure kind.
func (c *MetadataClient) Lookup(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	videoID, ok := utils.ExtractVideoID(rawURL)
	if !ok {
		return nil, models.NewScanError(models.KindInvalidURL, "invalid YouTube URL", nil)
	}
	if c.svc == nil {
		return nil, models.NewScanError(models.KindMissingAPIKey, "YOUTUBE_API_KEY not configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.log.Infof("Fetching metadata for video %s", videoID)
	resp, err := c.svc.Videos.List(videoParts).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, c.classify(err)
	}

	if len(resp.Items) == 0 {
		return nil, models.NewScanError(models.KindVideoUnavailable, "video not found, private or deleted", nil)
	}

	meta := toMetadata(videoID, resp.Items[0])
	c.log.Infof("Metadata retrieved: %s", truncate(meta.Title, 60))
	return meta, nil
}

func (c *MetadataClient) classify(err error) error {
	var apiErr *googleapi.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || isNetTimeout(err):
		c.log.Errorf("YouTube API timeout (%s)", c.timeout)
		return models.NewScanError(models.KindTimeout, "YouTube API timeout", err)
	case errors.As(err, &apiErr):
		c.log.Errorf("YouTube API error: %d %s", apiErr.Code, apiErr.Message)
		return models.NewScanError(models.KindAPIError, fmt.Sprintf("YouTube API error: %d", apiErr.Code), err)
	default:
		c.log.Errorf("Error fetching video info: %v", err)
		return models.NewScanError(models.KindUnknown, "error fetching video info", err)
	}
}

func toMetadata(videoID string, item *yt.Video) *models.VideoMetadata {
	meta := &models.VideoMetadata{
		VideoID: videoID,
		Title:   "Unknown Title",
		Author:  "Unknown Author",
	}

	if s := item.Snippet; s != nil {
		if s.Title != "" {
			meta.Title = s.Title
		}
		if s.ChannelTitle != "" {
			meta.Author = s.ChannelTitle
		}
		meta.Thumbnail = bestThumbnail(s.Thumbnails)
	}
	if item.Statistics != nil {
		meta.Views = item.Statistics.ViewCount
	}
	if item.ContentDetails != nil {
		meta.Duration = ParseISODuration(item.ContentDetails.Duration)
	}
	return meta
}

// bestThumbnail walks maxres > high > medium > default; the first present wins.
func bestThumbnail(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*yt.Thumbnail{t.Maxres, t.High, t.Medium, t.Default} {
		if th != nil {
			return th.Url
		}
	}
	return ""
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration parses the PT#H#M#S form used by contentDetails.duration.
// Unparsable input yields 0.
func ParseISODuration(s string) time.Duration {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, u := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0
		}
		total += time.Duration(n) * u
	}
	return total
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
