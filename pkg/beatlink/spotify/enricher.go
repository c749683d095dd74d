// Package spotify resolves fingerprint matches against the Spotify Web API
// using a client-credentials token.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/BeatLink/pkg/logger"
	"github.com/himanishpuri/BeatLink/pkg/models"
)

const (
	DefaultAPIBase     = "https://api.spotify.com"
	DefaultTimeout     = 10 * time.Second
	DefaultConcurrency = 4

	trackURLBase = "https://open.spotify.com/track/"
	trackURIKind = "spotify:track:"
	coverHeight  = 300
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// TokenSource hands out bearer tokens for the Web API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Option func(*Enricher)

func WithAPIBase(base string) Option {
	return func(e *Enricher) {
		if base != "" {
			e.apiBase = strings.TrimRight(base, "/")
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(e *Enricher) {
		if client != nil {
			e.client = client
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithConcurrency bounds the number of track lookups in flight.
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func WithLogger(log Logger) Option {
	return func(e *Enricher) {
		if log != nil {
			e.log = log
		}
	}
}

// Enricher merges catalog metadata into fingerprint matches. A failed lookup
// only blanks that track's catalog fields.
type Enricher struct {
	tokens      TokenSource
	client      *http.Client
	apiBase     string
	timeout     time.Duration
	concurrency int
	log         Logger
}

func NewEnricher(tokens TokenSource, opts ...Option) *Enricher {
	e := &Enricher{
		tokens:      tokens,
		client:      http.DefaultClient,
		apiBase:     DefaultAPIBase,
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
		log:         logger.GetLogger().Named("spotify"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type trackResponse struct {
	Album struct {
		Label       string `json:"label"`
		ReleaseDate string `json:"release_date"`
		Images      []struct {
			URL    string `json:"url"`
			Height *int   `json:"height"`
		} `json:"images"`
	} `json:"album"`
}

type trackDetails struct {
	catalogURL  string
	coverURL    string
	releaseDate string
	label       string
}

// Enrich returns one EnrichedTrack per match, in the same order.
func (e *Enricher) Enrich(ctx context.Context, matches []models.FingerprintMatch) []models.EnrichedTrack {
	out := make([]models.EnrichedTrack, len(matches))
	if len(matches) == 0 {
		return out
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, m := range matches {
		g.Go(func() error {
			out[i] = e.enrichOne(ctx, m)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *Enricher) enrichOne(ctx context.Context, m models.FingerprintMatch) models.EnrichedTrack {
	track := models.EnrichedTrack{FingerprintMatch: m}
	if m.CatalogID == "" {
		return track
	}

	trackID := TrackID(m.CatalogID)
	token, err := e.tokens.Token(ctx)
	if err != nil {
		e.log.Warnf("No Spotify token for track %s: %v", trackID, err)
		return track
	}

	details, err := e.fetchTrack(ctx, trackID, token)
	if err != nil {
		e.log.Warnf("Error getting track details for %s: %v", trackID, err)
		return track
	}

	track.CatalogURL = details.catalogURL
	track.CoverURL = details.coverURL
	track.ReleaseDate = details.releaseDate
	track.Label = details.label
	return track
}

func (e *Enricher) fetchTrack(ctx context.Context, trackID, token string) (*trackDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1/tracks/%s?%s", e.apiBase, url.PathEscape(trackID),
		url.Values{"market": {"from_token"}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("spotify API status %d", resp.StatusCode)
	}

	var body trackResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding track: %w", err)
	}

	return &trackDetails{
		catalogURL:  trackURLBase + trackID,
		coverURL:    pickCover(body),
		releaseDate: body.Album.ReleaseDate,
		label:       body.Album.Label,
	}, nil
}

func pickCover(body trackResponse) string {
	images := body.Album.Images
	for _, img := range images {
		if img.Height != nil && *img.Height == coverHeight && img.URL != "" {
			return img.URL
		}
	}
	if len(images) > 0 {
		return images[0].URL
	}
	return ""
}

// TrackID accepts "spotify:track:<id>" or a bare id.
func TrackID(catalogID string) string {
	return strings.TrimPrefix(catalogID, trackURIKind)
}
