// Package acrcloud submits trimmed audio clips to the ACRCloud identify
// endpoint and turns its answer into high-confidence fingerprint matches.
package acrcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/BeatLink/pkg/logger"
	"github.com/himanishpuri/BeatLink/pkg/models"
)

const (
	identifyURI      = "/v1/identify"
	dataType         = "audio"
	signatureVersion = "1"

	DefaultTimeout = 30 * time.Second
)

// Status codes returned in the response body.
const (
	StatusSuccess       = 0
	StatusNoResult      = 1001
	StatusQuotaExceeded = 3001
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Config holds the ACRCloud project credentials.
type Config struct {
	Host      string
	AccessKey string
	SecretKey string
	// BaseURL overrides "https://<Host>"; used to point at a local server.
	BaseURL string
	Timeout time.Duration
}

// Configured reports whether all credentials are present.
func (c Config) Configured() bool {
	return c.Host != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Option func(*Matcher)

func WithHTTPClient(client *http.Client) Option {
	return func(m *Matcher) {
		if client != nil {
			m.client = client
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Matcher) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLogger(log Logger) Option {
	return func(m *Matcher) {
		if log != nil {
			m.log = log
		}
	}
}

// Matcher identifies audio clips. It never fails: every problem is logged
// and reported as an empty result.
type Matcher struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
	log    Logger
}

func NewMatcher(cfg Config, opts ...Option) *Matcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	m := &Matcher{
		cfg:    cfg,
		client: http.DefaultClient,
		now:    time.Now,
		log:    logger.GetLogger().Named("acrcloud"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if cfg.Configured() {
		m.log.Infof("ACRCloud credentials configured")
	} else {
		m.log.Errorf("ACRCloud credentials missing")
	}
	return m
}

type identifyResponse struct {
	Status struct {
		Code *int   `json:"code"`
		Msg  string `json:"msg"`
	} `json:"status"`
	Metadata struct {
		Music []musicEntry `json:"music"`
	} `json:"metadata"`
}

type musicEntry struct {
	Title   *string  `json:"title"`
	Score   *float64 `json:"score"`
	Artists []struct {
		Name *string `json:"name"`
	} `json:"artists"`
	ExternalMetadata json.RawMessage `json:"external_metadata"`
}

// Identify submits the clip at audioPath and returns every candidate whose
// score is at least models.MinScore.
func (m *Matcher) Identify(ctx context.Context, audioPath string) []models.FingerprintMatch {
	if !m.cfg.Configured() {
		m.log.Errorf("ACRCloud credentials missing, skipping identification")
		return []models.FingerprintMatch{}
	}

	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		m.log.Errorf("Audio file not found: %s (%v)", audioPath, err)
		return []models.FingerprintMatch{}
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	req, err := m.buildRequest(ctx, audioData)
	if err != nil {
		m.log.Errorf("Failed to build identify request: %v", err)
		return []models.FingerprintMatch{}
	}

	m.log.Infof("Identifying %d bytes of audio", len(audioData))
	resp, err := m.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			m.log.Errorf("ACRCloud timeout (%s)", m.cfg.Timeout)
		} else {
			m.log.Errorf("ACRCloud request failed: %v", err)
		}
		return []models.FingerprintMatch{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.log.Errorf("ACRCloud API error: %d", resp.StatusCode)
		return []models.FingerprintMatch{}
	}

	var body identifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if isTimeout(err) {
			m.log.Errorf("ACRCloud timeout (%s) while reading response", m.cfg.Timeout)
		} else {
			m.log.Errorf("Malformed ACRCloud response: %v", err)
		}
		return []models.FingerprintMatch{}
	}

	code := -1
	if body.Status.Code != nil {
		code = *body.Status.Code
	}
	switch code {
	case StatusSuccess:
	case StatusNoResult:
		m.log.Infof("No matches found in ACRCloud")
		return []models.FingerprintMatch{}
	case StatusQuotaExceeded:
		m.log.Errorf("ACRCloud quota exceeded")
		return []models.FingerprintMatch{}
	default:
		msg := body.Status.Msg
		if msg == "" {
			msg = "Unknown error"
		}
		m.log.Errorf("ACRCloud error: %d - %s", code, msg)
		return []models.FingerprintMatch{}
	}

	matches := filterMatches(body.Metadata.Music)
	m.log.Infof("Found %d matches with score >= %.0f", len(matches), models.MinScore)
	return matches
}

func (m *Matcher) buildRequest(ctx context.Context, audioData []byte) (*http.Request, error) {
	timestamp := strconv.FormatInt(m.now().Unix(), 10)
	signature := Sign(m.cfg.SecretKey, StringToSign(
		http.MethodPost, identifyURI, m.cfg.AccessKey, dataType, signatureVersion, timestamp,
	))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"access_key", m.cfg.AccessKey},
		{"data_type", dataType},
		{"signature_version", signatureVersion},
		{"signature", signature},
		{"sample_bytes", strconv.Itoa(len(audioData))},
		{"timestamp", timestamp},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("writing field %s: %w", f[0], err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="sample"; filename="audio.mp3"`)
	h.Set("Content-Type", "audio/mpeg")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("creating sample part: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("writing sample: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint(), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, nil
}

func (m *Matcher) endpoint() string {
	base := m.cfg.BaseURL
	if base == "" {
		base = "https://" + m.cfg.Host
	}
	return strings.TrimRight(base, "/") + identifyURI
}

func filterMatches(music []musicEntry) []models.FingerprintMatch {
	matches := make([]models.FingerprintMatch, 0, len(music))
	for _, entry := range music {
		score := 0.0
		if entry.Score != nil {
			score = *entry.Score
		}
		if score < models.MinScore {
			continue
		}

		title := "Unknown"
		if entry.Title != nil {
			title = *entry.Title
		}

		names := make([]string, 0, len(entry.Artists))
		for _, a := range entry.Artists {
			name := "Unknown"
			if a.Name != nil {
				name = *a.Name
			}
			names = append(names, name)
		}

		catalogID := ""
		if id := spotifyTrackID(entry.ExternalMetadata); id != "" {
			catalogID = "spotify:track:" + id
		}

		matches = append(matches, models.FingerprintMatch{
			Title:     title,
			Artists:   strings.Join(names, ", "),
			CatalogID: catalogID,
			Score:     score,
		})
	}
	return matches
}

// spotifyTrackID digs external_metadata.spotify.track.id out of raw JSON.
// The shape is not guaranteed, so anything unexpected yields "".
func spotifyTrackID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var ext struct {
		Spotify json.RawMessage `json:"spotify"`
	}
	if err := json.Unmarshal(raw, &ext); err != nil || len(ext.Spotify) == 0 {
		return ""
	}
	var sp struct {
		Track struct {
			ID string `json:"id"`
		} `json:"track"`
	}
	if err := json.Unmarshal(ext.Spotify, &sp); err != nil {
		return ""
	}
	return sp.Track.ID
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
