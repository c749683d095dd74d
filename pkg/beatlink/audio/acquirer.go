// Package audio obtains the audio of a video through a remote extraction job
// and cuts the short clip submitted for fingerprinting.
package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/BeatLink/pkg/logger"
	"github.com/himanishpuri/BeatLink/pkg/models"
	"github.com/himanishpuri/BeatLink/pkg/utils"
)

const (
	DefaultBaseURL         = "https://api.apify.com"
	DefaultJobTimeout      = 180 * time.Second
	DefaultDownloadTimeout = 120 * time.Second
)

var (
	// ErrNotConfigured is returned when no job token or actor is set.
	ErrNotConfigured = errors.New("audio acquisition not configured")
	ErrNoResults     = errors.New("job returned no dataset items")
	ErrNoAssetURL    = errors.New("no download URL in job result")
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Config configures an Acquirer.
type Config struct {
	Token           string
	BaseURL         string
	TempDir         string
	Profile         JobProfile
	JobTimeout      time.Duration
	DownloadTimeout time.Duration
}

type Option func(*Acquirer)

func WithHTTPClient(client *http.Client) Option {
	return func(a *Acquirer) {
		if client != nil {
			a.client = client
		}
	}
}

func WithTrimmer(t *Trimmer) Option {
	return func(a *Acquirer) {
		if t != nil {
			a.trimmer = t
		}
	}
}

func WithLogger(log Logger) Option {
	return func(a *Acquirer) {
		if log != nil {
			a.log = log
		}
	}
}

// Acquirer runs an extraction job for a video, downloads the resulting
// track and trims it. One implementation serves every JobProfile.
type Acquirer struct {
	cfg     Config
	client  *http.Client
	trimmer *Trimmer
	log     Logger
}

func NewAcquirer(cfg Config, opts ...Option) *Acquirer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}
	if cfg.Profile.Name == "" {
		cfg.Profile, _ = ResolveProfile(DefaultProfileName, nil)
	}

	a := &Acquirer{
		cfg:    cfg,
		client: http.DefaultClient,
		log:    logger.GetLogger().Named("audio"),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.trimmer == nil {
		a.trimmer = NewTrimmer(nil, "", a.log)
	}

	if cfg.Token == "" {
		a.log.Errorf("APIFY_API_TOKEN not set")
	} else {
		a.log.Infof("APIFY_API_TOKEN configured")
	}
	a.log.Infof("Using job profile %q (actor %s)", cfg.Profile.Name, cfg.Profile.Actor)
	return a
}

// Configured reports whether jobs can be submitted.
func (a *Acquirer) Configured() bool {
	return a.cfg.Token != "" && a.cfg.Profile.Actor != ""
}

// Paths returns the raw download path and the trimmed clip path for a scan.
func (a *Acquirer) Paths(videoID, scanID string) (raw, clip string) {
	base := fmt.Sprintf("beatlink_%s_%s", videoID, scanID)
	return filepath.Join(a.cfg.TempDir, base+"_raw.mp3"), filepath.Join(a.cfg.TempDir, base+".mp3")
}

// Acquire produces the trimmed clip for sourceURL. The raw download never
// outlives the call; the returned asset is owned by the caller.
func (a *Acquirer) Acquire(ctx context.Context, sourceURL, videoID, scanID string) (*models.AudioAsset, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	raw, clip := a.Paths(videoID, scanID)
	if err := utils.MakeDir(a.cfg.TempDir); err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	for _, p := range []string{raw, clip} {
		if err := utils.RemoveIfExists(p); err != nil {
			a.log.Warnf("Could not remove stale file %s: %v", p, err)
		}
	}

	a.log.Infof("Downloading audio for %s via job profile %q", videoID, a.cfg.Profile.Name)
	assetURL, err := a.submitJob(ctx, sourceURL, scanID)
	if err != nil {
		a.log.Errorf("Job failed for scan %s: %v", scanID, err)
		return nil, err
	}
	a.log.Debugf("scan %s: asset located", scanID)

	defer func() {
		if err := utils.RemoveIfExists(raw); err != nil {
			a.log.Warnf("Could not remove raw file %s: %v", raw, err)
			return
		}
		a.log.Debugf("scan %s: raw file removed", scanID)
	}()

	if err := a.download(ctx, assetURL, raw); err != nil {
		a.log.Errorf("Download failed for scan %s: %v", scanID, err)
		return nil, err
	}
	a.log.Debugf("scan %s: raw downloaded (%d KB)", scanID, utils.FileSize(raw)/1024)

	if err := a.trimmer.Trim(ctx, raw, clip); err != nil {
		a.log.Errorf("Trim failed for scan %s: %v", scanID, err)
		return nil, err
	}
	a.log.Debugf("scan %s: trimmed", scanID)

	asset := &models.AudioAsset{
		Path:      clip,
		SizeBytes: utils.FileSize(clip),
		VideoID:   videoID,
		ScanID:    scanID,
	}
	a.log.Infof("Audio ready: %s (%d KB)", clip, asset.SizeBytes/1024)
	return asset, nil
}

func (a *Acquirer) jobURL() string {
	return fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?%s",
		a.cfg.BaseURL, url.PathEscape(a.cfg.Profile.Actor), url.Values{"token": {a.cfg.Token}}.Encode())
}

func (a *Acquirer) submitJob(ctx context.Context, sourceURL, scanID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.JobTimeout)
	defer cancel()

	body, err := json.Marshal(a.cfg.Profile.Payload(sourceURL))
	if err != nil {
		return "", fmt.Errorf("encoding job input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.jobURL(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	a.log.Debugf("scan %s: job submitted", scanID)
	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("job timed out after %s: %w", a.cfg.JobTimeout, ctx.Err())
		}
		return "", fmt.Errorf("submitting job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1000))
		return "", fmt.Errorf("job service status %d: %s", resp.StatusCode, snippet)
	}

	var items []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return "", fmt.Errorf("decoding job result: %w", err)
	}
	if len(items) == 0 {
		return "", ErrNoResults
	}

	assetURL, field, ok := a.cfg.Profile.AssetURL(items[0])
	if !ok {
		keys := make([]string, 0, len(items[0]))
		for k := range items[0] {
			keys = append(keys, k)
		}
		return "", fmt.Errorf("%w (available fields: %v)", ErrNoAssetURL, keys)
	}
	a.log.Debugf("Found download URL in field %q", field)
	return assetURL, nil
}

func (a *Acquirer) download(ctx context.Context, assetURL, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return fmt.Errorf("building download request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("asset download status %d", resp.StatusCode)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return f.Close()
}
