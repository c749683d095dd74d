package beatlink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/himanishpuri/BeatLink/pkg/beatlink/acrcloud"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/audio"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/spotify"
	"github.com/himanishpuri/BeatLink/pkg/beatlink/youtube"
	"github.com/himanishpuri/BeatLink/pkg/logger"
	"github.com/himanishpuri/BeatLink/pkg/models"
)

const scanURL = "https://www.youtube.com/watch?v=abcdefghijk"

// copyRunner plays ffmpeg by copying the input file to the output path.
type copyRunner struct{}

func (copyRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	data, err := os.ReadFile(args[1])
	if err != nil {
		return nil, err
	}
	return nil, os.WriteFile(args[len(args)-1], data, 0o644)
}

// upstreams fakes every external service a scan talks to on one server.
type upstreams struct {
	srv           *httptest.Server
	identifyBody  string
	holdJob       bool
	identifyCalls int32
	catalogCalls  int32
}

func newUpstreams(t *testing.T) *upstreams {
	t.Helper()
	u := &upstreams{identifyBody: `{"status":{"code":1001,"msg":"No result"}}`}

	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items":[{"snippet":{"title":"Dark Beat","channelTitle":"Prod",
			"thumbnails":{"high":{"url":"https://i.ytimg.com/hq.jpg"}}},
			"statistics":{"viewCount":"42"}}]}`)
	})
	mux.HandleFunc("/v2/acts/", func(w http.ResponseWriter, r *http.Request) {
		if u.holdJob {
			// The server only notices the client hanging up once the body is read.
			io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
			return
		}
		fmt.Fprintf(w, `[{"downloadUrl":"%s/files/full.mp3"}]`, u.srv.URL)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ID3 not really audio")
	})
	mux.HandleFunc("/v1/identify", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.identifyCalls, 1)
		io.WriteString(w, u.identifyBody)
	})
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/v1/tracks/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.catalogCalls, 1)
		io.WriteString(w, `{"album":{"label":"XL","release_date":"2019-05-17",
			"images":[{"url":"https://i.scdn.co/640","height":640},{"url":"https://i.scdn.co/300","height":300}]}}`)
	})

	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstreams) service(t *testing.T, jobTimeout time.Duration) Service {
	t.Helper()
	log := logger.Discard()

	meta, err := youtube.NewMetadataClient(context.Background(), youtube.Config{
		APIKey: "yt-key", Endpoint: u.srv.URL + "/", Logger: log,
	})
	if err != nil {
		t.Fatalf("NewMetadataClient: %v", err)
	}
	profile, err := audio.ResolveProfile("", nil)
	if err != nil {
		t.Fatalf("ResolveProfile: %v", err)
	}
	acq := audio.NewAcquirer(audio.Config{
		Token: "job-token", BaseURL: u.srv.URL, TempDir: t.TempDir(), Profile: profile, JobTimeout: jobTimeout,
	}, audio.WithTrimmer(audio.NewTrimmer(copyRunner{}, "", log)), audio.WithLogger(log))
	matcher := acrcloud.NewMatcher(acrcloud.Config{
		Host: "identify.example", AccessKey: "ak", SecretKey: "sk", BaseURL: u.srv.URL,
	}, acrcloud.WithLogger(log))
	tokens := spotify.NewTokenCache(spotify.TokenConfig{
		ClientID: "id", ClientSecret: "secret", TokenURL: u.srv.URL + "/api/token", Logger: log,
	})
	enricher := spotify.NewEnricher(tokens, spotify.WithAPIBase(u.srv.URL), spotify.WithLogger(log))

	svc, err := NewService(
		WithMetadataLookup(meta),
		WithAcquirer(acq),
		WithMatcher(matcher),
		WithEnricher(enricher),
		WithLogger(log),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestScanEndToEndNoMatch(t *testing.T) {
	u := newUpstreams(t)
	report, err := u.service(t, 0).Scan(context.Background(), scanURL)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if report.Video.Title != "Dark Beat" || report.Video.Author != "Prod" || report.Video.Views != 42 {
		t.Errorf("unexpected video %+v", report.Video)
	}
	if report.Video.Thumbnail != "https://i.ytimg.com/hq.jpg" {
		t.Errorf("thumbnail = %q", report.Video.Thumbnail)
	}
	if report.ResultsCount != 0 || len(report.Matches) != 0 {
		t.Errorf("expected no matches, got %+v", report.Matches)
	}
	if atomic.LoadInt32(&u.catalogCalls) != 0 {
		t.Error("catalog should not be queried without matches")
	}
}

func TestScanEndToEndEnrichedMatch(t *testing.T) {
	u := newUpstreams(t)
	u.identifyBody = `{"status":{"code":0,"msg":"Success"},"metadata":{"music":[
		{"title":"Real Song","score":92,"artists":[{"name":"Artist"},{"name":"Feat"}],
		 "external_metadata":{"spotify":{"track":{"id":"trk123"}}}},
		{"title":"Weak","score":60,"artists":[{"name":"Nobody"}]}
	]}}`

	report, err := u.service(t, 0).Scan(context.Background(), scanURL)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.ResultsCount != 1 || len(report.Matches) != 1 {
		t.Fatalf("expected one match, got %+v", report.Matches)
	}

	got := report.Matches[0]
	want := models.EnrichedTrack{
		FingerprintMatch: models.FingerprintMatch{
			Title: "Real Song", Artists: "Artist, Feat", CatalogID: "spotify:track:trk123", Score: 92,
		},
		CatalogURL:  "https://open.spotify.com/track/trk123",
		CoverURL:    "https://i.scdn.co/300",
		ReleaseDate: "2019-05-17",
		Label:       "XL",
	}
	if got != want {
		t.Errorf("track = %+v\nwant    %+v", got, want)
	}
}

func TestScanEndToEndJobTimeout(t *testing.T) {
	u := newUpstreams(t)
	u.holdJob = true

	_, err := u.service(t, 50*time.Millisecond).Scan(context.Background(), scanURL)
	var se *models.ScanError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScanError, got %v", err)
	}
	if se.Kind != models.KindDownloadFailed || se.Category != models.CategoryUpstreamUnavailable {
		t.Errorf("unexpected error %+v", se)
	}
	if atomic.LoadInt32(&u.identifyCalls) != 0 {
		t.Error("fingerprint service should not be called")
	}
}
