package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/himanishpuri/BeatLink/pkg/beatlink/audio"
)

var envKeys = []string{
	"YOUTUBE_API_KEY", "APIFY_API_TOKEN", "ACR_HOST", "ACR_ACCESS_KEY", "ACR_SECRET_KEY",
	"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "PORT", "BEATLINK_TEMP_DIR",
	"BEATLINK_PROFILE", "FFMPEG_PATH", "LOG_LEVEL",
}

// isolate clears every variable Load reads and runs the test from an empty
// directory so no stray .env file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 5000 || cfg.Apify.Profile != "mp3" || cfg.Spotify.Concurrency != 4 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	for _, s := range cfg.Status() {
		if s.Set {
			t.Errorf("%s should be reported missing", s.Name)
		}
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "beatlink.toml")
	os.WriteFile(path, []byte(`
[server]
port = 8080

[youtube]
api_key = "from-file"

[apify]
profile = "mine"

[[apify.profiles]]
name = "mine"
actor = "me~downloader"
payload_shape = "start-urls"
asset_fields = ["result"]
`), 0o644)

	t.Setenv("YOUTUBE_API_KEY", "from-env")
	t.Setenv("PORT", "9090")
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.YouTube.APIKey != "from-env" {
		t.Errorf("env should win over file, got %q", cfg.YouTube.APIKey)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}

	p, err := cfg.JobProfile()
	if err != nil {
		t.Fatalf("JobProfile: %v", err)
	}
	if p.Actor != "me~downloader" || p.PayloadShape != audio.ShapeStartURLs {
		t.Errorf("unexpected profile %+v", p)
	}

	status := map[string]bool{}
	for _, s := range cfg.Status() {
		status[s.Name] = s.Set
	}
	if !status["YOUTUBE_API_KEY"] || !status["Spotify credentials"] || status["APIFY_API_TOKEN"] {
		t.Errorf("unexpected status %v", status)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	os.Unsetenv("APIFY_API_TOKEN")
	os.WriteFile(filepath.Join(dir, ".env"), []byte("APIFY_API_TOKEN=dotenv-token\n"), 0o644)
	t.Cleanup(func() { os.Unsetenv("APIFY_API_TOKEN") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Apify.Token != "dotenv-token" {
		t.Errorf("token = %q, want value from .env", cfg.Apify.Token)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := isolate(t)

	t.Setenv("PORT", "http")
	if _, err := Load(""); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
	t.Setenv("PORT", "")

	t.Setenv("BEATLINK_PROFILE", "nope")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("expected unknown profile error, got %v", err)
	}
	t.Setenv("BEATLINK_PROFILE", "")

	path := filepath.Join(dir, "bad.toml")
	os.WriteFile(path, []byte("[server\nport = "), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "absent.toml")); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "sample.toml")
	os.WriteFile(path, []byte(SampleConfig()), 0o644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if cfg.Apify.JobTimeoutSeconds != 180 || cfg.Audio.FFmpegPath != "ffmpeg" {
		t.Errorf("unexpected values %+v", cfg)
	}
}

func TestNewServiceWithoutCredentials(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.NewService(context.Background()); err != nil {
		t.Fatalf("NewService: %v", err)
	}
}
