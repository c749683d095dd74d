package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/himanishpuri/BeatLink/pkg/models"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"YOUTUBE_API_KEY", "APIFY_API_TOKEN", "ACR_HOST", "ACR_ACCESS_KEY", "ACR_SECRET_KEY",
		"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "PORT", "BEATLINK_PROFILE",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestConfigCommandReportsCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("YOUTUBE_API_KEY", "key")

	out, err := runCLI(t, "config", "--config", filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{
		"YOUTUBE_API_KEY:", "Set",
		"APIFY_API_TOKEN:", "Missing",
		"Job profile:", "mp3",
		"Built-in profiles:", "mp3, start-urls, video-urls",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigSample(t *testing.T) {
	out, err := runCLI(t, "config", "sample")
	if err != nil {
		t.Fatalf("config sample: %v", err)
	}
	if !strings.Contains(out, "[apify]") {
		t.Errorf("unexpected sample:\n%s", out)
	}
}

func TestScanRequiresURL(t *testing.T) {
	if _, err := runCLI(t, "scan"); err == nil {
		t.Error("expected argument error")
	}
}

func TestScanReportsInvalidURL(t *testing.T) {
	clearEnv(t)
	_, err := runCLI(t, "scan", "https://example.com/watch")
	if err == nil || !strings.Contains(err.Error(), "invalid_url") {
		t.Fatalf("expected invalid_url error, got %v", err)
	}
}

func TestPrintReport(t *testing.T) {
	report := models.NewScanReport("id", "https://youtu.be/abcdefghijk",
		models.VideoMetadata{Title: "Beat", Author: "Prod", Views: 3},
		[]models.EnrichedTrack{{FingerprintMatch: models.FingerprintMatch{Title: "Song", Artists: "A", Score: 90}}})

	var buf bytes.Buffer
	if err := printReport(&buf, report); err != nil {
		t.Fatalf("printReport: %v", err)
	}

	var got models.ScanResponse
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !got.Success || got.ResultsCount != 1 || got.MatchedSongs[0].Title != "Song" || got.UploadedBeat.Views != 3 {
		t.Errorf("unexpected report %+v", got)
	}

	buf.Reset()
	printSummary(&buf, models.NewScanReport("id", "u", models.VideoMetadata{Title: "Beat"}, nil))
	if !strings.Contains(buf.String(), "No matches found") {
		t.Errorf("unexpected summary %q", buf.String())
	}
}
