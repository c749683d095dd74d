package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewScanResponse(t *testing.T) {
	report := NewScanReport("scan", "https://youtu.be/abcdefghijk",
		VideoMetadata{Title: "Beat", Author: "Prod", Views: 7, Thumbnail: "https://i.ytimg.com/hq.jpg"},
		[]EnrichedTrack{{
			FingerprintMatch: FingerprintMatch{Title: "Song", Artists: "A, B", Score: 92},
			CatalogURL:       "https://open.spotify.com/track/x",
			CoverURL:         "https://i.scdn.co/300.jpg",
			ReleaseDate:      "2019-05-17",
			Label:            "XL",
		}})

	resp := NewScanResponse(report)
	if !resp.Success || resp.ResultsCount != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	want := MatchedSongDTO{
		Title:       "Song",
		Artists:     "A, B",
		SpotifyURL:  "https://open.spotify.com/track/x",
		CoverURL:    "https://i.scdn.co/300.jpg",
		ReleaseDate: "2019-05-17",
		Label:       "XL",
		Score:       92,
	}
	if resp.MatchedSongs[0] != want {
		t.Errorf("song = %+v, want %+v", resp.MatchedSongs[0], want)
	}
	beat := resp.UploadedBeat
	if beat.YouTubeURL != "https://youtu.be/abcdefghijk" || beat.Views != 7 || beat.Thumbnail == "" {
		t.Errorf("unexpected uploaded beat %+v", beat)
	}
}

func TestNewScanResponseEmptyMatchesEncodeAsArray(t *testing.T) {
	data, err := json.Marshal(NewScanResponse(NewScanReport("scan", "u", VideoMetadata{}, nil)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"matched_songs":[]`) {
		t.Errorf("matched_songs should encode as []: %s", data)
	}
}
