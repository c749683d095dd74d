package audio

import (
	"encoding/json"
	"testing"
)

func TestAssetURLProbeOrder(t *testing.T) {
	p, err := ResolveProfile("", nil)
	if err != nil {
		t.Fatalf("ResolveProfile: %v", err)
	}

	tests := []struct {
		name      string
		item      map[string]any
		wantURL   string
		wantField string
		wantOK    bool
	}{
		{"earlier field wins", map[string]any{"audioUrl": "a", "url": "u"}, "u", "url", true},
		{"empty string skipped", map[string]any{"downloadUrl": "", "fileUrl": "f"}, "f", "fileUrl", true},
		{"non-string skipped", map[string]any{"url": 42.0, "link": "l"}, "l", "link", true},
		{"last field", map[string]any{"mp3File": "m"}, "m", "mp3File", true},
		{"nothing usable", map[string]any{"title": "x"}, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, field, ok := p.AssetURL(tt.item)
			if got != tt.wantURL || field != tt.wantField || ok != tt.wantOK {
				t.Errorf("AssetURL = (%q, %q, %v), want (%q, %q, %v)", got, field, ok, tt.wantURL, tt.wantField, tt.wantOK)
			}
		})
	}
}

func TestPayloadShapes(t *testing.T) {
	const src = "https://youtu.be/dQw4w9WgXcQ"
	tests := []struct {
		profile string
		want    string
	}{
		{"mp3", `{"format":"mp3","quality":"360","urls":[{"url":"` + src + `"}]}`},
		{"start-urls", `{"format":"mp3","quality":"360","startUrls":[{"url":"` + src + `"}]}`},
		{"video-urls", `{"downloadFormat":"mp3","quality":"360","videoUrls":["` + src + `"]}`},
	}
	for _, tt := range tests {
		p, err := ResolveProfile(tt.profile, nil)
		if err != nil {
			t.Fatalf("ResolveProfile(%s): %v", tt.profile, err)
		}
		b, err := json.Marshal(p.Payload(src))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != tt.want {
			t.Errorf("%s payload = %s, want %s", tt.profile, b, tt.want)
		}
	}
}

func TestResolveProfileOverrides(t *testing.T) {
	custom := []JobProfile{
		{Name: "mp3", Quality: "720"},
		{Name: "mine", Actor: "me~downloader", PayloadShape: ShapeVideoURLs, AssetFields: []string{"result"}},
	}

	p, err := ResolveProfile("mp3", custom)
	if err != nil {
		t.Fatalf("ResolveProfile: %v", err)
	}
	if p.Quality != "720" || p.Actor != "marielise.dev~youtube-video-downloader" || p.Format != "mp3" {
		t.Errorf("override not merged: %+v", p)
	}

	p, err = ResolveProfile("mine", custom)
	if err != nil {
		t.Fatalf("ResolveProfile: %v", err)
	}
	if p.Actor != "me~downloader" || len(p.AssetFields) != 1 || p.AssetFields[0] != "result" {
		t.Errorf("custom profile not resolved: %+v", p)
	}

	if _, err := ResolveProfile("missing", custom); err == nil {
		t.Error("expected error for unknown profile")
	}
	if _, err := ResolveProfile("bad", []JobProfile{{Name: "bad", PayloadShape: "xml"}}); err == nil {
		t.Error("expected error for unknown payload shape")
	}
}

func TestBuiltinProfiles(t *testing.T) {
	got := BuiltinProfiles()
	want := []string{"mp3", "start-urls", "video-urls"}
	if len(got) != len(want) {
		t.Fatalf("BuiltinProfiles = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("BuiltinProfiles[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
