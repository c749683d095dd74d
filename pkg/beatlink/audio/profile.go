package audio

import (
	"fmt"
	"sort"
)

// PayloadShape selects how the job input is laid out for an extraction actor.
type PayloadShape string

const (
	ShapeURLs      PayloadShape = "urls"       // {format, quality, urls:[{url}]}
	ShapeStartURLs PayloadShape = "start-urls" // {startUrls:[{url}], format, quality}
	ShapeVideoURLs PayloadShape = "video-urls" // {videoUrls:[url], downloadFormat, quality}
)

const DefaultProfileName = "mp3"

// DefaultAssetFields are the dataset item keys probed, in order, for the
// download link of the extracted audio.
var DefaultAssetFields = []string{
	"downloadUrl",
	"url",
	"audioUrl",
	"fileUrl",
	"mp3Url",
	"link",
	"file",
	"audio",
	"downloadLink",
	"mp3File",
}

// JobProfile describes one extraction actor: where to send the job, how to
// shape its input and where to look for the asset link in its output.
type JobProfile struct {
	Name         string       `toml:"name"`
	Actor        string       `toml:"actor"`
	Format       string       `toml:"format"`
	Quality      string       `toml:"quality"`
	PayloadShape PayloadShape `toml:"payload_shape"`
	AssetFields  []string     `toml:"asset_fields"`
}

var builtinProfiles = map[string]JobProfile{
	"mp3": {
		Name:         "mp3",
		Actor:        "marielise.dev~youtube-video-downloader",
		Format:       "mp3",
		Quality:      "360",
		PayloadShape: ShapeURLs,
	},
	// The two actors below have no default; set `actor` in the config file.
	"start-urls": {
		Name:         "start-urls",
		Format:       "mp3",
		Quality:      "360",
		PayloadShape: ShapeStartURLs,
	},
	"video-urls": {
		Name:         "video-urls",
		Format:       "mp3",
		Quality:      "360",
		PayloadShape: ShapeVideoURLs,
	},
}

// BuiltinProfiles returns the names of the bundled profiles, sorted.
func BuiltinProfiles() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveProfile picks the profile called name. Entries in custom replace
// built-in fields they set, or add new profiles. An empty name selects the
// default profile.
func ResolveProfile(name string, custom []JobProfile) (JobProfile, error) {
	if name == "" {
		name = DefaultProfileName
	}

	p, found := builtinProfiles[name]
	for _, c := range custom {
		if c.Name != name {
			continue
		}
		p = merge(p, c)
		found = true
	}
	if !found {
		return JobProfile{}, fmt.Errorf("unknown job profile %q", name)
	}

	p.Name = name
	if p.PayloadShape == "" {
		p.PayloadShape = ShapeURLs
	}
	if len(p.AssetFields) == 0 {
		p.AssetFields = DefaultAssetFields
	}
	return p, p.Validate()
}

func merge(base, over JobProfile) JobProfile {
	if over.Actor != "" {
		base.Actor = over.Actor
	}
	if over.Format != "" {
		base.Format = over.Format
	}
	if over.Quality != "" {
		base.Quality = over.Quality
	}
	if over.PayloadShape != "" {
		base.PayloadShape = over.PayloadShape
	}
	if len(over.AssetFields) > 0 {
		base.AssetFields = over.AssetFields
	}
	return base
}

// Validate checks the payload shape. A missing actor is reported by the
// acquirer at scan time so the service can still start.
func (p JobProfile) Validate() error {
	switch p.PayloadShape {
	case ShapeURLs, ShapeStartURLs, ShapeVideoURLs:
		return nil
	default:
		return fmt.Errorf("job profile %q: unknown payload shape %q", p.Name, p.PayloadShape)
	}
}

// Payload builds the job input for sourceURL.
func (p JobProfile) Payload(sourceURL string) map[string]any {
	switch p.PayloadShape {
	case ShapeStartURLs:
		return map[string]any{
			"startUrls": []map[string]string{{"url": sourceURL}},
			"format":    p.Format,
			"quality":   p.Quality,
		}
	case ShapeVideoURLs:
		return map[string]any{
			"videoUrls":      []string{sourceURL},
			"downloadFormat": p.Format,
			"quality":        p.Quality,
		}
	default:
		return map[string]any{
			"format":  p.Format,
			"quality": p.Quality,
			"urls":    []map[string]string{{"url": sourceURL}},
		}
	}
}

// AssetURL returns the first non-empty string found under the profile's
// asset fields, and the field it came from.
func (p JobProfile) AssetURL(item map[string]any) (string, string, bool) {
	fields := p.AssetFields
	if len(fields) == 0 {
		fields = DefaultAssetFields
	}
	for _, f := range fields {
		if s, ok := item[f].(string); ok && s != "" {
			return s, f, true
		}
	}
	return "", "", false
}
