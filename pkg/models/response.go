package models

// UploadedBeatDTO describes the submitted video
type UploadedBeatDTO struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	YouTubeURL string `json:"youtube_url"`
	Views      uint64 `json:"views_number"`
	Thumbnail  string `json:"thumbnail"`
}

// MatchedSongDTO represents a single identified song
type MatchedSongDTO struct {
	Title       string  `json:"title"`
	Artists     string  `json:"artists"`
	SpotifyURL  string  `json:"spotify_url"`
	CoverURL    string  `json:"cover_url"`
	ReleaseDate string  `json:"release_date"`
	Label       string  `json:"label"`
	Score       float64 `json:"score"`
}

// ScanResponse is the wire form of a successful scan, shared by the HTTP
// API and the CLI.
type ScanResponse struct {
	Success      bool             `json:"success"`
	UploadedBeat UploadedBeatDTO  `json:"uploaded_beat"`
	MatchedSongs []MatchedSongDTO `json:"matched_songs"`
	ResultsCount int              `json:"results_count"`
}

// NewScanResponse converts a report into its wire form. MatchedSongs is
// never nil so an empty result encodes as [].
func NewScanResponse(report *ScanReport) ScanResponse {
	songs := make([]MatchedSongDTO, len(report.Matches))
	for i, m := range report.Matches {
		songs[i] = MatchedSongDTO{
			Title:       m.Title,
			Artists:     m.Artists,
			SpotifyURL:  m.CatalogURL,
			CoverURL:    m.CoverURL,
			ReleaseDate: m.ReleaseDate,
			Label:       m.Label,
			Score:       m.Score,
		}
	}

	return ScanResponse{
		Success: true,
		UploadedBeat: UploadedBeatDTO{
			Title:      report.Video.Title,
			Author:     report.Video.Author,
			YouTubeURL: report.SourceURL,
			Views:      report.Video.Views,
			Thumbnail:  report.Video.Thumbnail,
		},
		MatchedSongs: songs,
		ResultsCount: len(songs),
	}
}
