package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/himanishpuri/BeatLink/pkg/beatlink/audio"
)

//go:embed sample_config.toml
var sampleConfig string

// SampleConfig returns an annotated example configuration file.
func SampleConfig() string {
	return sampleConfig
}

type Server struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type YouTube struct {
	APIKey   string `toml:"api_key"`
	Endpoint string `toml:"endpoint"`
}

// Apify configures the extraction job service.
type Apify struct {
	Token                  string             `toml:"token"`
	BaseURL                string             `toml:"base_url"`
	Profile                string             `toml:"profile"`
	Profiles               []audio.JobProfile `toml:"profiles"`
	JobTimeoutSeconds      int                `toml:"job_timeout_seconds"`
	DownloadTimeoutSeconds int                `toml:"download_timeout_seconds"`
}

type ACRCloud struct {
	Host           string `toml:"host"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type Spotify struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
	APIBase      string `toml:"api_base"`
	Concurrency  int    `toml:"concurrency"`
}

type Audio struct {
	TempDir    string `toml:"temp_dir"`
	FFmpegPath string `toml:"ffmpeg_path"`
}

type Logging struct {
	Level string `toml:"level"`
}

// Config is the full BeatLink configuration.
type Config struct {
	Server   Server   `toml:"server"`
	YouTube  YouTube  `toml:"youtube"`
	Apify    Apify    `toml:"apify"`
	ACRCloud ACRCloud `toml:"acrcloud"`
	Spotify  Spotify  `toml:"spotify"`
	Audio    Audio    `toml:"audio"`
	Logging  Logging  `toml:"logging"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:           5000,
			AllowedOrigins: []string{"*"},
		},
		Apify: Apify{
			BaseURL:                audio.DefaultBaseURL,
			Profile:                audio.DefaultProfileName,
			JobTimeoutSeconds:      180,
			DownloadTimeoutSeconds: 120,
		},
		ACRCloud: ACRCloud{TimeoutSeconds: 30},
		Spotify:  Spotify{Concurrency: 4},
		Audio: Audio{
			TempDir:    os.TempDir(),
			FFmpegPath: "ffmpeg",
		},
		Logging: Logging{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional TOML file at
// path, a .env file in the working directory and the environment, in that
// order of increasing precedence. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(&c.YouTube.APIKey, "YOUTUBE_API_KEY")
	setString(&c.Apify.Token, "APIFY_API_TOKEN")
	setString(&c.Apify.Profile, "BEATLINK_PROFILE")
	setString(&c.ACRCloud.Host, "ACR_HOST")
	setString(&c.ACRCloud.AccessKey, "ACR_ACCESS_KEY")
	setString(&c.ACRCloud.SecretKey, "ACR_SECRET_KEY")
	setString(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setString(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	setString(&c.Audio.TempDir, "BEATLINK_TEMP_DIR")
	setString(&c.Audio.FFmpegPath, "FFMPEG_PATH")
	setString(&c.Logging.Level, "LOG_LEVEL")

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks values that would otherwise fail at scan time.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Spotify.Concurrency <= 0 {
		return fmt.Errorf("spotify concurrency must be positive")
	}
	if _, err := c.JobProfile(); err != nil {
		return err
	}
	return nil
}

// JobProfile resolves the selected extraction profile.
func (c *Config) JobProfile() (audio.JobProfile, error) {
	return audio.ResolveProfile(c.Apify.Profile, c.Apify.Profiles)
}

// CredentialStatus reports whether one upstream is configured.
type CredentialStatus struct {
	Name string
	Set  bool
}

// Status lists every upstream credential group and whether it is set.
func (c *Config) Status() []CredentialStatus {
	return []CredentialStatus{
		{"YOUTUBE_API_KEY", c.YouTube.APIKey != ""},
		{"APIFY_API_TOKEN", c.Apify.Token != ""},
		{"ACR Cloud credentials", c.ACRCloud.Host != "" && c.ACRCloud.AccessKey != "" && c.ACRCloud.SecretKey != ""},
		{"Spotify credentials", c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""},
	}
}
