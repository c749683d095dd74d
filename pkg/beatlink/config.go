package beatlink

import "os"

type Config struct {
	TempDir  string
	Logger   Logger
	Metadata MetadataLookup
	Acquirer AudioAcquirer
	Matcher  FingerprintMatcher
	Enricher Enricher
}

type Option func(*Config)

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithMetadataLookup(m MetadataLookup) Option {
	return func(c *Config) {
		c.Metadata = m
	}
}

func WithAcquirer(a AudioAcquirer) Option {
	return func(c *Config) {
		c.Acquirer = a
	}
}

func WithMatcher(m FingerprintMatcher) Option {
	return func(c *Config) {
		c.Matcher = m
	}
}

func WithEnricher(e Enricher) Option {
	return func(c *Config) {
		c.Enricher = e
	}
}

func defaultConfig() *Config {
	return &Config{
		TempDir: os.TempDir(),
		Logger:  nil,
	}
}
