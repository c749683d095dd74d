package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/himanishpuri/BeatLink/pkg/logger"
)

const (
	DefaultTokenURL     = "https://accounts.spotify.com/api/token"
	DefaultTokenTimeout = 10 * time.Second

	// RefreshMargin is subtracted from the advertised lifetime so a token is
	// never handed out just before it expires.
	RefreshMargin = 60 * time.Second

	defaultExpiresIn = 3600 * time.Second
)

// ErrMissingCredentials is returned when no client id or secret is set.
var ErrMissingCredentials = errors.New("spotify client credentials not configured")

// TokenConfig configures a TokenCache.
type TokenConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Now          func() time.Time
	Logger       Logger
}

// TokenCache holds a single client-credentials bearer token and refreshes it
// lazily. It is safe for concurrent use; concurrent refreshes share one
// exchange.
type TokenCache struct {
	creds   clientcredentials.Config
	client  *http.Client
	timeout time.Duration
	now     func() time.Time
	log     Logger

	flight singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenCache(cfg TokenConfig) *TokenCache {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTokenTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger().Named("spotify")
	}

	return &TokenCache{
		creds: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		client:  cfg.HTTPClient,
		timeout: cfg.Timeout,
		now:     cfg.Now,
		log:     cfg.Logger,
	}
}

// Configured reports whether client credentials are present.
func (c *TokenCache) Configured() bool {
	return c.creds.ClientID != "" && c.creds.ClientSecret != ""
}

// Token returns the cached bearer token, exchanging client credentials for
// a new one when the cached token is missing or past its refresh point.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if tok, ok := c.cached(); ok {
		return tok, nil
	}
	if !c.Configured() {
		return "", ErrMissingCredentials
	}

	v, err, _ := c.flight.Do("token", func() (any, error) {
		if tok, ok := c.cached(); ok {
			return tok, nil
		}
		// Shared by every waiter, so one caller giving up must not cancel it.
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, true
	}
	return "", false
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)

	tok, err := c.creds.Token(ctx)
	if err != nil {
		c.Invalidate()
		c.log.Errorf("Failed to get Spotify token: %v", err)
		return "", fmt.Errorf("spotify token exchange: %w", err)
	}

	lifetime := defaultExpiresIn
	if secs, ok := tok.Extra("expires_in").(float64); ok && secs > 0 {
		lifetime = time.Duration(secs) * time.Second
	}

	c.mu.Lock()
	c.token = tok.AccessToken
	c.expiresAt = c.now().Add(lifetime - RefreshMargin)
	c.mu.Unlock()

	c.log.Infof("Spotify token refreshed")
	return tok.AccessToken, nil
}
