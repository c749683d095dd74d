package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/himanishpuri/BeatLink/internal/config"
	"github.com/himanishpuri/BeatLink/pkg/logger"
)

var (
	configPath     string
	port           int
	allowedOrigins string
)

func init() {
	flag.StringVar(&configPath, "config", getEnvOrDefault("BEATLINK_CONFIG", "beatlink.toml"), "Path to TOML config file")
	flag.IntVar(&port, "port", 0, "HTTP server port (overrides config and PORT)")
	flag.StringVar(&allowedOrigins, "origins", "", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	origins := cfg.Server.AllowedOrigins
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	log := logger.GetLogger()
	log.Infof("Starting BeatLink backend")
	for _, s := range cfg.Status() {
		if s.Set {
			log.Infof("%s: Set", s.Name)
		} else {
			log.Warnf("%s: Missing", s.Name)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := cfg.NewService(ctx)
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}

	server := NewServer(service, &ServerConfig{
		Port:           cfg.Server.Port,
		AllowedOrigins: origins,
	})
	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
