package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/menta2k/smile-contour/internal/config"
	"github.com/menta2k/smile-contour/internal/server"
	"github.com/menta2k/smile-contour/pkg/curve"
)

func main() {
	var configPath, addr string
	var verbose bool

	flag.StringVar(&configPath, "config", config.GetConfigPath(), "config file (defaults are used when it does not exist)")
	flag.StringVar(&addr, "addr", "", "listen address (default from config)")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	cfg, err := config.LoadFromFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		log.Fatal(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store := server.NewStore(cfg.Server.MaxSessions, time.Duration(cfg.Server.SessionTTLMs)*time.Millisecond, logger)
	h := server.NewHandler(store, server.Defaults{
		Curve:     curve.Options{Alpha: cfg.Curve.Alpha, Tension: cfg.Curve.Tension},
		HitRadius: cfg.Editor.HitRadius,
		Threshold: cfg.Match.Threshold,
	}, logger)

	if err := server.RunServer(cfg.Server.Addr, h); err != nil {
		log.Fatal(err)
	}
}
