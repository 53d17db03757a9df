package main

import (
	"context"
	"flag"
	"log"
	"os"

	"OmniTrade/internal/di"
	"OmniTrade/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s kafka=%t cache=%s policy=%s", cfg.Environment, cfg.Kafka.Enabled, cfg.Cache.Backend, cfg.Advice.Policy)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	err = app.Run(context.Background())
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
