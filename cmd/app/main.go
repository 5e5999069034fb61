package main

import (
	"flag"
	"log"
	"os"

	"StockCast/internal/di"
	"StockCast/pkg/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config; env vars override it")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Printf("load config %s: %v", *configPath, err)
		return 1
	}
	log.Printf("stockcast starting env=%s port=%d model=%s clickhouse=%t kafka=%t redis=%t",
		cfg.Environment, cfg.Server.Port, cfg.Model.URL,
		cfg.ClickHouse.Enabled, cfg.Kafka.Enabled, cfg.Cache.Redis.Enabled)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Printf("init: %v", err)
		return 1
	}
	defer cleanup()

	// blocks until SIGINT/SIGTERM
	if err := app.Run(); err != nil {
		log.Printf("stockcast stopped: %v", err)
		return 1
	}
	return 0
}
