package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/mgillr/nextalent-regwatch/internal/app"
	"github.com/mgillr/nextalent-regwatch/internal/config"
	"github.com/mgillr/nextalent-regwatch/internal/output"
)

func main() {
	_ = godotenv.Load() // optional .env for local runs

	configPath := flag.String("config", getEnv("REGWATCH_CONFIG", "regwatch.yml"), "path to sources config")
	outDir := flag.String("out", getEnv("REGWATCH_OUT", "out"), "output directory for snapshot files")
	runTimeout := flag.Duration("timeout", 5*time.Minute, "whole-run timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *runTimeout)
	defer cancelTimeout()

	snap := app.New(cfg).Run(ctx)

	if err := output.Write(*outDir, snap); err != nil {
		log.Fatalf("write snapshot: %v", err)
	}
	log.Printf("snapshot written to %s (%d sections)", *outDir, len(snap.Sections))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
