package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/config"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Invalid environment configuration, using defaults: %v", err)
		cfg = config.Default()
	}

	// Flags override the environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	host := flag.String("host", cfg.Server.Host, "Listen address")
	driver := flag.String("store", cfg.Store.Driver, "Content store: memory, sqlite, postgres or rest")
	dsn := flag.String("dsn", cfg.Store.DSN, "Database DSN for sqlite and postgres")
	seed := flag.String("seed", cfg.Store.SeedGlob, "Seed file glob for memory and sqlite")
	storeURL := flag.String("store-url", cfg.Store.URL, "REST store base URL")
	cache := flag.Bool("cache", cfg.Cache.Enabled, "Enable the redis read-through cache")
	redisAddr := flag.String("redis", cfg.Cache.Addr, "Redis address")
	lockViz := flag.Bool("lock-viz", cfg.Frames.LockVisualization, "Pin visualization frames to their container")
	strict := flag.Bool("strict-origin", cfg.Frames.StrictOrigin, "Only accept size reports from the host origin")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Server.Host = *host
	cfg.Store.Driver = *driver
	cfg.Store.DSN = *dsn
	cfg.Store.SeedGlob = *seed
	cfg.Store.URL = *storeURL
	cfg.Cache.Enabled = *cache
	cfg.Cache.Addr = *redisAddr
	cfg.Frames.LockVisualization = *lockViz
	cfg.Frames.StrictOrigin = *strict
	cfg.Logging.Development = *dev
	if *dev {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		if err != nil {
			_ = srv.Close()
			log.Fatalf("Server error: %v", err)
		}
	}
}
