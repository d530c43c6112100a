package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"horao/internal/config"
	"horao/internal/handler"
	"horao/internal/hub"
	"horao/internal/metrics"
	"horao/internal/repository/sqlite"
	"horao/internal/service"
	"horao/internal/watcher"
)

func main() {
	// Command line flags; set flags win over the config file
	configPath := flag.String("config", "", "Config file (overrides $HORAO_CONFIG)")
	inventoryPath := flag.String("inventory", "", "Inventory YAML file")
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	once := flag.Bool("once", false, "Classify every network, print the results and exit")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	explicit := *configPath
	if explicit == "" {
		explicit = os.Getenv(config.EnvConfigPath)
	}
	cfg, layers, err := config.LoadLayers(config.SearchDirs(), config.RunModeFromEnv(), explicit)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *inventoryPath != "" {
		cfg.Inventory.Path = *inventoryPath
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("Starting horao...")
	for _, layer := range layers {
		log.Printf("Config layer: %s", layer)
	}
	log.Printf("Configuration:\n%s", cfg.Summary())

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	reg := metrics.DefaultRegistry()
	eventBus := service.NewEventBus()
	svc := service.NewNetworkService(repo, eventBus, reg, service.Options{
		History:  cfg.Database.History,
		LogLevel: cfg.Log.Level,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := runOnce(ctx, svc, cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Initialize SSE hub
	sseHub := hub.New()
	go sseHub.Run(ctx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()

	if cfg.Inventory.Path != "" {
		if _, err := svc.Reload(ctx, cfg.Inventory.Path); err != nil {
			log.Fatalf("Failed to load inventory: %v", err)
		}
		log.Printf("Loaded %d networks from %s", len(svc.List()), cfg.Inventory.Path)
	} else {
		count, err := svc.Restore(ctx)
		if err != nil {
			log.Fatalf("Failed to restore networks: %v", err)
		}
		if _, err := svc.ClassifyAll(ctx); err != nil {
			log.Printf("Classification errors: %v", err)
		}
		log.Printf("Restored %d networks from %s", count, cfg.Database.Path)
	}

	if cfg.Inventory.Path != "" && cfg.Inventory.Watch {
		w := watcher.New(cfg.Inventory.Path, func(ctx context.Context) {
			if _, err := svc.Reload(ctx, cfg.Inventory.Path); err != nil {
				log.Printf("Reload failed, keeping current networks: %v", err)
			}
		}).WithDebounce(cfg.Inventory.Debounce.Duration())

		go func() {
			if err := w.Watch(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Watcher stopped: %v", err)
			}
		}()
	}

	networkHandler := handler.NewNetworkHandler(svc)
	networkHandler.SetInventoryPath(cfg.Inventory.Path)

	server := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     handler.NewRouter(networkHandler, sseHub, reg),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	eventBus.Unsubscribe(eventChan)
	close(eventChan)

	log.Println("Server stopped")
}

// runOnce classifies the configured inventory and prints the results as JSON
func runOnce(ctx context.Context, svc *service.NetworkService, cfg *config.Config) error {
	if cfg.Inventory.Path == "" {
		return errors.New("-once requires an inventory (-inventory or inventory.path)")
	}

	results, err := svc.Reload(ctx, cfg.Inventory.Path)
	if err != nil {
		return fmt.Errorf("failed to classify inventory: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
