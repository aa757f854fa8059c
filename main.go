package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yuuki.chat/config"
	"yuuki.chat/store"
)

func main() {
	cfg, err := config.LoadConfig(configDir())
	if err != nil {
		log.Fatalf("[MAIN] Failed to load configuration: %v", err)
	}

	modelReg, deployReg, err := config.BuildRegistries(cfg)
	if err != nil {
		log.Fatalf("[MAIN] Failed to build registries: %v", err)
	}
	log.Printf("[MAIN] Loaded %d models, %d deployments", len(modelReg.List()), len(deployReg.List()))

	db, err := store.OpenDB(dbPath())
	if err != nil {
		log.Fatalf("[MAIN] Failed to open conversation database: %v", err)
	}
	defer db.Close()

	convStore, err := store.NewStore(db)
	if err != nil {
		log.Fatalf("[MAIN] Failed to initialize conversation store: %v", err)
	}

	if err := InitAuditDB(); err != nil {
		log.Printf("[MAIN] Audit logging unavailable: %v", err)
	}

	gateway := NewChatGateway(modelReg, deployReg, demoToken())
	research := NewResearchClient(tavilyAPIKey())
	youtube := NewYouTubeClient(youtubeAPIKey())

	server := NewServer(gateway, modelReg, research, youtube, convStore, httpPort())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("[MAIN] %v", err)
		}
	case sig := <-sigCh:
		log.Printf("[MAIN] Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("[MAIN] Shutdown error: %v", err)
		}
	}
}
