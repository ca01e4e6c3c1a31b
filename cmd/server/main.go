package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/budhitree/nexus-art-gallery/internal/bootstrap"
	"github.com/budhitree/nexus-art-gallery/internal/config"
	userRepo "github.com/budhitree/nexus-art-gallery/internal/modules/user/repository"
	user "github.com/budhitree/nexus-art-gallery/internal/modules/user/service"
	"github.com/budhitree/nexus-art-gallery/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docStore, err := server.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}

	if cfg.AdminPassword != "" {
		users := user.NewUserService(userRepo.NewUserRepository(docStore))
		if _, err := bootstrap.SeedAdminUser(ctx, users, cfg.AdminPassword, ""); err != nil {
			log.Fatalf("Failed to seed admin user: %v", err)
		}
	}

	imageStorage, err := server.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s storage: %v", cfg.StorageDriver, err)
	}

	redisClient := server.OpenRedis(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, server.Deps{
		Store:   docStore,
		Storage: imageStorage,
		Redis:   redisClient,
		Search:  server.OpenSearch(cfg),
	})
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	if err := srv.Serve(ctx); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
	log.Println("👋 Server stopped")
}
