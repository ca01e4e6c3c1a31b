package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/config"
	"github.com/budhitree/nexus-art-gallery/internal/middleware"
	"github.com/budhitree/nexus-art-gallery/internal/modules/feed"
	"github.com/budhitree/nexus-art-gallery/internal/modules/search"
	"github.com/budhitree/nexus-art-gallery/internal/scheduler"
	"github.com/budhitree/nexus-art-gallery/internal/store"
	"github.com/budhitree/nexus-art-gallery/pkg/storage"

	artworkHttp "github.com/budhitree/nexus-art-gallery/internal/modules/artwork/delivery/http"
	artworkRepo "github.com/budhitree/nexus-art-gallery/internal/modules/artwork/repository"
	artworkService "github.com/budhitree/nexus-art-gallery/internal/modules/artwork/service"

	commitHttp "github.com/budhitree/nexus-art-gallery/internal/modules/commit/delivery/http"
	commitService "github.com/budhitree/nexus-art-gallery/internal/modules/commit/service"

	generationHttp "github.com/budhitree/nexus-art-gallery/internal/modules/generation/delivery/http"
	"github.com/budhitree/nexus-art-gallery/internal/modules/generation/provider"
	generationService "github.com/budhitree/nexus-art-gallery/internal/modules/generation/service"

	userHttp "github.com/budhitree/nexus-art-gallery/internal/modules/user/delivery/http"
	userRepo "github.com/budhitree/nexus-art-gallery/internal/modules/user/repository"
	userService "github.com/budhitree/nexus-art-gallery/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
)

// Deps are the external resources the server is built on. Redis and Search
// may be nil.
type Deps struct {
	Store   *store.Store
	Storage storage.ImageStorage
	Redis   *redis.Client
	Search  meilisearch.ServiceManager
}

type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	redisClient *redis.Client
	hub         *feed.Hub
	scheduler   *scheduler.Scheduler
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	userRepository := userRepo.NewUserRepository(deps.Store)
	userSvc := userService.NewUserService(userRepository)
	userHandler := userHttp.NewUserHandler(userSvc)

	// Gallery event listeners
	hub := feed.NewHub()
	artworkOpts := []artworkService.Option{
		artworkService.WithListener(feed.NewPublisher(hub, deps.Redis)),
	}
	var searcher search.Searcher
	var indexer *search.Indexer
	if deps.Search != nil {
		indexer = search.NewIndexer(deps.Search)
		searcher = indexer
		artworkOpts = append(artworkOpts, artworkService.WithListener(indexer))
	}

	artworkSvc := artworkService.NewArtworkService(artworkRepo.NewArtworkRepository(deps.Store), userRepository, deps.Storage, artworkOpts...)
	artworkHandler := artworkHttp.NewArtworkHandler(artworkSvc)

	generator := provider.NewClient(provider.Config{
		APIKey:          cfg.VolcAPIKey,
		EndpointID:      cfg.VolcSeedreamEndpoint,
		APIURL:          cfg.VolcAPIURL,
		Timeout:         cfg.GenerationTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
	})
	generationHandler := generationHttp.NewGenerationHandler(generationService.NewGenerationService(generator))

	commitSvc := commitService.NewCommitService(artworkSvc, deps.Storage, generator, cfg.CommitMaxItems)
	commitHandler := commitHttp.NewCommitHandler(commitSvc)

	searchHandler := search.NewSearchHandler(searcher)
	feedHandler := feed.NewFeedHandler(hub)

	// Orphan blob sweep
	sched := scheduler.NewScheduler()
	if err := sched.Register(scheduler.NewSweepJob(artworkSvc, cfg.SweepSchedule, cfg.SweepGrace)); err != nil {
		return nil, err
	}

	if indexer != nil {
		go func() {
			ctx := context.Background()
			artworks, err := artworkSvc.ListGallery(ctx)
			if err != nil {
				log.Printf("❌ Failed to load gallery for search reindex: %v", err)
				return
			}
			if err := indexer.Index(ctx, artworks); err != nil {
				log.Printf("❌ Search reindex failed: %v", err)
			}
		}()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/gallery/ws"},
	}))

	if local, ok := deps.Storage.(*storage.LocalStorage); ok {
		router.Static(local.URLPrefix(), local.Dir())
	}

	api := router.Group("/api")
	{
		// Identity
		api.POST("/login", userHandler.Login)
		api.POST("/register", userHandler.Register)
		api.GET("/user/:userId", userHandler.GetProfile)
		api.PUT("/user/:userId", userHandler.UpdateProfile)

		// Artworks
		api.POST("/upload", artworkHandler.Upload)
		api.GET("/gallery", artworkHandler.GetGallery)
		api.GET("/gallery/search", searchHandler.Search)
		api.GET("/gallery/ws", feedHandler.Subscribe)
		api.DELETE("/artwork/:id", artworkHandler.DeleteArtwork)
		api.GET("/students", artworkHandler.GetStudents)

		// AI generation
		ai := api.Group("/ai")
		ai.POST("/generate", middleware.RateLimit(deps.Redis, "generate", cfg.RateLimitGenerate), generationHandler.Generate)
		ai.POST("/save-to-gallery", commitHandler.SaveToGallery)
	}

	return &Server{
		cfg:         cfg,
		engine:      router,
		redisClient: deps.Redis,
		hub:         hub,
		scheduler:   sched,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s.redisClient != nil {
		if err := feed.NewRelay(s.hub, s.redisClient).Start(ctx); err != nil {
			log.Printf("⚠️ Gallery feed relay disabled: %v", err)
		}
	}
	s.scheduler.Start()
	defer s.scheduler.Stop()
	defer s.hub.Close()

	httpServer := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("🚀 Nexus Art Gallery listening on :%s", s.cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowAll := len(origins) == 1 && origins[0] == "*"

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	// credentials cannot be combined with a wildcard origin
	if allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	router.Use(cors.New(corsCfg))
}
