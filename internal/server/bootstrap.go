package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/config"
	"github.com/budhitree/nexus-art-gallery/internal/store"
	"github.com/budhitree/nexus-art-gallery/pkg/database"
	"github.com/budhitree/nexus-art-gallery/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
)

// OpenStore opens the document in postgres when DATABASE_URL is set and in
// the JSON data file otherwise.
func OpenStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	var backend store.Backend
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		gormBackend, err := store.NewGormBackend(db)
		if err != nil {
			return nil, fmt.Errorf("migrate documents table: %w", err)
		}
		backend = gormBackend
		log.Println("🗄️ Document store: postgres")
	} else {
		fileBackend, err := store.NewFileBackend(cfg.DataFile)
		if err != nil {
			return nil, err
		}
		backend = fileBackend
		log.Printf("🗄️ Document store: %s", fileBackend.Path())
	}
	return store.Open(ctx, backend)
}

func OpenStorage(ctx context.Context, cfg *config.Config) (storage.ImageStorage, error) {
	switch cfg.StorageDriver {
	case config.StorageCloudinary:
		return storage.NewCloudinaryStorage(storage.CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		})
	case config.StorageMinio:
		return storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
	default:
		return storage.NewLocalStorage(cfg.UploadsDir, cfg.UploadsURLPrefix)
	}
}

// OpenRedis returns nil when REDIS_URL is unset or the server is unreachable;
// the rate limiter and the cross-process feed are then disabled.
func OpenRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		log.Println("⚠️ REDIS_URL not set: rate limiting disabled, gallery feed is process-local")
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️ Invalid REDIS_URL, continuing without redis: %v", err)
		return nil
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable, continuing without redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	log.Println("✅ Connected to redis")
	return rdb
}

// OpenSearch returns nil when MEILISEARCH_HOST is unset.
func OpenSearch(cfg *config.Config) meilisearch.ServiceManager {
	host := cfg.MeiliSearchHost
	if host == "" {
		return nil
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	if cfg.MeiliMasterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}
	return meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
}
