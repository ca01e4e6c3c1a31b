package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig points at a MinIO/S3 compatible bucket. PublicURL is the base
// artworks are served from, e.g. https://cdn.example.com/gallery.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// MinioStorage implements ImageStorage for MinIO/S3 compatible storage.
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStorage connects to MinIO and ensures the bucket exists.
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &MinioStorage{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

func (m *MinioStorage) Put(ctx context.Context, r io.Reader, fileName string) (string, error) {
	key := safeFilename(fileName)
	_, err := m.client.PutObject(ctx, m.bucket, key, r, -1, minio.PutObjectOptions{ContentType: contentTypeFor(key)})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return m.imagePath(key), nil
}

func (m *MinioStorage) Import(ctx context.Context, fileName string, fill func(localPath string) error) (string, error) {
	return importViaTemp(ctx, m, fileName, fill)
}

func (m *MinioStorage) Owns(imagePath string) bool {
	return strings.HasPrefix(imagePath, m.publicURL+"/")
}

// Delete removes an object. S3 treats removing a missing key as success.
func (m *MinioStorage) Delete(ctx context.Context, imagePath string) error {
	if !m.Owns(imagePath) {
		return nil
	}
	key := strings.TrimPrefix(imagePath, m.publicURL+"/")
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (m *MinioStorage) List(ctx context.Context) ([]BlobInfo, error) {
	var blobs []BlobInfo
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		blobs = append(blobs, BlobInfo{ImagePath: m.imagePath(obj.Key), ModTime: obj.LastModified})
	}
	return blobs, nil
}

func (m *MinioStorage) imagePath(key string) string {
	return m.publicURL + "/" + path.Clean(key)
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
