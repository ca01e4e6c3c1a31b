package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryConfig selects the account and folder artworks are uploaded to.
// With every credential empty the SDK falls back to CLOUDINARY_URL.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage creates a Cloudinary-backed ImageStorage.
func NewCloudinaryStorage(cfg CloudinaryConfig) (ImageStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cfg.CloudName != "" && cfg.APIKey != "" && cfg.APISecret != "" {
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	} else {
		// cloudinary.New() reads CLOUDINARY_URL from the environment.
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true
	if cfg.CloudName != "" {
		cld.Config.Cloud.CloudName = cfg.CloudName
	}

	folder := cfg.Folder
	if folder == "" {
		folder = "nexus-gallery"
	}
	return &cloudinaryStorage{cld: cld, folder: folder}, nil
}

// Put uploads the image and returns its secure URL. The file name (without
// extension) becomes the public id, so names must already be unique.
func (s *cloudinaryStorage) Put(ctx context.Context, r io.Reader, fileName string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	base := filepath.Base(fileName)
	params := uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       strings.TrimSuffix(base, filepath.Ext(base)),
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(false),
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}
	return resp.SecureURL, nil
}

// Import downloads into a temp file first, then uploads it.
func (s *cloudinaryStorage) Import(ctx context.Context, fileName string, fill func(localPath string) error) (string, error) {
	return importViaTemp(ctx, s, fileName, fill)
}

func (s *cloudinaryStorage) Owns(imagePath string) bool {
	u, err := url.Parse(imagePath)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Host, "cloudinary.com") && s.extractPublicID(imagePath) != ""
}

func (s *cloudinaryStorage) Delete(ctx context.Context, imagePath string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID := s.extractPublicID(imagePath)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", imagePath)
	}

	// Invalidate clears the CDN cache too.
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}
	return nil
}

// extractPublicID pulls the public ID out of a Cloudinary delivery URL.
// https://res.cloudinary.com/demo/image/upload/v123456789/folder/sample.jpg -> folder/sample
func (s *cloudinaryStorage) extractPublicID(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}
	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return ""
	}

	relevant := parts[uploadIndex+1:]
	if len(relevant) > 0 && isVersionSegment(relevant[0]) {
		relevant = relevant[1:]
	}
	if len(relevant) == 0 {
		return ""
	}

	withExt := strings.Join(relevant, "/")
	return strings.TrimSuffix(withExt, filepath.Ext(withExt))
}

func isVersionSegment(p string) bool {
	if len(p) < 2 || p[0] != 'v' {
		return false
	}
	for _, r := range p[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// importViaTemp is shared by remote blob areas that need the bytes on disk first.
func importViaTemp(ctx context.Context, dst ImageStorage, fileName string, fill func(localPath string) error) (string, error) {
	dir, err := os.MkdirTemp("", "gallery-import-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	local := filepath.Join(dir, safeFilename(fileName))
	if err := fill(local); err != nil {
		return "", err
	}

	f, err := os.Open(local)
	if err != nil {
		return "", fmt.Errorf("open imported file: %w", err)
	}
	defer f.Close()

	return dst.Put(ctx, f, fileName)
}
