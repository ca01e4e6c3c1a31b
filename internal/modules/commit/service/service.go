package commit

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	artwork "github.com/budhitree/nexus-art-gallery/internal/modules/artwork/service"
	"github.com/budhitree/nexus-art-gallery/internal/modules/commit/dto"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"github.com/budhitree/nexus-art-gallery/pkg/storage"
)

const DefaultMaxItems = 16

// Downloader fetches a generated image to a local path.
type Downloader interface {
	DownloadImage(ctx context.Context, url, destPath string) error
}

type CommitService interface {
	// CommitSelected downloads the selected images one at a time and commits
	// the ones that arrived in a single write. It fails only when none did.
	CommitSelected(ctx context.Context, input dto.CommitInput) (*dto.CommitResult, error)
}

type commitService struct {
	artworks   artwork.ArtworkService
	storage    storage.ImageStorage
	downloader Downloader
	maxItems   int
	now        func() time.Time
}

func NewCommitService(artworks artwork.ArtworkService, imageStorage storage.ImageStorage, downloader Downloader, maxItems int) CommitService {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &commitService{
		artworks:   artworks,
		storage:    imageStorage,
		downloader: downloader,
		maxItems:   maxItems,
		now:        time.Now,
	}
}

func (s *commitService) CommitSelected(ctx context.Context, input dto.CommitInput) (*dto.CommitResult, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperror.Wrap(apperror.ErrAuthRequired, "login required")
	}
	if len(input.SelectedIDs) == 0 {
		return nil, apperror.Wrap(apperror.ErrValidation, "no images selected")
	}

	selected := input.SelectedIDs
	if len(selected) > s.maxItems {
		log.Printf("⚠️ Commit for %s selected %d images, only the first %d are saved", userID, len(selected), s.maxItems)
		selected = selected[:s.maxItems]
	}

	drafts := make([]entity.Artwork, 0, len(selected))
	for _, imageID := range selected {
		url := input.URLByID[imageID]
		if url == "" {
			continue
		}

		now := s.now()
		artworkID, fileName := artwork.GeneratedFileName(now)
		imagePath, err := s.storage.Import(ctx, fileName, func(localPath string) error {
			return s.downloader.DownloadImage(ctx, url, localPath)
		})
		if err != nil {
			log.Printf("❌ Failed to download image %s for %s: %v", imageID, userID, err)
			continue
		}

		drafts = append(drafts, artwork.NewArtwork(artwork.Draft{
			ID:          artworkID,
			OwnerID:     userID,
			Title:       input.Title,
			Description: artwork.GeneratedDescription,
			PromptText:  input.PromptText,
			ImagePath:   imagePath,
			UploadedAt:  now,
		}, artwork.DefaultGeneratedTitle))
	}

	if len(drafts) == 0 {
		return nil, apperror.Wrap(apperror.ErrAllDownloadsFailed, "save failed, none of the selected images could be downloaded")
	}

	// The downloads already happened; a client hanging up now should not lose them.
	committed, err := s.artworks.Commit(context.WithoutCancel(ctx), drafts)
	if err != nil {
		for _, d := range drafts {
			if delErr := s.storage.Delete(context.WithoutCancel(ctx), d.ImagePath); delErr != nil {
				log.Printf("⚠️ Failed to remove blob %s after failed commit: %v", d.ImagePath, delErr)
			}
		}
		return nil, err
	}

	log.Printf("✅ Saved %d of %d selected images for %s", len(committed), len(selected), userID)
	return &dto.CommitResult{
		Message:  fmt.Sprintf("saved %d artworks to the gallery", len(committed)),
		Artworks: committed,
		Count:    len(committed),
	}, nil
}
