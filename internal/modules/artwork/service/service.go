package artwork

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/budhitree/nexus-art-gallery/internal/modules/artwork/dto"
	"github.com/budhitree/nexus-art-gallery/internal/modules/artwork/repository"
	userRepository "github.com/budhitree/nexus-art-gallery/internal/modules/user/repository"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"github.com/budhitree/nexus-art-gallery/pkg/storage"
)

// Listener is told about gallery changes after they are persisted.
type Listener interface {
	HandleArtworkEvent(ctx context.Context, event entity.ArtworkEvent) error
}

type ArtworkService interface {
	// ListGallery returns every artwork, newest first.
	ListGallery(ctx context.Context) ([]entity.Artwork, error)
	Upload(ctx context.Context, input dto.UploadInput) (*entity.Artwork, error)
	Delete(ctx context.Context, artworkID, requesterID string) error
	// ListOwnerIDs returns every user id except the admin account.
	ListOwnerIDs(ctx context.Context) ([]string, error)
	// Commit persists a batch of new artworks with a single store write.
	Commit(ctx context.Context, artworks []entity.Artwork) ([]entity.Artwork, error)
	// SweepOrphans deletes unreferenced blobs older than grace and reports how many went.
	SweepOrphans(ctx context.Context, grace time.Duration) (int, error)
}

type artworkService struct {
	repo      repository.ArtworkRepository
	userRepo  userRepository.UserRepository
	storage   storage.ImageStorage
	listeners []Listener
	now       func() time.Time
}

type Option func(*artworkService)

func WithListener(l Listener) Option {
	return func(s *artworkService) { s.listeners = append(s.listeners, l) }
}

func WithClock(now func() time.Time) Option {
	return func(s *artworkService) { s.now = now }
}

func NewArtworkService(repo repository.ArtworkRepository, userRepo userRepository.UserRepository, imageStorage storage.ImageStorage, opts ...Option) ArtworkService {
	s := &artworkService{
		repo:     repo,
		userRepo: userRepo,
		storage:  imageStorage,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *artworkService) ListGallery(ctx context.Context) ([]entity.Artwork, error) {
	artworks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	newestFirst := slices.Clone(artworks)
	slices.Reverse(newestFirst)
	return newestFirst, nil
}

func (s *artworkService) Upload(ctx context.Context, input dto.UploadInput) (*entity.Artwork, error) {
	userID := strings.TrimSpace(input.UserID)
	if input.File == nil || userID == "" {
		return nil, apperror.Wrap(apperror.ErrValidation, "image file and user are required")
	}

	now := s.now()
	id, fileName := UploadFileName(now, input.FileName)

	imagePath, err := s.storage.Put(ctx, input.File, fileName)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	art := NewArtwork(Draft{
		ID:          id,
		OwnerID:     userID,
		Title:       input.Title,
		Description: UploadDescription,
		PromptText:  input.PromptText,
		ImagePath:   imagePath,
		UploadedAt:  now,
	}, DefaultUploadTitle)

	committed, err := s.Commit(ctx, []entity.Artwork{art})
	if err != nil {
		if delErr := s.storage.Delete(ctx, imagePath); delErr != nil {
			log.Printf("⚠️ Failed to remove blob %s after failed upload: %v", imagePath, delErr)
		}
		return nil, err
	}
	return &committed[0], nil
}

func (s *artworkService) Delete(ctx context.Context, artworkID, requesterID string) error {
	if requesterID == "" {
		return apperror.Wrap(apperror.ErrAuthRequired, "login required")
	}

	isAdmin := requesterID == entity.AdminID
	dropFromUploadsOf := requesterID
	if isAdmin {
		dropFromUploadsOf = ""
	}

	removed, err := s.repo.Remove(ctx, artworkID, dropFromUploadsOf, func(a *entity.Artwork) error {
		if !isAdmin && !a.OwnedBy(requesterID) {
			return apperror.Wrap(apperror.ErrForbidden, "you can only delete your own artwork")
		}
		if !s.storage.Owns(a.ImagePath) {
			return nil
		}
		if err := s.storage.Delete(ctx, a.ImagePath); err != nil {
			return fmt.Errorf("delete image %s: %w", a.ImagePath, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("🗑️ Artwork %s deleted by %s", removed.ID, requesterID)
	s.notify(ctx, entity.ArtworkEvent{Type: entity.EventArtworkDeleted, Artworks: []entity.Artwork{*removed}})
	return nil
}

func (s *artworkService) ListOwnerIDs(ctx context.Context) ([]string, error) {
	ids, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	owners := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != entity.AdminID {
			owners = append(owners, id)
		}
	}
	return owners, nil
}

func (s *artworkService) Commit(ctx context.Context, artworks []entity.Artwork) ([]entity.Artwork, error) {
	if len(artworks) == 0 {
		return nil, apperror.Wrap(apperror.ErrValidation, "nothing to commit")
	}
	committed, err := s.repo.Append(ctx, artworks)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, entity.ArtworkEvent{Type: entity.EventArtworkCreated, Artworks: committed})
	return committed, nil
}

func (s *artworkService) SweepOrphans(ctx context.Context, grace time.Duration) (int, error) {
	lister, ok := s.storage.(storage.Lister)
	if !ok {
		return 0, nil
	}

	referenced, err := s.repo.ImagePaths(ctx)
	if err != nil {
		return 0, err
	}
	blobs, err := lister.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-grace)
	removed := 0
	for _, blob := range blobs {
		if _, ok := referenced[blob.ImagePath]; ok {
			continue
		}
		if blob.ModTime.After(cutoff) {
			continue
		}
		if err := s.storage.Delete(ctx, blob.ImagePath); err != nil {
			log.Printf("❌ Failed to delete orphan blob %s: %v", blob.ImagePath, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *artworkService) notify(ctx context.Context, event entity.ArtworkEvent) {
	for _, l := range s.listeners {
		if err := l.HandleArtworkEvent(ctx, event); err != nil {
			log.Printf("⚠️ Listener failed on %s: %v", event.Type, err)
		}
	}
}
