package repository

import (
	"context"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/budhitree/nexus-art-gallery/internal/store"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
)

// RemoveGuard runs inside the removal update before the record is dropped.
// Returning an error aborts the removal and leaves the document untouched.
type RemoveGuard func(artwork *entity.Artwork) error

type ArtworkRepository interface {
	// FindAll returns artworks in append order.
	FindAll(ctx context.Context) ([]entity.Artwork, error)
	// Append adds a batch and records each id in its owner's uploads, in one write.
	Append(ctx context.Context, artworks []entity.Artwork) ([]entity.Artwork, error)
	// Remove drops the artwork. When dropFromUploadsOf is set the id is also
	// removed from that user's uploads.
	Remove(ctx context.Context, id, dropFromUploadsOf string, guard RemoveGuard) (*entity.Artwork, error)
	// ImagePaths returns every imagePath currently referenced.
	ImagePaths(ctx context.Context) (map[string]struct{}, error)
}

type artworkRepository struct {
	store *store.Store
}

func NewArtworkRepository(s *store.Store) ArtworkRepository {
	return &artworkRepository{store: s}
}

func (r *artworkRepository) FindAll(ctx context.Context) ([]entity.Artwork, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Artworks, nil
}

func (r *artworkRepository) Append(ctx context.Context, artworks []entity.Artwork) ([]entity.Artwork, error) {
	committed := make([]entity.Artwork, 0, len(artworks))
	err := r.store.Update(ctx, func(doc *entity.Document) error {
		committed = committed[:0]
		for _, a := range artworks {
			if owner, ok := doc.Users[a.OwnerID]; ok {
				if a.OwnerRole == "" {
					a.OwnerRole = owner.Role
				}
				owner.UploadIDs = append(owner.UploadIDs, a.ID)
			}
			doc.Artworks = append(doc.Artworks, a)
			committed = append(committed, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

func (r *artworkRepository) Remove(ctx context.Context, id, dropFromUploadsOf string, guard RemoveGuard) (*entity.Artwork, error) {
	var removed entity.Artwork
	err := r.store.Update(ctx, func(doc *entity.Document) error {
		idx := doc.ArtworkIndex(id)
		if idx == -1 {
			return apperror.Wrap(apperror.ErrNotFound, "artwork not found")
		}
		removed = doc.Artworks[idx]
		if guard != nil {
			if err := guard(&removed); err != nil {
				return err
			}
		}

		doc.Artworks = append(doc.Artworks[:idx], doc.Artworks[idx+1:]...)
		if owner, ok := doc.Users[dropFromUploadsOf]; ok && dropFromUploadsOf != "" {
			owner.RemoveUpload(id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

func (r *artworkRepository) ImagePaths(ctx context.Context) (map[string]struct{}, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	paths := make(map[string]struct{}, len(doc.Artworks))
	for _, a := range doc.Artworks {
		paths[a.ImagePath] = struct{}{}
	}
	return paths, nil
}
