package repository

import (
	"context"
	"sort"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/budhitree/nexus-art-gallery/internal/store"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// Create fails with apperror.ErrConflict when the id is taken.
	Create(ctx context.Context, user *entity.User) error
	// Update applies fn to the stored user inside one serialized store update.
	Update(ctx context.Context, id string, fn func(user *entity.User) error) (*entity.User, error)
	ListIDs(ctx context.Context) ([]string, error)
}

type userRepository struct {
	store *store.Store
}

func NewUserRepository(s *store.Store) UserRepository {
	return &userRepository{store: s}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := doc.Users[id]
	if !ok {
		return nil, apperror.Wrap(apperror.ErrNotFound, "user not found")
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.store.Update(ctx, func(doc *entity.Document) error {
		if _, exists := doc.Users[user.ID]; exists {
			return apperror.Wrap(apperror.ErrConflict, "account %s already exists", user.ID)
		}
		if user.UploadIDs == nil {
			user.UploadIDs = []string{}
		}
		doc.Users[user.ID] = user
		return nil
	})
}

func (r *userRepository) Update(ctx context.Context, id string, fn func(user *entity.User) error) (*entity.User, error) {
	var updated *entity.User
	err := r.store.Update(ctx, func(doc *entity.Document) error {
		user, ok := doc.Users[id]
		if !ok {
			return apperror.Wrap(apperror.ErrNotFound, "user not found")
		}
		if err := fn(user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *userRepository) ListIDs(ctx context.Context) ([]string, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(doc.Users))
	for id := range doc.Users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
