package bootstrap

import (
	"context"
	"errors"
	"log"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/budhitree/nexus-art-gallery/internal/modules/user/dto"
	user "github.com/budhitree/nexus-art-gallery/internal/modules/user/service"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
)

const DefaultAdminName = "Administrator"

// SeedAdminUser registers the admin account unless it already exists.
// It reports whether a new account was created.
func SeedAdminUser(ctx context.Context, users user.UserService, password, name string) (bool, error) {
	if name == "" {
		name = DefaultAdminName
	}

	_, err := users.Register(ctx, dto.RegisterInput{
		UserID:   entity.AdminID,
		Password: password,
		Name:     name,
		UserType: string(entity.RoleAdmin),
	})
	if errors.Is(err, apperror.ErrConflict) {
		log.Println("Admin user already exists, skipping seed")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	log.Println("✅ Admin user seeded successfully")
	return true, nil
}
