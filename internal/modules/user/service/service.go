package user

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/budhitree/nexus-art-gallery/internal/modules/user/dto"
	"github.com/budhitree/nexus-art-gallery/internal/modules/user/repository"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
)

var (
	studentIDPattern = regexp.MustCompile(`^\d{8}$`)
	teacherIDPattern = regexp.MustCompile(`^\d{7}$`)
)

type UserService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*entity.UserView, error)
	Login(ctx context.Context, input dto.LoginInput) (*entity.UserView, error)
	GetProfile(ctx context.Context, id string) (*entity.UserView, error)
	UpdateProfile(ctx context.Context, id string, input dto.UpdateProfileInput) (*entity.UserView, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

type userService struct {
	repo repository.UserRepository
	cost int
	now  func() time.Time
}

type Option func(*userService)

// WithBcryptCost lowers the hashing cost, mainly for tests.
func WithBcryptCost(cost int) Option {
	return func(s *userService) { s.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *userService) { s.now = now }
}

func NewUserService(repo repository.UserRepository, opts ...Option) UserService {
	s := &userService{repo: repo, cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *userService) Register(ctx context.Context, input dto.RegisterInput) (*entity.UserView, error) {
	id := input.UserID
	name := input.Name
	role := entity.Role(input.UserType)

	if id == "" || input.Password == "" || name == "" || input.UserType == "" {
		return nil, apperror.Wrap(apperror.ErrValidation, "userId, password, name and userType are required")
	}
	if err := validateIDForRole(id, role); err != nil {
		return nil, err
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:               id,
		Name:             name,
		Role:             role,
		CredentialSecret: hash,
		JoinedAt:         s.now().UTC(),
		UploadIDs:        []string{},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("👤 Registered %s account %s", role, id)
	return user.View(), nil
}

func (s *userService) Login(ctx context.Context, input dto.LoginInput) (*entity.UserView, error) {
	if input.UserID == "" || input.Password == "" {
		return nil, apperror.Wrap(apperror.ErrValidation, "userId and password are required")
	}

	user, err := s.repo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	ok, legacy := checkSecret(user.CredentialSecret, input.Password)
	if !ok {
		return nil, apperror.Wrap(apperror.ErrInvalidCredentials, "wrong password")
	}

	if legacy {
		s.upgradeLegacySecret(ctx, user.ID, input.Password)
	}
	return user.View(), nil
}

func (s *userService) GetProfile(ctx context.Context, id string) (*entity.UserView, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.View(), nil
}

// UpdateProfile only lets a user edit their own profile; admin gets no override here.
func (s *userService) UpdateProfile(ctx context.Context, id string, input dto.UpdateProfileInput) (*entity.UserView, error) {
	if input.CurrentUserID == "" || input.CurrentUserID != id {
		return nil, apperror.Wrap(apperror.ErrForbidden, "you can only edit your own profile")
	}

	var newHash string
	if input.NewPassword != "" {
		h, err := s.hash(input.NewPassword)
		if err != nil {
			return nil, err
		}
		newHash = h
	}
	name := input.Name

	user, err := s.repo.Update(ctx, id, func(u *entity.User) error {
		if newHash != "" {
			if input.OldPassword == "" {
				return apperror.Wrap(apperror.ErrInvalidCredentials, "old password is incorrect")
			}
			if ok, _ := checkSecret(u.CredentialSecret, input.OldPassword); !ok {
				return apperror.Wrap(apperror.ErrInvalidCredentials, "old password is incorrect")
			}
			u.CredentialSecret = newHash
		}
		if name != "" {
			u.Name = name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user.View(), nil
}

func (s *userService) ListUserIDs(ctx context.Context) ([]string, error) {
	return s.repo.ListIDs(ctx)
}

func (s *userService) hash(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(prehash(secret), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// prehash feeds bcrypt a fixed-length digest so secrets past its 72-byte limit still work.
func prehash(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// upgradeLegacySecret re-hashes a plaintext secret left by older data files.
// A failure only means the next login tries again.
func (s *userService) upgradeLegacySecret(ctx context.Context, id, secret string) {
	hash, err := s.hash(secret)
	if err != nil {
		log.Printf("⚠️ Failed to hash legacy password for %s: %v", id, err)
		return
	}
	_, err = s.repo.Update(ctx, id, func(u *entity.User) error {
		if IsHashed(u.CredentialSecret) {
			return nil
		}
		u.CredentialSecret = hash
		return nil
	})
	if err != nil {
		log.Printf("⚠️ Failed to upgrade legacy password for %s: %v", id, err)
		return
	}
	log.Printf("🔐 Upgraded legacy password for %s", id)
}

func validateIDForRole(id string, role entity.Role) error {
	switch role {
	case entity.RoleStudent:
		if !studentIDPattern.MatchString(id) {
			return apperror.Wrap(apperror.ErrValidation, "student id must be 8 digits")
		}
	case entity.RoleTeacher:
		if !teacherIDPattern.MatchString(id) {
			return apperror.Wrap(apperror.ErrValidation, "teacher id must be 7 digits")
		}
	case entity.RoleAdmin:
	default:
		return apperror.Wrap(apperror.ErrValidation, "userType must be one of student, teacher, admin")
	}
	return nil
}

// IsHashed reports whether stored looks like a bcrypt hash.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// checkSecret compares candidate with stored; legacy is true when stored was plaintext.
func checkSecret(stored, candidate string) (ok bool, legacy bool) {
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), prehash(candidate)) == nil, false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1, true
}
