package profile

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"servicehub/internal/domain"
	"servicehub/internal/repository"
	"servicehub/internal/storage"
)

// MaxProfilePhotoSize is the per-file limit for avatars.
const MaxProfilePhotoSize = 10 << 20

const avatarBucket = "avatars"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("user not found")
	ErrInvalidImage = errors.New("invalid image file")
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	GetProviderByUserID(ctx context.Context, userID int64) (*domain.ServiceProvider, error)
	ReplaceProfilePhoto(ctx context.Context, photo *domain.ProfilePhoto) (*domain.ProfilePhoto, error)
}

type Profile struct {
	User     *domain.User            `json:"user"`
	Provider *domain.ServiceProvider `json:"provider,omitempty"`
}

type UpdateRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	City  *string `json:"city"`
	Bio   *string `json:"bio"`
}

type Service struct {
	users  UserRepository
	store  storage.Store
	logger zerolog.Logger
}

func NewService(users UserRepository, store storage.Store, logger zerolog.Logger) *Service {
	return &Service{users: users, store: store, logger: logger}
}

func (s *Service) Get(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p := &Profile{User: u}
	if u.Role == domain.RoleProvider {
		if prov, err := s.users.GetProviderByUserID(ctx, userID); err == nil {
			p.Provider = prov
		}
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, userID int64, req UpdateRequest) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrValidation
		}
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.City != nil {
		u.City = strings.TrimSpace(*req.City)
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UploadAvatar stores a new profile photo and supersedes the previous
// record; the old object is removed best-effort.
func (s *Service) UploadAvatar(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*domain.ProfilePhoto, error) {
	mimeType, err := storage.ValidateImage(fileHeader, MaxProfilePhotoSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	key := fmt.Sprintf("%d/%s%s", userID, uuid.New().String(), storage.ImageExt(mimeType, fileHeader.Filename))
	if err := s.store.Upload(ctx, avatarBucket, key, file); err != nil {
		return nil, err
	}

	photo := &domain.ProfilePhoto{
		UserID:    userID,
		URL:       s.store.PublicURL(avatarBucket, key),
		ObjectKey: key,
	}
	superseded, err := s.users.ReplaceProfilePhoto(ctx, photo)
	if err != nil {
		if rmErr := s.store.Remove(ctx, avatarBucket, key); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("key", key).Msg("orphaned avatar cleanup failed")
		}
		return nil, err
	}

	if superseded != nil && superseded.ObjectKey != "" {
		if err := s.store.Remove(ctx, avatarBucket, superseded.ObjectKey); err != nil {
			s.logger.Warn().Err(err).Str("key", superseded.ObjectKey).Msg("superseded avatar removal failed")
		}
	}
	return photo, nil
}
