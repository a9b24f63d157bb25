package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"servicehub/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	tx := r.db.WithContext(ctx).First(&u, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, tx.Error
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	tx := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, tx.Error
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepository) CreateProvider(ctx context.Context, p *domain.ServiceProvider) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *UserRepository) GetProviderByUserID(ctx context.Context, userID int64) (*domain.ServiceProvider, error) {
	var p domain.ServiceProvider
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, tx.Error
	}
	return &p, nil
}

// ReplaceProfilePhoto deletes any previous avatar rows for the user and
// inserts the new one, then mirrors the URL onto the user row. Runs in a
// single transaction so at most one active photo record can exist.
func (r *UserRepository) ReplaceProfilePhoto(ctx context.Context, photo *domain.ProfilePhoto) (*domain.ProfilePhoto, error) {
	var old domain.ProfilePhoto
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", photo.UserID).First(&old).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Where("user_id = ?", photo.UserID).Delete(&domain.ProfilePhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Create(photo).Error; err != nil {
			return err
		}
		return tx.Model(&domain.User{}).
			Where("id = ?", photo.UserID).
			Update("avatar_url", photo.URL).Error
	})
	if err != nil {
		return nil, err
	}
	if old.ID != 0 {
		return &old, nil
	}
	return nil, nil
}

func (r *UserRepository) GetProfilePhoto(ctx context.Context, userID int64) (*domain.ProfilePhoto, error) {
	var p domain.ProfilePhoto
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &p, nil
}
