package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"servicehub/internal/domain"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrImageNotFound   = errors.New("service image not found")
	ErrImageLimit      = errors.New("service image limit reached")
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	tx := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Category").
		First(&s, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, tx.Error
	}
	return &s, nil
}

func (r *ServiceRepository) ListActive(ctx context.Context, categoryID int64, limit, offset int) ([]domain.Service, error) {
	var out []domain.Service
	q := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Category").
		Where("is_active = ?", true).
		Order("created_at DESC")
	if categoryID > 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *ServiceRepository) ListCategories(ctx context.Context) ([]domain.JobCategory, error) {
	var out []domain.JobCategory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ServiceRepository) CountImages(ctx context.Context, serviceID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ServiceImage{}).
		Where("service_id = ?", serviceID).
		Count(&count).Error
	return count, err
}

// AddImage inserts a photo. The set-size cap, the first-photo-primary
// rule and the clearing of the previous primary flag all run in one
// transaction, so concurrent uploads cannot overshoot the cap or leave
// two primaries.
func (r *ServiceRepository) AddImage(ctx context.Context, img *domain.ServiceImage, maxImages int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.ServiceImage{}).
			Where("service_id = ?", img.ServiceID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= maxImages {
			return ErrImageLimit
		}
		if count == 0 {
			img.IsPrimary = true
		}

		if img.IsPrimary {
			if err := tx.Model(&domain.ServiceImage{}).
				Where("service_id = ? AND is_primary = ?", img.ServiceID, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(img).Error
	})
}

func (r *ServiceRepository) GetImage(ctx context.Context, id, serviceID int64) (*domain.ServiceImage, error) {
	var img domain.ServiceImage
	tx := r.db.WithContext(ctx).
		Where("id = ? AND service_id = ?", id, serviceID).
		First(&img)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, tx.Error
	}
	return &img, nil
}

// RemoveImage deletes a photo and, if it was the primary one, promotes
// the newest remaining photo so a non-empty set always has a primary.
func (r *ServiceRepository) RemoveImage(ctx context.Context, id, serviceID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var img domain.ServiceImage
		if err := tx.Where("id = ? AND service_id = ?", id, serviceID).First(&img).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrImageNotFound
			}
			return err
		}

		if err := tx.Delete(&domain.ServiceImage{}, img.ID).Error; err != nil {
			return err
		}

		if !img.IsPrimary {
			return nil
		}

		var next domain.ServiceImage
		err := tx.Where("service_id = ?", serviceID).
			Order("created_at DESC").
			First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&domain.ServiceImage{}).
			Where("id = ?", next.ID).
			Update("is_primary", true).Error
	})
}
