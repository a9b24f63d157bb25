package catalog

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"servicehub/internal/domain"
	"servicehub/internal/repository"
	"servicehub/internal/storage"
)

const (
	// MaxServicePhotos caps a service's photo set.
	MaxServicePhotos = 3
	// MaxServicePhotoSize is the per-file limit for service photos.
	MaxServicePhotoSize = 5 << 20

	photoBucket = "services"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	ListActive(ctx context.Context, categoryID int64, limit, offset int) ([]domain.Service, error)
	Update(ctx context.Context, s *domain.Service) error
	ListCategories(ctx context.Context) ([]domain.JobCategory, error)
	CountImages(ctx context.Context, serviceID int64) (int64, error)
	AddImage(ctx context.Context, img *domain.ServiceImage, maxImages int64) error
	GetImage(ctx context.Context, id, serviceID int64) (*domain.ServiceImage, error)
	RemoveImage(ctx context.Context, id, serviceID int64) error
}

// Service manages the catalog and each service's photo set, including
// the single-primary invariant.
type Service struct {
	repo   ServiceRepository
	store  storage.Store
	logger zerolog.Logger
}

func NewService(repo ServiceRepository, store storage.Store, logger zerolog.Logger) *Service {
	return &Service{repo: repo, store: store, logger: logger}
}

func (s *Service) CreateService(ctx context.Context, providerID int64, req CreateServiceRequest) (*domain.Service, error) {
	loc := domain.LocationType(req.LocationType)
	if loc == "" {
		loc = domain.LocationOnSite
	}

	svc := &domain.Service{
		ProviderID:   providerID,
		CategoryID:   req.CategoryID,
		Title:        req.Title,
		Description:  req.Description,
		PricePerHour: req.PricePerHour,
		LocationType: loc,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, serviceID, providerID int64, req UpdateServiceRequest) (*domain.Service, error) {
	svc, err := s.ownedService(ctx, serviceID, providerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, ErrValidation
		}
		svc.Title = *req.Title
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.PricePerHour != nil {
		if *req.PricePerHour < 0 {
			return nil, ErrValidation
		}
		svc.PricePerHour = *req.PricePerHour
	}
	if req.LocationType != nil {
		svc.LocationType = domain.LocationType(*req.LocationType)
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return svc, nil
}

func (s *Service) ListServices(ctx context.Context, categoryID int64, limit, offset int) ([]domain.Service, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListActive(ctx, categoryID, limit, offset)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.JobCategory, error) {
	return s.repo.ListCategories(ctx)
}

// AddPhoto uploads one photo to the service's set. The first photo, or
// an explicit makePrimary, becomes the primary image; the cap and the
// primary flip are enforced inside the insert transaction.
func (s *Service) AddPhoto(ctx context.Context, serviceID, providerID int64, fileHeader *multipart.FileHeader, makePrimary bool) (*domain.ServiceImage, error) {
	if _, err := s.ownedService(ctx, serviceID, providerID); err != nil {
		return nil, err
	}

	// Cheap pre-check so a full set fails before the object upload. The
	// authoritative check runs inside AddImage's transaction.
	count, err := s.repo.CountImages(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if count >= MaxServicePhotos {
		return nil, ErrPhotoLimit
	}

	mimeType, err := storage.ValidateImage(fileHeader, MaxServicePhotoSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	key := fmt.Sprintf("%d/%s%s", serviceID, uuid.New().String(), storage.ImageExt(mimeType, fileHeader.Filename))
	if err := s.store.Upload(ctx, photoBucket, key, file); err != nil {
		return nil, err
	}

	img := &domain.ServiceImage{
		ServiceID: serviceID,
		URL:       s.store.PublicURL(photoBucket, key),
		ObjectKey: key,
		IsPrimary: makePrimary || count == 0,
	}
	if err := s.repo.AddImage(ctx, img, MaxServicePhotos); err != nil {
		if rmErr := s.store.Remove(ctx, photoBucket, key); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("key", key).Msg("orphaned photo cleanup failed")
		}
		if errors.Is(err, repository.ErrImageLimit) {
			return nil, ErrPhotoLimit
		}
		return nil, err
	}
	return img, nil
}

// RemovePhoto deletes a photo; the repository promotes a remaining photo
// when the primary one is removed. Object deletion is best-effort.
func (s *Service) RemovePhoto(ctx context.Context, serviceID, imageID, providerID int64) error {
	if _, err := s.ownedService(ctx, serviceID, providerID); err != nil {
		return err
	}

	img, err := s.repo.GetImage(ctx, imageID, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.repo.RemoveImage(ctx, imageID, serviceID); err != nil {
		return err
	}

	if err := s.store.Remove(ctx, photoBucket, img.ObjectKey); err != nil {
		s.logger.Warn().Err(err).Str("key", img.ObjectKey).Msg("photo object removal failed")
	}
	return nil
}

func (s *Service) ownedService(ctx context.Context, serviceID, providerID int64) (*domain.Service, error) {
	svc, err := s.repo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if svc.ProviderID != providerID {
		return nil, ErrForbidden
	}
	return svc, nil
}
