package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/domain"
)

func seedService(t *testing.T, repo *ServiceRepository) *domain.Service {
	t.Helper()

	s := &domain.Service{
		ProviderID:   2,
		Title:        "Deep cleaning",
		PricePerHour: 5000,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func addImage(t *testing.T, repo *ServiceRepository, serviceID int64, key string, primary bool, createdAt time.Time) *domain.ServiceImage {
	t.Helper()

	img := &domain.ServiceImage{
		ServiceID: serviceID,
		URL:       "/static/uploads/services/" + key,
		ObjectKey: key,
		IsPrimary: primary,
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.AddImage(context.Background(), img, 10))
	return img
}

func primaryImages(t *testing.T, repo *ServiceRepository, serviceID int64) []domain.ServiceImage {
	t.Helper()

	svc, err := repo.GetByID(context.Background(), serviceID)
	require.NoError(t, err)

	var primaries []domain.ServiceImage
	for _, img := range svc.Images {
		if img.IsPrimary {
			primaries = append(primaries, img)
		}
	}
	return primaries
}

func TestServiceRepository_AddImage_PrimaryFlip(t *testing.T) {
	repo := NewServiceRepository(newTestDB(t))
	svc := seedService(t, repo)

	base := time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC)
	first := addImage(t, repo, svc.ID, "a.png", true, base)
	second := addImage(t, repo, svc.ID, "b.png", true, base.Add(time.Minute))

	primaries := primaryImages(t, repo, svc.ID)
	require.Len(t, primaries, 1)
	assert.Equal(t, second.ID, primaries[0].ID)
	assert.NotEqual(t, first.ID, primaries[0].ID)
}

func TestServiceRepository_AddImage_FirstAlwaysPrimary(t *testing.T) {
	repo := NewServiceRepository(newTestDB(t))
	svc := seedService(t, repo)

	// An explicitly non-primary upload into an empty set still becomes
	// the primary photo.
	img := addImage(t, repo, svc.ID, "a.png", false, time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC))

	assert.True(t, img.IsPrimary)
	primaries := primaryImages(t, repo, svc.ID)
	require.Len(t, primaries, 1)
}

func TestServiceRepository_AddImage_EnforcesCap(t *testing.T) {
	repo := NewServiceRepository(newTestDB(t))
	svc := seedService(t, repo)

	base := time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, key := range []string{"a.png", "b.png", "c.png"} {
		img := &domain.ServiceImage{
			ServiceID: svc.ID,
			URL:       "/static/uploads/services/" + key,
			ObjectKey: key,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.AddImage(context.Background(), img, 3))
	}

	fourth := &domain.ServiceImage{
		ServiceID: svc.ID,
		URL:       "/static/uploads/services/d.png",
		ObjectKey: "d.png",
		CreatedAt: base.Add(3 * time.Minute),
	}
	err := repo.AddImage(context.Background(), fourth, 3)

	assert.ErrorIs(t, err, ErrImageLimit)

	count, err := repo.CountImages(context.Background(), svc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestServiceRepository_AddImage_NonPrimaryKeepsExisting(t *testing.T) {
	repo := NewServiceRepository(newTestDB(t))
	svc := seedService(t, repo)

	base := time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC)
	first := addImage(t, repo, svc.ID, "a.png", true, base)
	addImage(t, repo, svc.ID, "b.png", false, base.Add(time.Minute))

	primaries := primaryImages(t, repo, svc.ID)
	require.Len(t, primaries, 1)
	assert.Equal(t, first.ID, primaries[0].ID)
}

func TestServiceRepository_RemoveImage_PromotesNewest(t *testing.T) {
	repo := NewServiceRepository(newTestDB(t))
	svc := seedService(t, repo)

	base := time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC)
	primary := addImage(t, repo, svc.ID, "a.png", true, base)
	addImage(t, repo, svc.ID, "b.png", false, base.Add(time.Minute))
	newest := addImage(t, repo, svc.ID, "c.png", false, base.Add(2*time.Minute))

	require.NoError(t, repo.RemoveImage(context.Background(), primary.ID, svc.ID))

	primaries := primaryImages(t, repo, svc.ID)
	require.Len(t, primaries, 1)
	assert.Equal(t, newest.ID, primaries[0].ID)
}

func TestServiceRepository_RemoveImage_NonPrimaryLeavesFlag(t *testing.T) {
	repo := NewServiceRepository(newTestDB(t))
	svc := seedService(t, repo)

	base := time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC)
	primary := addImage(t, repo, svc.ID, "a.png", true, base)
	other := addImage(t, repo, svc.ID, "b.png", false, base.Add(time.Minute))

	require.NoError(t, repo.RemoveImage(context.Background(), other.ID, svc.ID))

	primaries := primaryImages(t, repo, svc.ID)
	require.Len(t, primaries, 1)
	assert.Equal(t, primary.ID, primaries[0].ID)
}

func TestServiceRepository_RemoveImage_LastPhoto(t *testing.T) {
	repo := NewServiceRepository(newTestDB(t))
	svc := seedService(t, repo)

	only := addImage(t, repo, svc.ID, "a.png", true, time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(t, repo.RemoveImage(context.Background(), only.ID, svc.ID))

	got, err := repo.GetByID(context.Background(), svc.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Images)
}

func TestServiceRepository_RemoveImage_WrongService(t *testing.T) {
	repo := NewServiceRepository(newTestDB(t))
	svc := seedService(t, repo)

	img := addImage(t, repo, svc.ID, "a.png", true, time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC))

	err := repo.RemoveImage(context.Background(), img.ID, svc.ID+1)

	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestServiceRepository_ListActive_FiltersInactive(t *testing.T) {
	repo := NewServiceRepository(newTestDB(t))

	active := seedService(t, repo)
	inactive := &domain.Service{ProviderID: 2, Title: "Old offer", IsActive: false}
	require.NoError(t, repo.Create(context.Background(), inactive))

	got, err := repo.ListActive(context.Background(), 0, 10, 0)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)
}

func TestServiceRepository_CountImages(t *testing.T) {
	repo := NewServiceRepository(newTestDB(t))
	svc := seedService(t, repo)

	base := time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC)
	addImage(t, repo, svc.ID, "a.png", true, base)
	addImage(t, repo, svc.ID, "b.png", false, base.Add(time.Minute))

	count, err := repo.CountImages(context.Background(), svc.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
