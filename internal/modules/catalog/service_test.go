package catalog

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"servicehub/internal/domain"
	"servicehub/internal/repository"
	"servicehub/internal/storage"
)

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	args := m.Called(ctx, s)
	if s != nil {
		s.ID = 10 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceRepository) ListActive(ctx context.Context, categoryID int64, limit, offset int) ([]domain.Service, error) {
	args := m.Called(ctx, categoryID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Service), args.Error(1)
}

func (m *MockServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockServiceRepository) ListCategories(ctx context.Context) ([]domain.JobCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobCategory), args.Error(1)
}

func (m *MockServiceRepository) CountImages(ctx context.Context, serviceID int64) (int64, error) {
	args := m.Called(ctx, serviceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServiceRepository) AddImage(ctx context.Context, img *domain.ServiceImage, maxImages int64) error {
	args := m.Called(ctx, img, maxImages)
	return args.Error(0)
}

func (m *MockServiceRepository) GetImage(ctx context.Context, id, serviceID int64) (*domain.ServiceImage, error) {
	args := m.Called(ctx, id, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceImage), args.Error(1)
}

func (m *MockServiceRepository) RemoveImage(ctx context.Context, id, serviceID int64) error {
	args := m.Called(ctx, id, serviceID)
	return args.Error(0)
}

// pngUpload builds a real multipart file header carrying a minimal PNG
// payload so content sniffing passes.
func pngUpload(t *testing.T) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("photo", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n" + "fakepixels"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["photo"][0]
}

func newCatalogService(t *testing.T, repo *MockServiceRepository) *Service {
	t.Helper()
	store := storage.NewLocalStore(t.TempDir(), "/static/uploads")
	return NewService(repo, store, zerolog.Nop())
}

func ownedCatalogService(id, providerID int64) *domain.Service {
	return &domain.Service{ID: id, ProviderID: providerID, Title: "Deep cleaning", IsActive: true}
}

func TestService_AddPhoto_FirstBecomesPrimary(t *testing.T) {
	repo := new(MockServiceRepository)

	repo.On("GetByID", mock.Anything, int64(10)).Return(ownedCatalogService(10, 2), nil)
	repo.On("CountImages", mock.Anything, int64(10)).Return(int64(0), nil)

	var captured *domain.ServiceImage
	repo.On("AddImage", mock.Anything, mock.Anything, int64(MaxServicePhotos)).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*domain.ServiceImage)
	}).Return(nil)

	service := newCatalogService(t, repo)

	img, err := service.AddPhoto(context.Background(), 10, 2, pngUpload(t), false)

	assert.NoError(t, err)
	assert.True(t, img.IsPrimary)
	assert.True(t, captured.IsPrimary)
	assert.Contains(t, img.URL, "/static/uploads/services/10/")
}

func TestService_AddPhoto_ExplicitPrimary(t *testing.T) {
	repo := new(MockServiceRepository)

	repo.On("GetByID", mock.Anything, int64(10)).Return(ownedCatalogService(10, 2), nil)
	repo.On("CountImages", mock.Anything, int64(10)).Return(int64(2), nil)
	repo.On("AddImage", mock.Anything, mock.MatchedBy(func(img *domain.ServiceImage) bool {
		return img.IsPrimary
	}), int64(MaxServicePhotos)).Return(nil)

	service := newCatalogService(t, repo)

	_, err := service.AddPhoto(context.Background(), 10, 2, pngUpload(t), true)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_AddPhoto_LimitReached(t *testing.T) {
	repo := new(MockServiceRepository)

	repo.On("GetByID", mock.Anything, int64(10)).Return(ownedCatalogService(10, 2), nil)
	repo.On("CountImages", mock.Anything, int64(10)).Return(int64(3), nil)

	service := newCatalogService(t, repo)

	_, err := service.AddPhoto(context.Background(), 10, 2, pngUpload(t), false)

	assert.ErrorIs(t, err, ErrPhotoLimit)
	repo.AssertNotCalled(t, "AddImage", mock.Anything, mock.Anything, mock.Anything)
}

// The pre-check can pass on a stale count when two uploads race; the
// transactional cap inside AddImage is authoritative and maps back to
// the same error.
func TestService_AddPhoto_LimitRaceLoser(t *testing.T) {
	repo := new(MockServiceRepository)

	repo.On("GetByID", mock.Anything, int64(10)).Return(ownedCatalogService(10, 2), nil)
	repo.On("CountImages", mock.Anything, int64(10)).Return(int64(2), nil)
	repo.On("AddImage", mock.Anything, mock.Anything, int64(MaxServicePhotos)).Return(repository.ErrImageLimit)

	service := newCatalogService(t, repo)

	_, err := service.AddPhoto(context.Background(), 10, 2, pngUpload(t), false)

	assert.ErrorIs(t, err, ErrPhotoLimit)
}

func TestService_AddPhoto_NotOwner(t *testing.T) {
	repo := new(MockServiceRepository)

	repo.On("GetByID", mock.Anything, int64(10)).Return(ownedCatalogService(10, 2), nil)

	service := newCatalogService(t, repo)

	_, err := service.AddPhoto(context.Background(), 10, 77, pngUpload(t), false)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_AddPhoto_RejectsNonImage(t *testing.T) {
	repo := new(MockServiceRepository)

	repo.On("GetByID", mock.Anything, int64(10)).Return(ownedCatalogService(10, 2), nil)
	repo.On("CountImages", mock.Anything, int64(10)).Return(int64(0), nil)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("photo", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text, not an image"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	fh := req.MultipartForm.File["photo"][0]

	service := newCatalogService(t, repo)

	_, err = service.AddPhoto(context.Background(), 10, 2, fh, false)

	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestService_RemovePhoto_Success(t *testing.T) {
	repo := new(MockServiceRepository)

	repo.On("GetByID", mock.Anything, int64(10)).Return(ownedCatalogService(10, 2), nil)
	repo.On("GetImage", mock.Anything, int64(5), int64(10)).Return(&domain.ServiceImage{
		ID: 5, ServiceID: 10, ObjectKey: "10/x.png", IsPrimary: true,
	}, nil)
	repo.On("RemoveImage", mock.Anything, int64(5), int64(10)).Return(nil)

	service := newCatalogService(t, repo)

	err := service.RemovePhoto(context.Background(), 10, 5, 2)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_RemovePhoto_UnknownImage(t *testing.T) {
	repo := new(MockServiceRepository)

	repo.On("GetByID", mock.Anything, int64(10)).Return(ownedCatalogService(10, 2), nil)
	repo.On("GetImage", mock.Anything, int64(5), int64(10)).Return(nil, repository.ErrImageNotFound)

	service := newCatalogService(t, repo)

	err := service.RemovePhoto(context.Background(), 10, 5, 2)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UpdateService_PatchFields(t *testing.T) {
	repo := new(MockServiceRepository)

	repo.On("GetByID", mock.Anything, int64(10)).Return(ownedCatalogService(10, 2), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	service := newCatalogService(t, repo)

	newTitle := "Move-out cleaning"
	inactive := false
	svc, err := service.UpdateService(context.Background(), 10, 2, UpdateServiceRequest{
		Title:    &newTitle,
		IsActive: &inactive,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Move-out cleaning", svc.Title)
	assert.False(t, svc.IsActive)
}

func TestService_UpdateService_NegativePrice(t *testing.T) {
	repo := new(MockServiceRepository)

	repo.On("GetByID", mock.Anything, int64(10)).Return(ownedCatalogService(10, 2), nil)

	service := newCatalogService(t, repo)

	bad := -1.0
	_, err := service.UpdateService(context.Background(), 10, 2, UpdateServiceRequest{PricePerHour: &bad})

	assert.ErrorIs(t, err, ErrValidation)
}
