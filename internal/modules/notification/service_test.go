package notification

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"servicehub/internal/domain"
	"servicehub/internal/realtime"
	"servicehub/internal/repository"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	if n != nil {
		n.ID = 777 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockRepository) MarkAllRead(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) SendToUser(userID int64, event realtime.Event) bool {
	args := m.Called(userID, event)
	return args.Bool(0)
}

func newNotificationService() (*Service, *MockRepository, *MockPusher) {
	repo := new(MockRepository)
	hub := new(MockPusher)
	svc := NewService(repo, repository.NewUnreadCache(nil, 0), hub, zerolog.Nop())
	return svc, repo, hub
}

func TestService_NotifyBookingRequested(t *testing.T) {
	svc, repo, hub := newNotificationService()

	var captured *domain.Notification
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*domain.Notification)
	}).Return(nil)
	hub.On("SendToUser", int64(2), mock.Anything).Return(true)

	start := time.Date(2027, 6, 15, 14, 0, 0, 0, time.UTC)
	err := svc.NotifyBookingRequested(context.Background(), 2, 123, "Deep cleaning", start)

	assert.NoError(t, err)
	assert.Equal(t, domain.NotifBookingRequest, captured.Type)
	assert.Equal(t, int64(2), captured.UserID)
	assert.Equal(t, "New booking request", captured.Title)
	assert.Contains(t, captured.Message, "Deep cleaning")
	assert.Contains(t, captured.Message, "2027-06-15 14:00")
	assert.Equal(t, int64(123), *captured.RelatedID)
	assert.False(t, captured.IsRead)
}

func TestService_NotifyBookingUpdated_Templates(t *testing.T) {
	cases := []struct {
		status domain.BookingStatus
		title  string
	}{
		{domain.BookingConfirmed, "Booking confirmed"},
		{domain.BookingDeclined, "Booking declined"},
		{domain.BookingCompleted, "Booking completed"},
		{domain.BookingCancelled, "Booking cancelled"},
	}

	for _, tc := range cases {
		svc, repo, hub := newNotificationService()

		var captured *domain.Notification
		repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(1).(*domain.Notification)
		}).Return(nil)
		hub.On("SendToUser", int64(1), mock.Anything).Return(false)

		err := svc.NotifyBookingUpdated(context.Background(), 1, 123, tc.status)

		assert.NoError(t, err)
		assert.Equal(t, tc.title, captured.Title)
		assert.Equal(t, domain.NotifBookingUpdate, captured.Type)
	}
}

func TestService_NotifyNewMessage(t *testing.T) {
	svc, repo, hub := newNotificationService()

	var captured *domain.Notification
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*domain.Notification)
	}).Return(nil)
	hub.On("SendToUser", int64(1), mock.Anything).Return(false)

	err := svc.NotifyNewMessage(context.Background(), 1, 123, "Aida")

	assert.NoError(t, err)
	assert.Equal(t, "New message", captured.Title)
	assert.Contains(t, captured.Message, "Aida")
}

func TestService_Create_RepoErrorPropagates(t *testing.T) {
	svc, repo, _ := newNotificationService()

	repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	err := svc.Create(context.Background(), 1, domain.NotifInfo, "t", "m", nil)

	assert.ErrorIs(t, err, assert.AnError)
}

func TestService_UnreadCount_FallsBackToStore(t *testing.T) {
	svc, repo, _ := newNotificationService()

	repo.On("CountUnread", mock.Anything, int64(1)).Return(int64(4), nil)

	n, err := svc.UnreadCount(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestService_MarkRead_NotFound(t *testing.T) {
	svc, repo, _ := newNotificationService()

	repo.On("MarkRead", mock.Anything, int64(9), int64(1)).Return(repository.ErrNotificationNotFound)

	err := svc.MarkRead(context.Background(), 9, 1)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_List_LimitNormalized(t *testing.T) {
	svc, repo, _ := newNotificationService()

	repo.On("ListByUser", mock.Anything, int64(1), 20, 0).Return([]domain.Notification{}, nil)

	_, err := svc.List(context.Background(), 1, -5, 0)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
