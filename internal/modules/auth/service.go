package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"servicehub/internal/domain"
	"servicehub/internal/pkg/validator"
	"servicehub/internal/repository"
)

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	CreateProvider(ctx context.Context, p *domain.ServiceProvider) error
}

type Service struct {
	users UserRepository
	jwt   jwtService
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

func NewService(users UserRepository, jwt jwtService) *Service {
	return &Service{users: users, jwt: jwt}
}

// Register creates a user account. Provider accounts also get an empty
// service_providers row to hang catalog data on.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*LoginResult, error) {
	if violations := validator.Validate(req); violations != nil {
		return nil, ErrValidation
	}

	role := domain.UserRole(req.Role)
	if role != domain.RoleClient && role != domain.RoleProvider {
		return nil, ErrValidation
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if role == domain.RoleProvider {
		if err := s.users.CreateProvider(ctx, &domain.ServiceProvider{UserID: user.ID}); err != nil {
			return nil, err
		}
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token}, nil
}

// Me resolves the authenticated user's record.
func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}
