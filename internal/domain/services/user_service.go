package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced on registration only.
const MinPasswordLength = 8

// AuthConfig holds token issuance settings
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	Issuer      string
}

// UserService handles registration, login and OAuth identities.
type UserService struct {
	userRepo repositories.UserRepository
	config   AuthConfig
}

// NewUserService creates a new user service instance
func NewUserService(userRepo repositories.UserRepository, config AuthConfig) *UserService {
	if config.TokenExpiry == 0 {
		config.TokenExpiry = 24 * time.Hour
	}
	return &UserService{userRepo: userRepo, config: config}
}

// RegisterParams contains parameters for user registration
type RegisterParams struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
}

func (s *UserService) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	if _, err := mail.ParseAddress(params.Email); err != nil {
		return nil, NewValidationError("email", "invalid email address")
	}
	if len(params.Password) < MinPasswordLength {
		return nil, NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	if _, err := s.userRepo.GetByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        params.Email,
		Username:     params.Username,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies the credentials and returns a signed access token. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.PasswordHash == "" {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// OAuthLogin finds or creates the user for an external identity and returns a
// signed access token. An existing account with the same email is linked
// rather than duplicated.
func (s *UserService) OAuthLogin(ctx context.Context, provider, subject, email string) (string, *models.User, error) {
	if provider == "" || subject == "" {
		return "", nil, NewValidationError("provider", "provider and subject are required")
	}

	user, err := s.userRepo.GetByOAuth(ctx, provider, subject)
	if errors.Is(err, repositories.ErrNotFound) {
		user, err = s.linkOrCreate(ctx, provider, subject, email)
	}
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) linkOrCreate(ctx context.Context, provider, subject, email string) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		existing.OAuthProvider = provider
		existing.OAuthSubject = subject
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Email:         email,
		OAuthProvider: provider,
		OAuthSubject:  subject,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// IssueToken signs an HS256 access token for the user.
func (s *UserService) IssueToken(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		Issuer:    s.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
