package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/leads-dashboard/internal/auth"
	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/repository"
)

// RoleAdmin is the role allowed to delete leads and import CSV files.
const RoleAdmin = "admin"

// ErrInvalidCredentials is returned when login fails for any credential reason.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	users repository.UsersRepository
	jwt   *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UsersRepository, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwtManager}
}

// Login validates credentials and returns a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (dto.LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return dto.LoginResponse{}, newValidationError("email and password must not be empty")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID.String(), user.Email, user.Role)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	return dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
	}, nil
}

// EnsureAdmin creates the admin account unless a user with that email exists.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, errors.New("admin email and password must not be empty")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.users.Create(ctx, email, string(hashed), RoleAdmin); err != nil {
		if errors.Is(err, repository.ErrEmailDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
