package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/velora-labs/velora-backend/internal/config"
	"github.com/velora-labs/velora-backend/internal/errors"
	"github.com/velora-labs/velora-backend/internal/models"
	repository "github.com/velora-labs/velora-backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Refresh(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error)
}

type userService struct {
	repo      repository.UserRepository
	rateLimit repository.RateLimitRepository
	security  *config.Security
	jwtKey    []byte
}

func NewUserService(repo repository.UserRepository, rateLimit repository.RateLimitRepository, security *config.Security) UserService {
	return &userService{
		repo:      repo,
		rateLimit: rateLimit,
		security:  security,
		jwtKey:    []byte(security.JWTKey),
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {

	if existing, _ := s.repo.GetUserByEmail(ctx, req.Email); existing != nil {
		return nil, errors.DuplicateEntryError("Email already registered")
	}

	if existing, _ := s.repo.GetUserByUsername(ctx, req.Username); existing != nil {
		return nil, errors.DuplicateEntryError("Username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {

		// the pre-checks race with concurrent registrations; the unique
		// indexes on email and username are the source of truth
		if isUniqueViolation(err) {
			return nil, errors.DuplicateEntryError("Email or username already registered").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to create user").WithError(err)
	}

	access, _, err := s.generateToken(user, models.TokenTypeAccess, s.security.AccessTokenTTL)
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	refresh, _, err := s.generateToken(user, models.TokenTypeRefresh, s.security.RefreshTokenTTL)
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return &models.AuthResponse{User: user, Access: access, Refresh: refresh}, nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	allowed, remaining, retryAfter, err := s.rateLimit.CheckLoginRateLimit(ctx, req.UsernameOrEmail)
	if err != nil {
		return nil, errors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	user := s.lookupUser(ctx, req.UsernameOrEmail)

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid credentials",
			RemainingTries: remaining,
		}, nil
	}

	access, expiresAt, err := s.generateToken(user, models.TokenTypeAccess, s.security.AccessTokenTTL)
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	refresh, _, err := s.generateToken(user, models.TokenTypeRefresh, s.security.RefreshTokenTTL)
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return &models.LoginResponse{
		Success:   true,
		User:      user,
		Access:    access,
		Refresh:   refresh,
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
	}, nil
}

func (s *userService) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResponse, error) {

	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.BadRequestError("unexpected signing method")
		}

		return s.jwtKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.UnauthorizedError("Invalid or expired refresh token")
	}

	if claims.TokenType != models.TokenTypeRefresh {
		return nil, errors.UnauthorizedError("Token is not a refresh token")
	}

	user, err := s.repo.GetUserById(ctx, claims.UserID)
	if err != nil {
		return nil, errors.UnauthorizedError("User no longer exists").WithError(err)
	}

	access, expiresAt, err := s.generateToken(user, models.TokenTypeAccess, s.security.AccessTokenTTL)
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return &models.RefreshResponse{
		Access:    access,
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {

	user, err := s.repo.GetUserById(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("User not found").WithError(err)
	}

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {

	user, err := s.repo.GetUserById(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("User not found").WithError(err)
	}

	if req.Email != nil && *req.Email != user.Email {

		if existing, _ := s.repo.GetUserByEmail(ctx, *req.Email); existing != nil {
			return nil, errors.DuplicateEntryError("Email already registered")
		}

		user.Email = *req.Email
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}

	if req.Address != nil {
		user.Address = *req.Address
	}

	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {

		if isUniqueViolation(err) {
			return nil, errors.DuplicateEntryError("Email already registered").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to update profile").WithError(err)
	}

	return user, nil
}

// lookupUser resolves the login identifier against the email column when it
// looks like an address, the username column otherwise.
func (s *userService) lookupUser(ctx context.Context, usernameOrEmail string) *models.User {

	if strings.Contains(usernameOrEmail, "@") {
		if user, err := s.repo.GetUserByEmail(ctx, usernameOrEmail); err == nil {
			return user
		}
	}

	user, err := s.repo.GetUserByUsername(ctx, usernameOrEmail)
	if err != nil {
		return nil
	}

	return user
}

func (s *userService) generateToken(user *models.User, tokenType string, ttl time.Duration) (string, time.Time, error) {

	expiresAt := time.Now().Add(ttl)

	claims := &models.Claims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.jwtKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}
