package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"recipehub/internal/apperr"
	"recipehub/internal/authz"
	"recipehub/internal/broadcast"
	"recipehub/internal/config"
	"recipehub/internal/dto"
	"recipehub/internal/middleware/auth"
	"recipehub/internal/models"
	"recipehub/internal/repository"
	"recipehub/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Claims is the access-token payload. Role travels in the token so the
// middleware can build an identity without a store round trip.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts validated claims into an authorization identity.
func (c *Claims) Identity() (*authz.Identity, error) {
	role, err := authz.ParseRole(c.Role)
	if err != nil {
		return nil, err
	}
	return &authz.Identity{ID: c.UserID, Role: role}, nil
}

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	blobs            storage.BlobStore
	publisher        broadcast.Publisher
	jwtSecret        string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	logger           *slog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	blobs storage.BlobStore,
	publisher broadcast.Publisher,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		blobs:            blobs,
		publisher:        publisher,
		jwtSecret:        cfg.JWTSecret,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
		logger:           logger,
	}
}

// Register creates a regular user account, broadcasts the registration, and
// logs the new user in.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req.Password != req.PasswordConfirm {
		return nil, apperr.Invalidf("passwords don't match")
	}

	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, apperr.Invalidf("username already in use")
	}
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Invalidf("email already in use")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      authz.RoleUser.String(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publisher.Publish(broadcast.NewUserEvent(broadcast.ActionRegister, dto.FromUser(user, s.blobs.URL)))

	return s.issueTokens(ctx, user)
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		// Dummy compare so the response time doesn't reveal whether the
		// username exists.
		auth.VerifyPassword("$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e", req.Password)
		return nil, apperr.Unauthenticatedf("invalid credentials")
	}

	if err := auth.VerifyPassword(user.Password, req.Password); err != nil {
		return nil, apperr.Unauthenticatedf("invalid credentials")
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:    dto.FromUser(user, s.blobs.URL),
		Access:  accessToken,
		Refresh: refreshToken.Token,
	}, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) RefreshAccessToken(ctx context.Context, refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.Unauthenticatedf("invalid refresh token")
		}
		return "", err
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		if err := s.refreshTokenRepo.Delete(ctx, refreshToken.ID); err != nil {
			s.logger.Error("failed to delete expired refresh token", "id", refreshToken.ID, "error", err)
		}
		return "", apperr.Unauthenticatedf("refresh token expired")
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return "", apperr.Unauthenticatedf("user no longer exists")
	}

	return s.generateAccessToken(user)
}

// Logout revokes the refresh token so it can no longer mint access tokens.
// Access tokens already issued stay valid until they expire.
func (s *authService) Logout(ctx context.Context, refreshTokenString string) error {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unauthenticatedf("invalid refresh token")
		}
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, refreshToken.ID)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, apperr.Unauthenticatedf("invalid token")
	}
	if !token.Valid {
		return nil, apperr.Unauthenticatedf("invalid token")
	}
	return claims, nil
}
