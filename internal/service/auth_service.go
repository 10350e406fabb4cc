package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "studytracker/internal/errors"
	"studytracker/internal/model"
	"studytracker/internal/repository"
)

const maxUsernameLength = 32

type AuthService struct {
	userRepo  UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(userRepo UserStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Register creates an account. Usernames identify users and are not secret.
func (s *AuthService) Register(ctx context.Context, username, name string) (*AuthResult, *apperrors.APIError) {
	normalizedUsername, apiErr := normalizeUsername(username)
	if apiErr != nil {
		return nil, apiErr
	}
	displayName := strings.TrimSpace(name)
	if displayName == "" {
		displayName = normalizedUsername
	}

	user := model.User{
		ID:        uuid.NewString(),
		Username:  normalizedUsername,
		Name:      displayName,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := s.userRepo.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, apperrors.Conflict("username_taken", "username already taken", nil)
		}
		return nil, apperrors.Internal("failed to create user")
	}

	token, apiErr := s.issueToken(user)
	if apiErr != nil {
		return nil, apiErr
	}

	return &AuthResult{
		Token: token,
		User:  user,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, username string) (*AuthResult, *apperrors.APIError) {
	normalizedUsername, apiErr := normalizeUsername(username)
	if apiErr != nil {
		return nil, apiErr
	}

	user, err := s.userRepo.GetByUsername(ctx, normalizedUsername)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user_not_found", "user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to query user")
	}

	token, apiErr := s.issueToken(*user)
	if apiErr != nil {
		return nil, apiErr
	}

	return &AuthResult{
		Token: token,
		User:  *user,
	}, nil
}

func (s *AuthService) ParseToken(tokenString string) (string, *apperrors.APIError) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", apperrors.Unauthorized("invalid token")
	}

	if claims.Subject == "" {
		return "", apperrors.Unauthorized("invalid token subject")
	}

	return claims.Subject, nil
}

func (s *AuthService) issueToken(user model.User) (string, *apperrors.APIError) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Internal("failed to sign token")
	}
	return signed, nil
}

func normalizeUsername(raw string) (string, *apperrors.APIError) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if username == "" {
		return "", apperrors.BadRequest("invalid_username", "username is required")
	}
	if len(username) > maxUsernameLength {
		return "", apperrors.BadRequest("invalid_username", "username must be at most 32 characters")
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return "", apperrors.BadRequest("invalid_username", "username must not contain whitespace")
	}
	return username, nil
}
