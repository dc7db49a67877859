package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/database"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/types"
)

const invalidCredentials = "Invalid email or password"

// AuthConfig carries the token settings of AuthService.
type AuthConfig struct {
	JWTSecret             string
	Issuer                string
	TokenTTL              time.Duration
	DefaultProfilePicture string
}

type AuthService struct {
	db          *gorm.DB
	revocations RevocationStore
	cfg         AuthConfig
	log         zerolog.Logger
	now         func() time.Time
}

func NewAuthService(db *gorm.DB, revocations RevocationStore, cfg AuthConfig, log zerolog.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 2 * time.Hour
	}
	return &AuthService{
		db:          db,
		revocations: revocations,
		cfg:         cfg,
		log:         log.With().Str("component", "auth").Logger(),
		now:         time.Now,
	}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      models.UserView `json:"user"`
}

func missingFields(fields ...[2]string) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	return missing
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if missing := missingFields([2]string{"email", email}, [2]string{"username", username}, [2]string{"password", in.Password}); len(missing) > 0 {
		return nil, apperror.BadRequest("Missing required fields").
			WithDetails(map[string]any{"missing_fields": missing})
	}

	db := s.db.WithContext(ctx)
	taken, err := exists(db, &models.User{}, "email = ?", email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if taken {
		return nil, apperror.Conflict("Email already exists")
	}
	taken, err = exists(db, &models.User{}, "username = ?", username)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if taken {
		return nil, apperror.Conflict("Username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("hashing password: %w", err))
	}

	user := models.User{
		Email:          email,
		Username:       username,
		PasswordHash:   string(hashedPassword),
		ProfilePicture: s.cfg.DefaultProfilePicture,
	}
	if err := db.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("Email or username already exists")
		}
		return nil, apperror.Internal(fmt.Errorf("creating user: %w", err))
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return &user, nil
}

// Authenticate verifies credentials and issues a session token. Unknown
// emails and wrong passwords produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if missing := missingFields([2]string{"email", email}, [2]string{"password", password}); len(missing) > 0 {
		return nil, apperror.BadRequest("Missing email or password").
			WithDetails(map[string]any{"missing_fields": missing})
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("loading user: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	token, expiresAt, err := s.issue(&user)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("signing token: %w", err))
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user.View()}, nil
}

func (s *AuthService) issue(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	return signed, expiresAt, err
}

// ValidateToken checks signature, expiry, issuer and the revocation list, and
// that the user behind the token still exists.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	if tokenString == "" {
		return nil, apperror.Unauthorized("missing token")
	}

	claims := &types.TokenClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Unauthorized("token has expired")
		}
		return nil, apperror.Unauthorized("invalid token")
	}
	if claims.ID == "" || claims.UserID == uuid.Nil {
		return nil, apperror.Unauthorized("invalid token claims")
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if revoked {
		return nil, apperror.Unauthorized("token has been revoked")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", claims.UserID).Count(&count).Error; err != nil {
		return nil, apperror.Internal(fmt.Errorf("checking token user: %w", err))
	}
	if count == 0 {
		return nil, apperror.Unauthorized("user no longer exists")
	}
	return claims, nil
}

// Revoke makes the token with jti unusable. Revoking twice is a no-op.
func (s *AuthService) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return apperror.BadRequest("token has no id")
	}
	if err := s.revocations.Revoke(ctx, jti, expiresAt); err != nil {
		return apperror.Internal(err)
	}
	s.log.Info().Str("jti", jti).Msg("token revoked")
	return nil
}

// PurgeRevoked removes revocation records for tokens that have expired.
func (s *AuthService) PurgeRevoked(ctx context.Context) (int64, error) {
	return s.revocations.Purge(ctx, s.now())
}

func exists(db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
