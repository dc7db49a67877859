package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipehub/backend/internal/blob"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*Session, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	PurgeRevoked(ctx context.Context) (int64, error)
}

// IUserService defines the interface for user lookups, favorites and pictures
type IUserService interface {
	Me(ctx context.Context, actor uuid.UUID) (*models.UserView, error)
	ByID(ctx context.Context, id string) (*models.UserView, error)
	ByUsername(ctx context.Context, username string) (*models.UserView, error)
	RecipesOf(ctx context.Context, actor *uuid.UUID, userID string) ([]any, error)
	TopUsers(ctx context.Context) ([]models.UserView, error)
	Favorites(ctx context.Context, actor uuid.UUID) ([]any, error)
	FavoriteIDs(ctx context.Context, actor uuid.UUID) ([]uuid.UUID, error)
	ToggleFavorite(ctx context.Context, actor uuid.UUID, recipeID string) (*FavoriteResult, error)
	SetProfilePicture(ctx context.Context, actor uuid.UUID, upload blob.Upload) (*models.UserView, error)
	ResetProfilePicture(ctx context.Context, actor uuid.UUID) (*models.UserView, error)
}

// IRecipeService defines the recipe operations beyond generic CRUD
type IRecipeService interface {
	ToggleFavorite(ctx context.Context, actor uuid.UUID, recipeID string) (*FavoriteResult, error)
	Popular(ctx context.Context, actor *uuid.UUID) ([]any, error)
	SetImage(ctx context.Context, actor *uuid.UUID, recipeID string, upload blob.Upload) (any, error)
}

// INotificationService defines the narrow notification mutations
type INotificationService interface {
	MarkRead(ctx context.Context, actor *uuid.UUID, id string, payload map[string]any) (*ReadResult, error)
	MarkAllRead(ctx context.Context, actor uuid.UUID) (int64, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ INotificationService = (*NotificationService)(nil)
)
