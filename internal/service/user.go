package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/blob"
	"github.com/pageza/recipehub/backend/internal/models"
)

const topUsersLimit = 2

type UserConfig struct {
	DefaultProfilePicture string
	MaxUploadBytes        int64
}

type UserService struct {
	db      *gorm.DB
	recipes *RecipeService
	blobs   blob.Store
	cfg     UserConfig
	log     zerolog.Logger
}

func NewUserService(db *gorm.DB, recipes *RecipeService, blobs blob.Store, cfg UserConfig, log zerolog.Logger) *UserService {
	return &UserService{
		db:      db,
		recipes: recipes,
		blobs:   blobs,
		cfg:     cfg,
		log:     log.With().Str("component", "users").Logger(),
	}
}

func (s *UserService) load(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("loading user: %w", err))
	}
	return &user, nil
}

func (s *UserService) Me(ctx context.Context, actor uuid.UUID) (*models.UserView, error) {
	user, err := s.load(ctx, "id = ?", actor)
	if err != nil {
		return nil, err
	}
	v := user.View()
	return &v, nil
}

func (s *UserService) ByID(ctx context.Context, id string) (*models.UserView, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NotFound("User not found")
	}
	return s.Me(ctx, uid)
}

func (s *UserService) ByUsername(ctx context.Context, username string) (*models.UserView, error) {
	user, err := s.load(ctx, "username = ?", username)
	if err != nil {
		return nil, err
	}
	v := user.View()
	return &v, nil
}

// RecipesOf lists the recipes owned by the user with the given id.
func (s *UserService) RecipesOf(ctx context.Context, actor *uuid.UUID, userID string) ([]any, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.NotFound("User not found")
	}
	if _, err := s.load(ctx, "id = ?", uid); err != nil {
		return nil, err
	}
	return s.recipes.Engine().ListOwnedBy(ctx, actor, uid)
}

// TopUsers returns the users with the most recipes, with their counts.
func (s *UserService) TopUsers(ctx context.Context) ([]models.UserView, error) {
	var rows []struct {
		UserID  uuid.UUID
		Recipes int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("user_id, COUNT(*) AS recipes").
		Group("user_id").
		Order("recipes DESC, user_id").
		Limit(topUsersLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("ranking users: %w", err))
	}

	out := make([]models.UserView, 0, len(rows))
	for _, row := range rows {
		user, err := s.load(ctx, "id = ?", row.UserID)
		if err != nil {
			continue
		}
		v := user.View()
		count := row.Recipes
		v.RecipeCount = &count
		out = append(out, v)
	}
	return out, nil
}

func (s *UserService) favoriteIDs(ctx context.Context, actor uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.RecipeFavorite{}).
		Where("user_id = ?", actor).
		Order("created_at desc").
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("loading favorites: %w", err))
	}
	return ids, nil
}

// FavoriteIDs returns the ids of the recipes actor has favorited.
func (s *UserService) FavoriteIDs(ctx context.Context, actor uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.favoriteIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

// Favorites returns the recipes actor has favorited, most recent first.
func (s *UserService) Favorites(ctx context.Context, actor uuid.UUID) ([]any, error) {
	ids, err := s.favoriteIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes.loadOrdered(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	out := make([]any, 0, len(recipes))
	for i := range recipes {
		out = append(out, s.recipes.Engine().View(&actor, &recipes[i]))
	}
	return out, nil
}

// ToggleFavorite is the user-side entry point of the like toggle.
func (s *UserService) ToggleFavorite(ctx context.Context, actor uuid.UUID, recipeID string) (*FavoriteResult, error) {
	return s.recipes.ToggleFavorite(ctx, actor, recipeID)
}

// SetProfilePicture stores upload and points actor's profile at it. The
// previous picture is removed unless it is the shared default.
func (s *UserService) SetProfilePicture(ctx context.Context, actor uuid.UUID, upload blob.Upload) (*models.UserView, error) {
	if err := checkUploadSize(upload, s.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}
	user, err := s.load(ctx, "id = ?", actor)
	if err != nil {
		return nil, err
	}

	id, err := s.blobs.Put(ctx, upload)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("storing profile picture: %w", err))
	}
	if err := s.setPicture(ctx, user, id); err != nil {
		s.dropPicture(ctx, id)
		return nil, err
	}
	v := user.View()
	return &v, nil
}

// ResetProfilePicture points actor's profile back at the default picture.
func (s *UserService) ResetProfilePicture(ctx context.Context, actor uuid.UUID) (*models.UserView, error) {
	user, err := s.load(ctx, "id = ?", actor)
	if err != nil {
		return nil, err
	}
	if err := s.setPicture(ctx, user, s.cfg.DefaultProfilePicture); err != nil {
		return nil, err
	}
	v := user.View()
	return &v, nil
}

func (s *UserService) setPicture(ctx context.Context, user *models.User, id string) error {
	previous := user.ProfilePicture
	err := s.db.WithContext(ctx).Model(user).Update("profile_picture", id).Error
	if err != nil {
		return apperror.Internal(fmt.Errorf("saving profile picture: %w", err))
	}
	user.ProfilePicture = id
	if previous != "" && previous != id {
		s.dropPicture(ctx, previous)
	}
	return nil
}

func (s *UserService) dropPicture(ctx context.Context, id string) {
	if id == s.cfg.DefaultProfilePicture {
		return
	}
	if err := s.blobs.Delete(ctx, id); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.log.Warn().Err(err).Str("blob_id", id).Msg("failed to delete profile picture")
	}
}
