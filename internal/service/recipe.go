package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/blob"
	"github.com/pageza/recipehub/backend/internal/crud"
	"github.com/pageza/recipehub/backend/internal/database"
	"github.com/pageza/recipehub/backend/internal/models"
)

const popularLimit = 4

type RecipeEngine = crud.Engine[models.Recipe, *models.Recipe]

type RecipeConfig struct {
	PopularRefresh time.Duration
	MaxUploadBytes int64
}

// RecipeService owns the recipe resource plus likes, popularity and images.
type RecipeService struct {
	db        *gorm.DB
	recipes   *RecipeEngine
	blobs     blob.Store
	popular   *PopularCache
	maxUpload int64
	log       zerolog.Logger
}

func NewRecipeService(db *gorm.DB, blobs blob.Store, cfg RecipeConfig, log zerolog.Logger) *RecipeService {
	if cfg.PopularRefresh <= 0 {
		cfg.PopularRefresh = 4 * time.Hour
	}
	s := &RecipeService{
		db:        db,
		blobs:     blobs,
		popular:   NewPopularCache(cfg.PopularRefresh),
		maxUpload: cfg.MaxUploadBytes,
		log:       log.With().Str("component", "recipes").Logger(),
	}
	s.recipes = crud.New[models.Recipe](db, s.descriptor())
	return s
}

func (s *RecipeService) Engine() *RecipeEngine { return s.recipes }

func (s *RecipeService) descriptor() crud.Descriptor[models.Recipe] {
	return crud.Descriptor[models.Recipe]{
		Plural: "recipes",
		Required: []string{
			"name", "title", "prep_time", "cook_time", "servings",
			"ingredients", "directions", "tags", "category",
		},
		UserOwned: true,
		SetOwner:  func(r *models.Recipe, id uuid.UUID) { r.UserID = id },
		Fields: []crud.Field[models.Recipe]{
			crud.String("name", func(r *models.Recipe, v string) { r.Name = v }),
			crud.String("title", func(r *models.Recipe, v string) { r.Title = v }),
			crud.Int("prep_time", func(r *models.Recipe, v int) { r.PrepTime = v }).Unsigned(),
			crud.Int("cook_time", func(r *models.Recipe, v int) { r.CookTime = v }).Unsigned(),
			crud.Int("servings", func(r *models.Recipe, v int) { r.Servings = v }).Unsigned(),
			crud.Strings("ingredients", func(r *models.Recipe, v []string) { r.Ingredients = v }),
			crud.Strings("directions", func(r *models.Recipe, v []string) { r.Directions = v }),
			crud.Strings("tags", func(r *models.Recipe, v []string) { r.Tags = models.UniqueStrings(v) }),
			crud.Strings("category", func(r *models.Recipe, v []string) { r.Category = models.UniqueStrings(v) }),
		},
		Preload:      []string{"User", "Favorites"},
		BeforeDelete: s.cascade,
		AfterDelete: func(context.Context, *models.Recipe) {
			s.popular.Invalidate()
		},
	}
}

// cascade removes everything that references the recipe.
func (s *RecipeService) cascade(ctx context.Context, db *gorm.DB, r *models.Recipe) error {
	tx := db.WithContext(ctx)
	for _, target := range []any{&models.RecipeFavorite{}, &models.Notification{}, &models.Comment{}} {
		if err := tx.Where("recipe_id = ?", r.ID).Delete(target).Error; err != nil {
			return apperror.Internal(fmt.Errorf("cascading delete of recipe %s: %w", r.ID, err))
		}
	}
	if r.Image != "" {
		s.dropBlob(ctx, r.Image)
	}
	return nil
}

func (s *RecipeService) dropBlob(ctx context.Context, id string) {
	if err := s.blobs.Delete(ctx, id); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.log.Warn().Err(err).Str("blob_id", id).Msg("failed to delete image")
	}
}

// FavoriteResult is the outcome of a like toggle.
type FavoriteResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
	Recipe    any  `json:"recipe"`
}

// ToggleFavorite likes the recipe for actor, or undoes an existing like.
// Liking notifies the owner unless they liked their own recipe; unliking
// removes that notification again.
func (s *RecipeService) ToggleFavorite(ctx context.Context, actor uuid.UUID, recipeID string) (*FavoriteResult, error) {
	recipe, err := s.recipes.Find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var existing models.RecipeFavorite
	err = db.Where("recipe_id = ? AND user_id = ?", recipe.ID, actor).First(&existing).Error
	switch {
	case err == nil:
		if err := s.unlike(ctx, recipe, actor, &existing); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.like(ctx, recipe, actor); err != nil {
			return nil, err
		}
	default:
		return nil, apperror.Internal(fmt.Errorf("loading favorite: %w", err))
	}

	updated, err := s.recipes.Find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return &FavoriteResult{
		Liked:     updated.LikedBy(actor),
		LikeCount: updated.LikeCount(),
		Recipe:    s.recipes.View(&actor, updated),
	}, nil
}

func (s *RecipeService) like(ctx context.Context, recipe *models.Recipe, actor uuid.UUID) error {
	db := s.db.WithContext(ctx)
	var liker models.User
	if err := db.First(&liker, "id = ?", actor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Unauthorized("User not found")
		}
		return apperror.Internal(fmt.Errorf("loading liker: %w", err))
	}
	if err := db.Create(&models.RecipeFavorite{RecipeID: recipe.ID, UserID: actor}).Error; err != nil {
		if database.IsUniqueViolation(err) {
			// a concurrent request already liked it
			return nil
		}
		return apperror.Internal(fmt.Errorf("creating favorite: %w", err))
	}

	n := &models.Notification{
		UserID:   recipe.UserID,
		ActorID:  actor,
		RecipeID: recipe.ID,
		Kind:     models.NotificationFavorite,
		Message:  fmt.Sprintf("%s liked your recipe '%s'", liker.Username, recipeTitle(recipe)),
	}
	if err := notify(ctx, s.db, n); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *RecipeService) unlike(ctx context.Context, recipe *models.Recipe, actor uuid.UUID, fav *models.RecipeFavorite) error {
	db := s.db.WithContext(ctx)
	if err := db.Delete(fav).Error; err != nil {
		return apperror.Internal(fmt.Errorf("deleting favorite: %w", err))
	}
	err := db.Where("user_id = ? AND actor_id = ? AND recipe_id = ? AND kind = ?",
		recipe.UserID, actor, recipe.ID, models.NotificationFavorite).
		Delete(&models.Notification{}).Error
	if err != nil {
		return apperror.Internal(fmt.Errorf("deleting favorite notification: %w", err))
	}
	return nil
}

// Popular returns up to four recipes ranked by likes. When nothing has been
// liked yet it falls back to a random sample that is kept for the refresh interval.
func (s *RecipeService) Popular(ctx context.Context, actor *uuid.UUID) ([]any, error) {
	ids, err := s.mostLiked(ctx, popularLimit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(ids) == 0 {
		ids, err = s.popular.Get(ctx, func(ctx context.Context) ([]uuid.UUID, error) {
			return s.randomSample(ctx, popularLimit)
		})
		if err != nil {
			return nil, apperror.Internal(err)
		}
	}

	recipes, err := s.loadOrdered(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	out := make([]any, 0, len(recipes))
	for i := range recipes {
		out = append(out, s.recipes.View(actor, &recipes[i]))
	}
	return out, nil
}

func (s *RecipeService) mostLiked(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var rows []struct {
		RecipeID uuid.UUID
		Likes    int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.RecipeFavorite{}).
		Select("recipe_id, COUNT(*) AS likes").
		Group("recipe_id").
		Order("likes DESC, recipe_id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ranking recipes: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.RecipeID)
	}
	return ids, nil
}

func (s *RecipeService) randomSample(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Order("RANDOM()").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("sampling recipes: %w", err)
	}
	return ids, nil
}

// loadOrdered loads recipes by id, keeping the order of ids and skipping
// ids that no longer exist.
func (s *RecipeService) loadOrdered(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Favorites").
		Where("id IN ?", ids).
		Find(&found).Error
	if err != nil {
		return nil, fmt.Errorf("loading recipes: %w", err)
	}
	byID := make(map[uuid.UUID]models.Recipe, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	ordered := make([]models.Recipe, 0, len(found))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// SetImage stores a new image for the recipe and drops the previous one.
func (s *RecipeService) SetImage(ctx context.Context, actor *uuid.UUID, recipeID string, upload blob.Upload) (any, error) {
	recipe, err := s.recipes.Find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.recipes.Authorize(actor, recipe, "update"); err != nil {
		return nil, err
	}
	if err := checkUploadSize(upload, s.maxUpload); err != nil {
		return nil, err
	}

	id, err := s.blobs.Put(ctx, upload)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("storing recipe image: %w", err))
	}
	err = s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipe.ID).Update("image", id).Error
	if err != nil {
		s.dropBlob(ctx, id)
		return nil, apperror.Internal(fmt.Errorf("saving recipe image: %w", err))
	}
	if recipe.Image != "" {
		s.dropBlob(ctx, recipe.Image)
	}

	updated, err := s.recipes.Find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return s.recipes.View(actor, updated), nil
}

func recipeTitle(r *models.Recipe) string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

func checkUploadSize(upload blob.Upload, max int64) error {
	if max > 0 && upload.Size > max {
		return apperror.BadRequest(fmt.Sprintf("File exceeds the %dMB limit", max/(1024*1024)))
	}
	return nil
}

// notify persists n unless the actor is also the recipient.
func notify(ctx context.Context, db *gorm.DB, n *models.Notification) error {
	if n.ActorID == n.UserID {
		return nil
	}
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}
