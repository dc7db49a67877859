package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/blob"
	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/service"
	"github.com/pageza/recipehub/backend/internal/testhelpers"
)

var ctx = context.Background()

type fixture struct {
	db            *gorm.DB
	blobs         *blob.GormStore
	recipes       *service.RecipeService
	comments      *service.CommentService
	notifications *service.NotificationService
	users         *service.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	log := logging.Nop()
	blobs := blob.NewGormStore(db)
	recipes := service.NewRecipeService(db, blobs, service.RecipeConfig{MaxUploadBytes: 1024}, log)
	return &fixture{
		db:            db,
		blobs:         blobs,
		recipes:       recipes,
		comments:      service.NewCommentService(db, log),
		notifications: service.NewNotificationService(db),
		users: service.NewUserService(db, recipes, blobs, service.UserConfig{
			DefaultProfilePicture: "default-profile-picture",
			MaxUploadBytes:        1024,
		}, log),
	}
}

func (f *fixture) user(t *testing.T, username string) uuid.UUID {
	t.Helper()
	u := models.User{
		Email:          username + "@example.com",
		Username:       username,
		PasswordHash:   "x",
		ProfilePicture: "default-profile-picture",
	}
	require.NoError(t, f.db.Create(&u).Error)
	return u.ID
}

func recipePayload(name string) map[string]any {
	return map[string]any{
		"name":        name,
		"title":       name + " deluxe",
		"prep_time":   float64(10),
		"cook_time":   float64(20),
		"servings":    float64(4),
		"ingredients": []any{"flour", "milk"},
		"directions":  []any{"mix", "bake"},
		"tags":        []any{"breakfast", "breakfast", "sweet"},
		"category":    []any{"baking"},
	}
}

func (f *fixture) recipe(t *testing.T, owner uuid.UUID, name string) uuid.UUID {
	t.Helper()
	created, err := f.recipes.Engine().Create(ctx, &owner, recipePayload(name))
	require.NoError(t, err)
	return created.(models.RecipeView).ID
}

func (f *fixture) notificationsOf(t *testing.T, recipient uuid.UUID) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, f.db.Where("user_id = ?", recipient).Find(&out).Error)
	return out
}
