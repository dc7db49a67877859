package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/crud"
	"github.com/pageza/recipehub/backend/internal/models"
)

type CommentEngine = crud.Engine[models.Comment, *models.Comment]

// CommentService wires the comment resource and its notification side effects.
type CommentService struct {
	comments *CommentEngine
	log      zerolog.Logger
}

func NewCommentService(db *gorm.DB, log zerolog.Logger) *CommentService {
	s := &CommentService{log: log.With().Str("component", "comments").Logger()}
	s.comments = crud.New[models.Comment](db, crud.Descriptor[models.Comment]{
		Plural:    "comments",
		Required:  []string{"body", "recipe"},
		UserOwned: true,
		SetOwner:  func(c *models.Comment, id uuid.UUID) { c.UserID = id },
		Fields: []crud.Field[models.Comment]{
			crud.String("body", func(c *models.Comment, v string) { c.Body = v }),
			crud.Ref("recipe", crud.Reference{Name: "recipe", Model: &models.Recipe{}},
				func(c *models.Comment, id uuid.UUID) { c.RecipeID = id }).CreateOnly(),
		},
		Preload:      []string{"User"},
		AfterCreate:  s.notifyOwner,
		BeforeDelete: s.dropNotifications,
	})
	return s
}

func (s *CommentService) Engine() *CommentEngine { return s.comments }

// notifyOwner tells the recipe owner about a new comment. Failures are logged
// and do not undo the comment.
func (s *CommentService) notifyOwner(ctx context.Context, db *gorm.DB, c *models.Comment, actor uuid.UUID) error {
	var recipe models.Recipe
	if err := db.WithContext(ctx).First(&recipe, "id = ?", c.RecipeID).Error; err != nil {
		s.log.Error().Err(err).Str("comment_id", c.ID.String()).Msg("failed to load recipe for comment notification")
		return nil
	}
	var author models.User
	if err := db.WithContext(ctx).First(&author, "id = ?", actor).Error; err != nil {
		s.log.Error().Err(err).Str("comment_id", c.ID.String()).Msg("failed to load comment author")
		return nil
	}

	commentID := c.ID
	n := &models.Notification{
		UserID:    recipe.UserID,
		ActorID:   actor,
		RecipeID:  recipe.ID,
		CommentID: &commentID,
		Kind:      models.NotificationComment,
		Message:   fmt.Sprintf("%s commented on your recipe '%s'", author.Username, recipeTitle(&recipe)),
	}
	if err := notify(ctx, db, n); err != nil {
		s.log.Error().Err(err).Str("comment_id", c.ID.String()).Msg("failed to create comment notification")
	}
	return nil
}

func (s *CommentService) dropNotifications(ctx context.Context, db *gorm.DB, c *models.Comment) error {
	err := db.WithContext(ctx).Where("comment_id = ?", c.ID).Delete(&models.Notification{}).Error
	if err != nil {
		return apperror.Internal(fmt.Errorf("deleting notifications of comment %s: %w", c.ID, err))
	}
	return nil
}
