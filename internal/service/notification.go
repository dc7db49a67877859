package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/crud"
	"github.com/pageza/recipehub/backend/internal/models"
)

type NotificationEngine = crud.Engine[models.Notification, *models.Notification]

// NotificationService exposes notifications read-only through the engine.
// The only mutation clients may perform is marking one as read.
type NotificationService struct {
	db            *gorm.DB
	notifications *NotificationEngine
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		db: db,
		notifications: crud.New[models.Notification](db, crud.Descriptor[models.Notification]{
			Plural:    "notifications",
			UserOwned: true,
			Routes:    crud.ReadRoutes,
		}),
	}
}

func (s *NotificationService) Engine() *NotificationEngine { return s.notifications }

type ReadResult struct {
	ID   uuid.UUID `json:"id"`
	Read bool      `json:"read"`

	// AlreadyRead is set when the call changed nothing.
	AlreadyRead bool `json:"-"`
}

// MarkRead flips the read flag of one of actor's notifications. The payload
// must be exactly a request to set read to true. Marking an already read
// notification succeeds without writing.
func (s *NotificationService) MarkRead(ctx context.Context, actor *uuid.UUID, id string, payload map[string]any) (*ReadResult, error) {
	if actor == nil {
		return nil, apperror.Unauthorized("Authentication required")
	}
	if read, ok := payload["read"].(bool); !ok || !read || len(payload) != 1 {
		return nil, apperror.BadRequest("You can only mark notifications as read")
	}

	n, err := s.notifications.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.Authorize(actor, n, "update"); err != nil {
		return nil, err
	}
	if n.Read {
		return &ReadResult{ID: n.ID, Read: true, AlreadyRead: true}, nil
	}

	err = s.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", n.ID).Update("read", true).Error
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("marking notification %s read: %w", id, err))
	}
	return &ReadResult{ID: n.ID, Read: true}, nil
}

// MarkAllRead marks every unread notification of actor as read and returns
// how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", actor, false).
		Update("read", true)
	if res.Error != nil {
		return 0, apperror.Internal(fmt.Errorf("marking notifications read: %w", res.Error))
	}
	return res.RowsAffected, nil
}
