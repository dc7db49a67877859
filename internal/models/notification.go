package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotificationFavorite NotificationKind = "favorite"
	NotificationComment  NotificationKind = "comment"
)

// Notification tells UserID (the recipient) that ActorID did something to RecipeID.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UserID    uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ActorID   uuid.UUID        `gorm:"type:varchar(36);not null" json:"actor_id"`
	RecipeID  uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"recipe_id"`
	CommentID *uuid.UUID       `gorm:"type:varchar(36)" json:"comment_id,omitempty"`
	Kind      NotificationKind `gorm:"size:20;not null" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (n *Notification) GetID() uuid.UUID { return n.ID }

// OwnerID is the recipient.
func (n *Notification) OwnerID() uuid.UUID { return n.UserID }

type NotificationView struct {
	ID        uuid.UUID        `json:"id"`
	Owner     uuid.UUID        `json:"user"`
	Actor     uuid.UUID        `json:"actor"`
	Recipe    uuid.UUID        `json:"recipe"`
	Comment   *uuid.UUID       `json:"comment,omitempty"`
	Kind      NotificationKind `json:"type"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
	IsOwner   *bool            `json:"is_owner,omitempty"`
}

func (n *Notification) Present(isOwner *bool) any {
	return NotificationView{
		ID:        n.ID,
		Owner:     n.UserID,
		Actor:     n.ActorID,
		Recipe:    n.RecipeID,
		Comment:   n.CommentID,
		Kind:      n.Kind,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
		IsOwner:   isOwner,
	}
}
