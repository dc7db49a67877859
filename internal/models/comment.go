package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;index" json:"recipe_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Comment) GetID() uuid.UUID { return c.ID }

func (c *Comment) OwnerID() uuid.UUID { return c.UserID }

func (c *Comment) OwnerRef() (uuid.UUID, bool) {
	if c.User == nil {
		return uuid.Nil, false
	}
	return c.User.ID, true
}

func (c *Comment) Label() string { return c.Body }

type CommentView struct {
	ID        uuid.UUID   `json:"id"`
	Owner     uuid.UUID   `json:"user"`
	Author    *AuthorView `json:"author,omitempty"`
	Recipe    uuid.UUID   `json:"recipe"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
	IsOwner   *bool       `json:"is_owner,omitempty"`
}

func (c *Comment) Present(isOwner *bool) any {
	return CommentView{
		ID:        c.ID,
		Owner:     c.UserID,
		Author:    authorOf(c.User),
		Recipe:    c.RecipeID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		IsOwner:   isOwner,
	}
}
