package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blob holds uploaded images when the database blob backend is selected.
type Blob struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey"`
	CreatedAt   time.Time
	Filename    string `gorm:"size:255"`
	ContentType string `gorm:"size:100;not null"`
	Size        int64  `gorm:"not null"`
	Data        []byte `gorm:"not null"`
}

func (b *Blob) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every model managed by migrations.
func All() []any {
	return []any{
		&User{},
		&Recipe{},
		&RecipeFavorite{},
		&Comment{},
		&Notification{},
		&RevokedToken{},
		&Blob{},
	}
}
