package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RevokedToken marks a session token id as permanently unusable.
// ExpiresAt is the natural expiry of the revoked token; rows past it can be purged.
type RevokedToken struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	JTI       string    `gorm:"column:jti;size:64;uniqueIndex;not null" json:"jti"`
	RevokedAt time.Time `gorm:"autoCreateTime" json:"revoked_at"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}

func (t *RevokedToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
