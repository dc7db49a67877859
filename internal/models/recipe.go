package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID          uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	UserID      uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User        *User            `gorm:"foreignKey:UserID" json:"-"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Title       string           `gorm:"size:255" json:"title"`
	PrepTime    int              `json:"prep_time"`
	CookTime    int              `json:"cook_time"`
	Servings    int              `json:"servings"`
	Ingredients StringArray      `gorm:"type:text" json:"ingredients"`
	Directions  StringArray      `gorm:"type:text" json:"directions"`
	Tags        StringArray      `gorm:"type:text" json:"tags"`
	Category    StringArray      `gorm:"type:text" json:"category"`
	Image       string           `gorm:"size:64" json:"image"`
	Favorites   []RecipeFavorite `gorm:"foreignKey:RecipeID" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Recipe) GetID() uuid.UUID { return r.ID }

func (r *Recipe) OwnerID() uuid.UUID { return r.UserID }

// OwnerRef reports the owner from the preloaded user, when present.
func (r *Recipe) OwnerRef() (uuid.UUID, bool) {
	if r.User == nil {
		return uuid.Nil, false
	}
	return r.User.ID, true
}

func (r *Recipe) Label() string { return r.Name }

// LikeCount is derived from the liking set, never stored.
func (r *Recipe) LikeCount() int { return len(r.Favorites) }

func (r *Recipe) LikedBy(userID uuid.UUID) bool {
	for _, f := range r.Favorites {
		if f.UserID == userID {
			return true
		}
	}
	return false
}

type RecipeView struct {
	ID          uuid.UUID   `json:"id"`
	Owner       uuid.UUID   `json:"user"`
	Author      *AuthorView `json:"author,omitempty"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	PrepTime    int         `json:"prep_time"`
	CookTime    int         `json:"cook_time"`
	Servings    int         `json:"servings"`
	Ingredients []string    `json:"ingredients"`
	Directions  []string    `json:"directions"`
	Tags        []string    `json:"tags"`
	Category    []string    `json:"category"`
	Image       string      `json:"image,omitempty"`
	LikeCount   int         `json:"like_count"`
	LikedBy     []uuid.UUID `json:"liked_by"`
	CreatedAt   time.Time   `json:"created_at"`
	IsOwner     *bool       `json:"is_owner,omitempty"`
}

func (r *Recipe) Present(isOwner *bool) any {
	return r.View(isOwner)
}

func (r *Recipe) View(isOwner *bool) RecipeView {
	likedBy := make([]uuid.UUID, 0, len(r.Favorites))
	for _, f := range r.Favorites {
		likedBy = append(likedBy, f.UserID)
	}
	return RecipeView{
		ID:          r.ID,
		Owner:       r.UserID,
		Author:      authorOf(r.User),
		Name:        r.Name,
		Title:       r.Title,
		PrepTime:    r.PrepTime,
		CookTime:    r.CookTime,
		Servings:    r.Servings,
		Ingredients: nonNil(r.Ingredients),
		Directions:  nonNil(r.Directions),
		Tags:        nonNil(r.Tags),
		Category:    nonNil(r.Category),
		Image:       r.Image,
		LikeCount:   r.LikeCount(),
		LikedBy:     likedBy,
		CreatedAt:   r.CreatedAt,
		IsOwner:     isOwner,
	}
}

func nonNil(a StringArray) []string {
	if a == nil {
		return []string{}
	}
	return a
}
