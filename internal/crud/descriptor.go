package crud

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity is what the engine needs from a model beyond gorm persistence.
type Entity interface {
	GetID() uuid.UUID
	// Present builds the client view. isOwner is nil for anonymous callers.
	Present(isOwner *bool) any
}

// Labeled entities name themselves in delete messages.
type Labeled interface {
	Label() string
}

// Route selects which generic endpoints a resource exposes.
type Route uint8

const (
	RouteList Route = 1 << iota
	RouteGet
	RouteMine
	RouteCreate
	RouteUpdate
	RouteDelete

	AllRoutes  = RouteList | RouteGet | RouteMine | RouteCreate | RouteUpdate | RouteDelete
	ReadRoutes = RouteList | RouteGet | RouteMine
)

// Descriptor configures an Engine for one entity type.
type Descriptor[T any] struct {
	Plural   string // route segment and message noun, e.g. "recipes"
	Singular string // capitalized noun, derived from Plural when empty

	Required []string

	// UserOwned enables ownership checks and owner injection on create.
	UserOwned   bool
	OwnerColumn string // column filtered by ListMine, defaults to user_id
	SetOwner    func(*T, uuid.UUID)

	Fields  []Field[T]
	Preload []string
	Order   string

	AfterCreate  func(ctx context.Context, db *gorm.DB, entity *T, actor uuid.UUID) error
	BeforeDelete func(ctx context.Context, db *gorm.DB, entity *T) error
	AfterDelete  func(ctx context.Context, entity *T)

	Routes Route
}

// ownerKeys are payload keys that would reassign ownership.
var ownerKeys = []string{"user", "user_id"}

func (d *Descriptor[T]) normalize() {
	if d.Singular == "" {
		d.Singular = singularize(d.Plural)
	}
	if d.OwnerColumn == "" {
		d.OwnerColumn = "user_id"
	}
	if d.Order == "" {
		d.Order = "created_at desc"
	}
	if d.Routes == 0 {
		d.Routes = AllRoutes
	}
}

func singularize(plural string) string {
	s := strings.TrimSuffix(plural, "s")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
