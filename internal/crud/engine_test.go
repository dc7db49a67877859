package crud

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/models"
)

type widget struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey"`
	CreatedAt time.Time
	UserID    uuid.UUID `gorm:"type:varchar(36);not null"`
	Name      string
	Size      int
	Tags      models.StringArray `gorm:"type:text"`
	Public    bool
	Serial    string
}

func (w *widget) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (w *widget) GetID() uuid.UUID   { return w.ID }
func (w *widget) OwnerID() uuid.UUID { return w.UserID }
func (w *widget) Label() string      { return w.Name }

type widgetView struct {
	ID      uuid.UUID
	Owner   uuid.UUID
	Name    string
	Size    int
	Tags    []string
	Public  bool
	Serial  string
	IsOwner *bool
}

func (w *widget) Present(isOwner *bool) any {
	return widgetView{ID: w.ID, Owner: w.UserID, Name: w.Name, Size: w.Size, Tags: w.Tags, Public: w.Public, Serial: w.Serial, IsOwner: isOwner}
}

type part struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey"`
	CreatedAt time.Time
	UserID    uuid.UUID `gorm:"type:varchar(36);not null"`
	WidgetID  uuid.UUID `gorm:"type:varchar(36);not null"`
}

func (p *part) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *part) GetID() uuid.UUID          { return p.ID }
func (p *part) OwnerID() uuid.UUID        { return p.UserID }
func (p *part) Present(isOwner *bool) any { return map[string]any{"id": p.ID, "widget": p.WidgetID} }

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&widget{}, &part{}))
	return db
}

func widgetDescriptor() Descriptor[widget] {
	return Descriptor[widget]{
		Plural:    "widgets",
		Required:  []string{"name", "size"},
		UserOwned: true,
		SetOwner:  func(w *widget, id uuid.UUID) { w.UserID = id },
		Fields: []Field[widget]{
			String("name", func(w *widget, v string) { w.Name = v }),
			Int("size", func(w *widget, v int) { w.Size = v }).Unsigned(),
			Strings("tags", func(w *widget, v []string) { w.Tags = models.UniqueStrings(v) }),
			Bool("public", func(w *widget, v bool) { w.Public = v }),
			String("serial", func(w *widget, v string) { w.Serial = v }).CreateOnly(),
		},
	}
}

func newWidgetEngine(t *testing.T) (*Engine[widget, *widget], *gorm.DB) {
	db := openDB(t)
	return New[widget](db, widgetDescriptor()), db
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func idOf(t *testing.T, v any) string {
	t.Helper()
	view, ok := v.(widgetView)
	require.True(t, ok)
	return view.ID.String()
}

func TestCreateRequiresIdentity(t *testing.T) {
	engine, _ := newWidgetEngine(t)

	_, err := engine.Create(context.Background(), nil, map[string]any{"name": "gizmo", "size": float64(3)})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestCreateListsAllMissingFields(t *testing.T) {
	engine, _ := newWidgetEngine(t)

	_, err := engine.Create(context.Background(), ptr(uuid.New()), map[string]any{"name": "  "})
	require.ErrorIs(t, err, apperror.ErrBadRequest)

	msg, details := apperror.Public(err)
	assert.Equal(t, "Missing required fields for widgets", msg)
	assert.Equal(t, map[string]any{"missing_fields": []string{"name", "size"}}, details)
}

func TestCreateInjectsOwnerAndRoundTrips(t *testing.T) {
	engine, _ := newWidgetEngine(t)
	ctx := context.Background()
	actor := uuid.New()

	created, err := engine.Create(ctx, ptr(actor), map[string]any{
		"name":   "gizmo",
		"size":   float64(3),
		"tags":   []any{"red", "red", "small"},
		"user":   uuid.New().String(),
		"bogus":  "ignored",
		"public": true,
	})
	require.NoError(t, err)

	view := created.(widgetView)
	assert.Equal(t, actor, view.Owner)
	assert.Equal(t, []string{"red", "small"}, view.Tags)
	require.NotNil(t, view.IsOwner)
	assert.True(t, *view.IsOwner)

	fetched, err := engine.GetOne(ctx, ptr(actor), view.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestCreateRejectsWrongTypes(t *testing.T) {
	engine, db := newWidgetEngine(t)
	actor := ptr(uuid.New())

	_, err := engine.Create(context.Background(), actor, map[string]any{"name": "gizmo", "size": "big"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = engine.Create(context.Background(), actor, map[string]any{"name": "gizmo", "size": 2.5})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = engine.Create(context.Background(), actor, map[string]any{"name": "gizmo", "size": float64(1), "tags": []any{"ok", 7}})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	for _, size := range []float64{1e30, -1e30, math.MaxInt32 + 1, math.Inf(1), -1} {
		_, err = engine.Create(context.Background(), actor, map[string]any{"name": "gizmo", "size": size})
		assert.ErrorIs(t, err, apperror.ErrBadRequest, "size %v", size)
	}

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Zero(t, count)

	created, err := engine.Create(context.Background(), actor, map[string]any{"name": "gizmo", "size": float64(math.MaxInt32)})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, created.(widgetView).Size)
}

func TestGetOneNotFound(t *testing.T) {
	engine, _ := newWidgetEngine(t)

	_, err := engine.GetOne(context.Background(), nil, uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	msg, _ := apperror.Public(err)
	assert.Equal(t, "Widget not found", msg)

	_, err = engine.GetOne(context.Background(), nil, "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAnonymousReadsAreNotAnnotated(t *testing.T) {
	engine, _ := newWidgetEngine(t)
	ctx := context.Background()
	_, err := engine.Create(ctx, ptr(uuid.New()), map[string]any{"name": "gizmo", "size": float64(1)})
	require.NoError(t, err)

	items, err := engine.ListAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].(widgetView).IsOwner)

	other := uuid.New()
	items, err = engine.ListAll(ctx, &other)
	require.NoError(t, err)
	assert.False(t, *items[0].(widgetView).IsOwner)
}

func TestListMine(t *testing.T) {
	engine, _ := newWidgetEngine(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	for _, owner := range []uuid.UUID{alice, alice, bob} {
		_, err := engine.Create(ctx, ptr(owner), map[string]any{"name": "w", "size": float64(1)})
		require.NoError(t, err)
	}

	mine, err := engine.ListMine(ctx, &alice)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = engine.ListMine(ctx, nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestUpdate(t *testing.T) {
	engine, _ := newWidgetEngine(t)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	created, err := engine.Create(ctx, ptr(owner), map[string]any{"name": "gizmo", "size": float64(1), "serial": "S-1"})
	require.NoError(t, err)
	id := idOf(t, created)

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, err := engine.Update(ctx, &stranger, id, map[string]any{"name": "stolen"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		msg, _ := apperror.Public(err)
		assert.Equal(t, "You do not have permission to update this Widget", msg)
	})

	t.Run("ownership cannot change", func(t *testing.T) {
		for _, key := range []string{"user", "user_id"} {
			_, err := engine.Update(ctx, &owner, id, map[string]any{key: stranger.String()})
			assert.ErrorIs(t, err, apperror.ErrBadRequest)
		}
		got, err := engine.GetOne(ctx, &owner, id)
		require.NoError(t, err)
		assert.Equal(t, owner, got.(widgetView).Owner)
	})

	t.Run("owner updates mutable fields only", func(t *testing.T) {
		updated, err := engine.Update(ctx, &owner, id, map[string]any{"name": "gadget", "serial": "S-2", "unknown": 1})
		require.NoError(t, err)
		view := updated.(widgetView)
		assert.Equal(t, "gadget", view.Name)
		assert.Equal(t, "S-1", view.Serial)
		assert.Equal(t, 1, view.Size)
	})

	t.Run("missing entity", func(t *testing.T) {
		_, err := engine.Update(ctx, &owner, uuid.NewString(), map[string]any{"name": "x"})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	db := openDB(t)
	desc := widgetDescriptor()
	var hooked []uuid.UUID
	desc.BeforeDelete = func(ctx context.Context, db *gorm.DB, w *widget) error {
		hooked = append(hooked, w.ID)
		return nil
	}
	engine := New[widget](db, desc)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	created, err := engine.Create(ctx, ptr(owner), map[string]any{"name": "gizmo", "size": float64(1)})
	require.NoError(t, err)
	id := idOf(t, created)

	_, err = engine.Delete(ctx, &stranger, id)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Empty(t, hooked)

	msg, err := engine.Delete(ctx, &owner, id)
	require.NoError(t, err)
	assert.Equal(t, "Widget 'gizmo' deleted successfully", msg)
	assert.Len(t, hooked, 1)

	_, err = engine.GetOne(ctx, &owner, id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = engine.Delete(ctx, &owner, id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteFallsBackToIDLabel(t *testing.T) {
	db := openDB(t)
	widgets := New[widget](db, widgetDescriptor())
	parts := New[part](db, Descriptor[part]{
		Plural:    "parts",
		Required:  []string{"widget"},
		UserOwned: true,
		SetOwner:  func(p *part, id uuid.UUID) { p.UserID = id },
		Fields: []Field[part]{
			Ref("widget", Reference{Name: "widget", Model: &widget{}}, func(p *part, id uuid.UUID) { p.WidgetID = id }),
		},
	})
	ctx := context.Background()
	owner := uuid.New()

	w, err := widgets.Create(ctx, &owner, map[string]any{"name": "gizmo", "size": float64(1)})
	require.NoError(t, err)

	created, err := parts.Create(ctx, &owner, map[string]any{"widget": idOf(t, w)})
	require.NoError(t, err)
	id := created.(map[string]any)["id"].(uuid.UUID).String()

	msg, err := parts.Delete(ctx, &owner, id)
	require.NoError(t, err)
	assert.Equal(t, "Part '"+id+"' deleted successfully", msg)
}

func TestReferenceResolution(t *testing.T) {
	db := openDB(t)
	var afterCreate []uuid.UUID
	parts := New[part](db, Descriptor[part]{
		Plural:    "parts",
		Required:  []string{"widget"},
		UserOwned: true,
		SetOwner:  func(p *part, id uuid.UUID) { p.UserID = id },
		Fields: []Field[part]{
			Ref("widget", Reference{Name: "widget", Model: &widget{}}, func(p *part, id uuid.UUID) { p.WidgetID = id }),
		},
		AfterCreate: func(ctx context.Context, db *gorm.DB, p *part, actor uuid.UUID) error {
			afterCreate = append(afterCreate, actor)
			return nil
		},
	})
	ctx := context.Background()
	actor := uuid.New()

	_, err := parts.Create(ctx, &actor, map[string]any{"widget": uuid.NewString()})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = parts.Create(ctx, &actor, map[string]any{"widget": "nope"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Empty(t, afterCreate)

	w := widget{UserID: actor, Name: "gizmo"}
	require.NoError(t, db.Create(&w).Error)

	_, err = parts.Create(ctx, &actor, map[string]any{"widget": w.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{actor}, afterCreate)
}

func TestSingularize(t *testing.T) {
	assert.Equal(t, "Recipe", singularize("recipes"))
	assert.Equal(t, "Notification", singularize("notifications"))
}
