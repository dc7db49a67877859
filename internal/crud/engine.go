package crud

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/authz"
)

// Engine implements list/get/mine/create/update/delete for one entity type.
// A nil actor means the caller is anonymous; ownership is then not evaluated
// and write operations are refused.
type Engine[T any, PT interface {
	*T
	Entity
}] struct {
	db   *gorm.DB
	desc Descriptor[T]
}

func New[T any, PT interface {
	*T
	Entity
}](db *gorm.DB, desc Descriptor[T]) *Engine[T, PT] {
	desc.normalize()
	return &Engine[T, PT]{db: db, desc: desc}
}

func (e *Engine[T, PT]) Plural() string   { return e.desc.Plural }
func (e *Engine[T, PT]) Singular() string { return e.desc.Singular }

func (e *Engine[T, PT]) query(ctx context.Context) *gorm.DB {
	q := e.db.WithContext(ctx)
	for _, p := range e.desc.Preload {
		q = q.Preload(p)
	}
	return q
}

func (e *Engine[T, PT]) notFound() error {
	return apperror.NotFound(fmt.Sprintf("%s not found", e.desc.Singular))
}

func requireActor(actor *uuid.UUID) error {
	if actor == nil {
		return apperror.Unauthorized("Authentication required")
	}
	return nil
}

// View renders entity for actor, annotating is_owner when actor is known.
func (e *Engine[T, PT]) View(actor *uuid.UUID, entity *T) any {
	p := PT(entity)
	if actor == nil {
		return p.Present(nil)
	}
	owns := authz.IsOwner(*actor, e.desc.UserOwned, p)
	return p.Present(&owns)
}

func (e *Engine[T, PT]) views(actor *uuid.UUID, items []T) []any {
	out := make([]any, 0, len(items))
	for i := range items {
		out = append(out, e.View(actor, &items[i]))
	}
	return out
}

// Find loads one entity with its preloads. Malformed ids are reported as not found.
func (e *Engine[T, PT]) Find(ctx context.Context, id string) (*T, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, e.notFound()
	}
	var entity T
	err = e.query(ctx).First(&entity, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, e.notFound()
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("loading %s %s: %w", e.desc.Singular, id, err))
	}
	return &entity, nil
}

// Authorize fails with Forbidden unless actor owns entity.
func (e *Engine[T, PT]) Authorize(actor *uuid.UUID, entity *T, action string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !authz.IsOwner(*actor, e.desc.UserOwned, PT(entity)) {
		return apperror.Forbidden(fmt.Sprintf("You do not have permission to %s this %s", action, e.desc.Singular))
	}
	return nil
}

func (e *Engine[T, PT]) ListAll(ctx context.Context, actor *uuid.UUID) ([]any, error) {
	var items []T
	if err := e.query(ctx).Order(e.desc.Order).Find(&items).Error; err != nil {
		return nil, apperror.Internal(fmt.Errorf("listing %s: %w", e.desc.Plural, err))
	}
	return e.views(actor, items), nil
}

func (e *Engine[T, PT]) GetOne(ctx context.Context, actor *uuid.UUID, id string) (any, error) {
	entity, err := e.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.View(actor, entity), nil
}

// ListMine returns the entities whose owner column matches actor.
func (e *Engine[T, PT]) ListMine(ctx context.Context, actor *uuid.UUID) ([]any, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return e.ListOwnedBy(ctx, actor, *actor)
}

// ListOwnedBy returns the entities owned by owner, rendered for actor.
func (e *Engine[T, PT]) ListOwnedBy(ctx context.Context, actor *uuid.UUID, owner uuid.UUID) ([]any, error) {
	var items []T
	err := e.query(ctx).
		Where(clause.Eq{Column: clause.Column{Name: e.desc.OwnerColumn}, Value: owner}).
		Order(e.desc.Order).
		Find(&items).Error
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("listing %s of %s: %w", e.desc.Plural, owner, err))
	}
	return e.views(actor, items), nil
}

func (e *Engine[T, PT]) Create(ctx context.Context, actor *uuid.UUID, payload map[string]any) (any, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if missing := e.missing(payload); len(missing) > 0 {
		return nil, apperror.BadRequest(fmt.Sprintf("Missing required fields for %s", e.desc.Plural)).
			WithDetails(map[string]any{"missing_fields": missing})
	}

	var entity T
	if err := e.apply(ctx, &entity, payload, false); err != nil {
		return nil, err
	}
	if e.desc.UserOwned && e.desc.SetOwner != nil {
		e.desc.SetOwner(&entity, *actor)
	}

	if err := e.db.WithContext(ctx).Omit(clause.Associations).Create(&entity).Error; err != nil {
		return nil, apperror.Internal(fmt.Errorf("creating %s: %w", e.desc.Singular, err))
	}

	if e.desc.AfterCreate != nil {
		if err := e.desc.AfterCreate(ctx, e.db, &entity, *actor); err != nil {
			return nil, err
		}
	}

	created, err := e.Find(ctx, PT(&entity).GetID().String())
	if err != nil {
		return nil, err
	}
	return e.View(actor, created), nil
}

func (e *Engine[T, PT]) Update(ctx context.Context, actor *uuid.UUID, id string, payload map[string]any) (any, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	entity, err := e.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.Authorize(actor, entity, "update"); err != nil {
		return nil, err
	}
	for _, key := range ownerKeys {
		if _, ok := payload[key]; ok {
			return nil, apperror.BadRequest("Cannot change document ownership")
		}
	}

	if err := e.apply(ctx, entity, payload, true); err != nil {
		return nil, err
	}
	if err := e.db.WithContext(ctx).Omit(clause.Associations).Save(entity).Error; err != nil {
		return nil, apperror.Internal(fmt.Errorf("updating %s %s: %w", e.desc.Singular, id, err))
	}

	updated, err := e.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.View(actor, updated), nil
}

// Delete removes the entity after running the cascade hook and returns the
// confirmation message.
func (e *Engine[T, PT]) Delete(ctx context.Context, actor *uuid.UUID, id string) (string, error) {
	if err := requireActor(actor); err != nil {
		return "", err
	}
	entity, err := e.Find(ctx, id)
	if err != nil {
		return "", err
	}
	if err := e.Authorize(actor, entity, "delete"); err != nil {
		return "", err
	}

	if e.desc.BeforeDelete != nil {
		if err := e.desc.BeforeDelete(ctx, e.db, entity); err != nil {
			return "", err
		}
	}
	if err := e.db.WithContext(ctx).Delete(entity).Error; err != nil {
		return "", apperror.Internal(fmt.Errorf("deleting %s %s: %w", e.desc.Singular, id, err))
	}
	if e.desc.AfterDelete != nil {
		e.desc.AfterDelete(ctx, entity)
	}

	label := PT(entity).GetID().String()
	if l, ok := any(PT(entity)).(Labeled); ok && l.Label() != "" {
		label = l.Label()
	}
	return fmt.Sprintf("%s '%s' deleted successfully", e.desc.Singular, label), nil
}

func (e *Engine[T, PT]) missing(payload map[string]any) []string {
	var missing []string
	for _, key := range e.desc.Required {
		if isBlank(payload[key]) {
			missing = append(missing, key)
		}
	}
	return missing
}

// apply decodes declared fields from payload onto entity. Unknown keys are
// ignored, as are create-only fields during updates.
func (e *Engine[T, PT]) apply(ctx context.Context, entity *T, payload map[string]any, update bool) error {
	for _, f := range e.desc.Fields {
		raw, ok := payload[f.Key]
		if !ok || raw == nil {
			continue
		}
		if update && f.Immutable {
			continue
		}
		v, err := f.decode(raw)
		if err != nil {
			return err
		}
		if f.Kind == KindRef {
			if err := f.resolve(ctx, e.db, v.(uuid.UUID)); err != nil {
				return err
			}
		}
		f.set(entity, v)
	}
	return nil
}
