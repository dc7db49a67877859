package crud

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/apperror"
)

// Kind is the payload type a field accepts.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindStrings
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "a string"
	case KindInt:
		return "an integer"
	case KindBool:
		return "a boolean"
	case KindStrings:
		return "a list of strings"
	case KindRef:
		return "an id"
	default:
		return "unknown"
	}
}

// Reference names the table a reference field points into.
type Reference struct {
	Name  string // used in messages, e.g. "recipe"
	Model any    // pointer to a gorm model, e.g. &models.Recipe{}
}

// Field describes one writable payload key of an entity and how to store it.
type Field[T any] struct {
	Key         string
	Kind        Kind
	Immutable   bool
	NonNegative bool
	Ref         *Reference
	set         func(*T, any)
}

// CreateOnly marks the field as settable on create and ignored on update.
func (f Field[T]) CreateOnly() Field[T] {
	f.Immutable = true
	return f
}

func String[T any](key string, set func(*T, string)) Field[T] {
	return Field[T]{Key: key, Kind: KindString, set: func(t *T, v any) { set(t, v.(string)) }}
}

func Int[T any](key string, set func(*T, int)) Field[T] {
	return Field[T]{Key: key, Kind: KindInt, set: func(t *T, v any) { set(t, v.(int)) }}
}

func Bool[T any](key string, set func(*T, bool)) Field[T] {
	return Field[T]{Key: key, Kind: KindBool, set: func(t *T, v any) { set(t, v.(bool)) }}
}

func Strings[T any](key string, set func(*T, []string)) Field[T] {
	return Field[T]{Key: key, Kind: KindStrings, set: func(t *T, v any) { set(t, v.([]string)) }}
}

// Unsigned rejects negative values of an integer field.
func (f Field[T]) Unsigned() Field[T] {
	f.NonNegative = true
	return f
}

// Ref declares a field holding the id of a row in another table. The id must
// exist when the payload is applied.
func Ref[T any](key string, target Reference, set func(*T, uuid.UUID)) Field[T] {
	return Field[T]{Key: key, Kind: KindRef, Ref: &target, set: func(t *T, v any) { set(t, v.(uuid.UUID)) }}
}

// decode converts a JSON-decoded value into the Go type the setter expects.
func (f Field[T]) decode(raw any) (any, error) {
	bad := apperror.BadRequest(fmt.Sprintf("field '%s' must be %s", f.Key, f.Kind))

	switch f.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, bad
		}
		return s, nil
	case KindInt:
		n, ok := raw.(float64)
		if !ok || n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return nil, bad
		}
		if f.NonNegative && n < 0 {
			return nil, apperror.BadRequest(fmt.Sprintf("field '%s' must not be negative", f.Key))
		}
		return int(n), nil
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, bad
		}
		return b, nil
	case KindStrings:
		items, ok := raw.([]any)
		if !ok {
			return nil, bad
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, bad
			}
			out = append(out, s)
		}
		return out, nil
	case KindRef:
		s, ok := raw.(string)
		if !ok {
			return nil, bad
		}
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, apperror.BadRequest(fmt.Sprintf("invalid %s id '%s'", f.Ref.Name, s))
		}
		return id, nil
	default:
		return nil, bad
	}
}

// resolve confirms a reference id points at an existing row.
func (f Field[T]) resolve(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := db.WithContext(ctx).Model(f.Ref.Model).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperror.Internal(fmt.Errorf("resolving %s reference: %w", f.Ref.Name, err))
	}
	if count == 0 {
		return apperror.BadRequest(fmt.Sprintf("%s reference %s not found", f.Ref.Name, id))
	}
	return nil
}

// isBlank reports whether a payload value counts as missing for required checks.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	default:
		return false
	}
}
