// Package authz decides whether an acting user owns a resource.
package authz

import "github.com/google/uuid"

// Ownable is implemented by resources that record their owner's id directly.
type Ownable interface {
	OwnerID() uuid.UUID
}

// OwnerReferencer is implemented by resources whose owner may be loaded as a
// related record. ok is false when the relation was not loaded.
type OwnerReferencer interface {
	OwnerRef() (id uuid.UUID, ok bool)
}

// IsOwner resolves ownership in order: not required, loaded owner reference,
// scalar owner id. Anything else is denied.
func IsOwner(actor uuid.UUID, ownershipRequired bool, resource any) bool {
	if !ownershipRequired {
		return true
	}
	if actor == uuid.Nil || resource == nil {
		return false
	}
	if ref, ok := resource.(OwnerReferencer); ok {
		if id, loaded := ref.OwnerRef(); loaded {
			return id == actor
		}
	}
	if o, ok := resource.(Ownable); ok {
		return o.OwnerID() == actor
	}
	return false
}
