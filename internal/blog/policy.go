package blog

import (
	"github.com/google/uuid"
)

// Caller is the identity behind a request. A nil *Caller is an anonymous
// visitor.
type Caller struct {
	ID       uuid.UUID
	Username string
	IsStaff  bool
}

// Owned is implemented by entities that belong to a single user.
type Owned interface {
	OwnerID() uuid.UUID
}

// CanModify is the single ownership predicate applied to every mutating
// operation on posts: only the author may change or delete them. Staff
// privileges are granted through the admin interface, not here.
func CanModify(caller *Caller, entity Owned) bool {
	if caller == nil || entity == nil || caller.ID == uuid.Nil {
		return false
	}
	return caller.ID == entity.OwnerID()
}
