package auth

import "context"

type contextKey struct{}

// Identity is the decoded token identity attached to each authenticated
// request. UserID is 0 for a family-only identity (no member selected).
type Identity struct {
	UserID   int64
	FamilyID int64
	Role     string
}

// HasUser reports whether a concrete family member is acting.
func (id Identity) HasUser() bool {
	return id.UserID != 0
}

// IsParent reports whether the identity carries the parent role.
func (id Identity) IsParent() bool {
	return id.Role == "parent"
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

func FamilyID(ctx context.Context) int64 {
	id, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return id.FamilyID
}

func UserID(ctx context.Context) int64 {
	id, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return id.UserID
}
