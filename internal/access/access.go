// Package access holds the authorization predicates.
//
// The predicates are pure: they look only at the caller's directory record
// and the target record. Services evaluate them inside the same transaction
// as the write they guard, so a failed check aborts before anything changes.
// A nil user (unauthenticated or not yet synced) is denied everything.
package access

import "github.com/sakif/shelf/internal/model"

// CanMutateAny reports whether the caller may attempt a mutation at all.
// It only needs a verified identity, not a directory record.
func CanMutateAny(authenticated bool) bool {
	return authenticated
}

// CanDelete allows the owner of rec, or any admin.
func CanDelete(user *model.User, rec *model.Recommendation) bool {
	if user == nil || rec == nil {
		return false
	}
	return rec.OwnerID == user.ID || user.Role == model.RoleAdmin
}

// CanToggleFeatured is admin-only. Owning the record does not help.
func CanToggleFeatured(user *model.User) bool {
	return user.IsAdmin()
}
