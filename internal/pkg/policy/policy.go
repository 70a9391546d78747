// Package policy holds the authorization decisions shared by the image store
// and the admin surface. It is pure: callers resolve users before asking.
package policy

import "github.com/ManuelReschke/PixelBoard/app/models"

// Caller is the resolved identity of the requesting user.
type Caller struct {
	ID   uint
	Role string
}

// IsAdmin reports whether role grants administrative access.
func IsAdmin(role string) bool {
	return role == models.ROLE_ADMIN
}

// CanModify allows admins, and the owner when the owner reference resolves.
// A nil ownerID stands for a dangling or missing owner and denies non-admins.
func CanModify(caller Caller, ownerID *uint) bool {
	if IsAdmin(caller.Role) {
		return true
	}
	return ownerID != nil && caller.ID != 0 && *ownerID == caller.ID
}

// Decision is the outcome of a guard. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// AdminGate is applied before any admin operation.
func AdminGate(caller Caller) Decision {
	if caller.ID == 0 {
		return deny("authentication required")
	}
	if !IsAdmin(caller.Role) {
		return deny("admin role required")
	}
	return allow()
}

// ModifyGate is CanModify expressed as a Decision for logging and responses.
func ModifyGate(caller Caller, ownerID *uint) Decision {
	if CanModify(caller, ownerID) {
		return allow()
	}
	if ownerID == nil {
		return deny("image owner could not be resolved")
	}
	return deny("only the owner or an admin may modify this image")
}
