// Package authz decides whether an authenticated actor may perform a
// role-gated action. Every rule lives in one table; anything not listed is
// denied.
package authz

import (
	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

type Action string

const (
	ChangeRole        Action = "change_role"
	UpdateUser        Action = "update_user"
	DeleteUser        Action = "delete_user"
	EditPost          Action = "edit_post"
	DeletePost        Action = "delete_post"
	EditComment       Action = "edit_comment"
	DeleteComment     Action = "delete_comment"
	EditSubcategory   Action = "edit_subcategory"
	DeleteSubcategory Action = "delete_subcategory"
)

// Actor is the identity resolved from the bearer token.
type Actor struct {
	UserID int
	Role   models.Role
}

func (a Actor) staff() bool {
	return a.Role == models.RoleModerator || a.Role == models.RoleAdmin
}

// Target describes the resource acted upon. OwnerID is the author of a post,
// comment or subcategory, or the user's own id for user targets. Role is the
// current role of a user target and NewRole the role being requested.
type Target struct {
	OwnerID int
	Role    models.Role
	NewRole models.Role
}

type rule struct {
	allow  func(Actor, Target) bool
	denied string
}

func ownerOrStaff(a Actor, t Target) bool {
	return a.UserID == t.OwnerID || a.staff()
}

var rules = map[Action]rule{
	ChangeRole: {
		allow: func(a Actor, t Target) bool {
			if !t.NewRole.Assignable() {
				return false
			}
			switch a.Role {
			case models.RoleAdmin:
				return true
			case models.RoleModerator:
				return t.NewRole == models.RoleModerator && t.Role != models.RoleAdmin
			}
			return false
		},
		denied: "you are not allowed to change this user's role",
	},
	UpdateUser: {
		allow: func(a Actor, t Target) bool {
			return a.UserID == t.OwnerID || a.Role == models.RoleAdmin
		},
		denied: "you can only update your own account",
	},
	DeleteUser: {
		allow: func(a Actor, t Target) bool {
			switch a.Role {
			case models.RoleAdmin:
				return true
			case models.RoleModerator:
				return t.Role != models.RoleAdmin
			}
			return false
		},
		denied: "you are not allowed to delete this user",
	},
	EditPost:   {allow: ownerOrStaff, denied: "you can only edit your own posts"},
	DeletePost: {allow: ownerOrStaff, denied: "you can only delete your own posts"},
	EditComment: {
		allow: func(a Actor, t Target) bool {
			return a.UserID == t.OwnerID
		},
		denied: "you can only edit your own comments",
	},
	DeleteComment:     {allow: ownerOrStaff, denied: "you can only delete your own comments"},
	EditSubcategory:   {allow: ownerOrStaff, denied: "you can only edit your own subcategories"},
	DeleteSubcategory: {allow: ownerOrStaff, denied: "you can only delete your own subcategories"},
}

// Allowed reports whether actor may perform action on target.
func Allowed(actor Actor, action Action, target Target) bool {
	if actor.UserID == 0 || actor.Role == models.RoleDeleted {
		return false
	}
	r, ok := rules[action]
	return ok && r.allow(actor, target)
}

// Check is Allowed as an error: nil, or a Forbidden apperror.
func Check(actor Actor, action Action, target Target) error {
	if Allowed(actor, action, target) {
		return nil
	}
	msg := "forbidden"
	if r, ok := rules[action]; ok {
		msg = r.denied
	}
	return apperror.Forbidden(msg)
}

// Overrides reports whether the actor acted on someone else's resource,
// i.e. the permission came from a moderation role rather than ownership.
func Overrides(actor Actor, target Target) bool {
	return actor.UserID != target.OwnerID
}
