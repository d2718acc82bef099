package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

var (
	admin     = Actor{UserID: 1, Role: models.RoleAdmin}
	moderator = Actor{UserID: 2, Role: models.RoleModerator}
	author    = Actor{UserID: 3, Role: models.RoleUser}
	stranger  = Actor{UserID: 4, Role: models.RoleUser}
	deleted   = Actor{UserID: 5, Role: models.RoleDeleted}
)

func TestChangeRole(t *testing.T) {
	tests := []struct {
		name   string
		actor  Actor
		target Target
		want   bool
	}{
		{"admin promotes to admin", admin, Target{OwnerID: 3, Role: models.RoleUser, NewRole: models.RoleAdmin}, true},
		{"admin demotes admin", admin, Target{OwnerID: 9, Role: models.RoleAdmin, NewRole: models.RoleUser}, true},
		{"admin demotes moderator", admin, Target{OwnerID: 2, Role: models.RoleModerator, NewRole: models.RoleUser}, true},
		{"moderator promotes user to moderator", moderator, Target{OwnerID: 3, Role: models.RoleUser, NewRole: models.RoleModerator}, true},
		{"moderator sets admin", moderator, Target{OwnerID: 3, Role: models.RoleUser, NewRole: models.RoleAdmin}, false},
		{"moderator demotes user", moderator, Target{OwnerID: 3, Role: models.RoleModerator, NewRole: models.RoleUser}, false},
		{"moderator touches admin", moderator, Target{OwnerID: 1, Role: models.RoleAdmin, NewRole: models.RoleModerator}, false},
		{"user promotes self", author, Target{OwnerID: 3, Role: models.RoleUser, NewRole: models.RoleModerator}, false},
		{"admin sets deleted", admin, Target{OwnerID: 3, Role: models.RoleUser, NewRole: models.RoleDeleted}, false},
		{"admin sets unknown role", admin, Target{OwnerID: 3, Role: models.RoleUser, NewRole: "root"}, false},
		{"deleted admin-looking actor", deleted, Target{OwnerID: 3, Role: models.RoleUser, NewRole: models.RoleUser}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.actor, ChangeRole, tt.target))
		})
	}
}

func TestContentRules(t *testing.T) {
	own := Target{OwnerID: author.UserID}
	tests := []struct {
		action Action
		actor  Actor
		want   bool
	}{
		{EditPost, author, true},
		{EditPost, stranger, false},
		{EditPost, moderator, true},
		{EditPost, admin, true},
		{DeletePost, author, true},
		{DeletePost, stranger, false},
		{DeletePost, moderator, true},
		{DeleteComment, author, true},
		{DeleteComment, stranger, false},
		{DeleteComment, admin, true},
		{EditComment, author, true},
		{EditComment, moderator, false},
		{EditComment, admin, false},
		{EditSubcategory, author, true},
		{EditSubcategory, stranger, false},
		{DeleteSubcategory, moderator, true},
		{DeleteSubcategory, stranger, false},
		{DeletePost, deleted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.actor.Role), func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.actor, tt.action, own))
		})
	}
}

func TestDeleteUser(t *testing.T) {
	assert.True(t, Allowed(admin, DeleteUser, Target{OwnerID: 9, Role: models.RoleAdmin}))
	assert.True(t, Allowed(moderator, DeleteUser, Target{OwnerID: 3, Role: models.RoleUser}))
	assert.True(t, Allowed(moderator, DeleteUser, Target{OwnerID: 7, Role: models.RoleModerator}))
	assert.False(t, Allowed(moderator, DeleteUser, Target{OwnerID: 1, Role: models.RoleAdmin}))
	assert.False(t, Allowed(author, DeleteUser, Target{OwnerID: 3, Role: models.RoleUser}))
	assert.False(t, Allowed(author, DeleteUser, Target{OwnerID: 4, Role: models.RoleUser}))
}

func TestUpdateUser(t *testing.T) {
	assert.True(t, Allowed(author, UpdateUser, Target{OwnerID: 3}))
	assert.True(t, Allowed(admin, UpdateUser, Target{OwnerID: 3}))
	assert.False(t, Allowed(moderator, UpdateUser, Target{OwnerID: 3}))
	assert.False(t, Allowed(stranger, UpdateUser, Target{OwnerID: 3}))
}

func TestUnknownActionDenied(t *testing.T) {
	assert.False(t, Allowed(admin, Action("launch_rockets"), Target{}))
	assert.False(t, Allowed(Actor{}, EditPost, Target{}))
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(author, EditComment, Target{OwnerID: 3}))

	err := Check(moderator, EditComment, Target{OwnerID: 3})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	assert.Equal(t, "you can only edit your own comments", err.Error())
}

func TestOverrides(t *testing.T) {
	assert.False(t, Overrides(author, Target{OwnerID: 3}))
	assert.True(t, Overrides(moderator, Target{OwnerID: 3}))
}
