package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/audit"
	"github.com/emilythestrangee/tastemap/backend/internal/auth"
	"github.com/emilythestrangee/tastemap/backend/internal/authz"
	"github.com/emilythestrangee/tastemap/backend/internal/filter"
	"github.com/emilythestrangee/tastemap/backend/internal/middleware"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

// Soft-deleted accounts are renamed into these namespaces, so nobody may
// claim them.
const (
	deletedUsernamePrefix = "deleted_user_"
	deletedEmailDomain    = "@deleted.invalid"
)

func checkReservedNames(username, email string) error {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(username)), deletedUsernamePrefix) {
		return apperror.Validation(fmt.Sprintf("usernames starting with %q are reserved", deletedUsernamePrefix))
	}
	if strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), deletedEmailDomain) {
		return apperror.Validation("email domain is reserved")
	}
	return nil
}

type UserHandler struct {
	db       *gorm.DB
	sessions auth.Sessions
	audit    audit.Publisher
}

func NewUserHandler(db *gorm.DB, sessions auth.Sessions, auditor audit.Publisher) *UserHandler {
	return &UserHandler{db: db, sessions: sessions, audit: auditor}
}

// activeUser loads a user that has not been soft-deleted.
func (h *UserHandler) activeUser(c *gin.Context, id int) (*models.User, error) {
	user, err := findByID[models.User](c.Request.Context(), h.db, id, "user")
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleDeleted {
		return nil, apperror.NotFound("user not found")
	}
	return user, nil
}

// Target loads the user addressed by :id for the authorization gate.
func (h *UserHandler) Target(c *gin.Context) (authz.Target, error) {
	id, err := paramID(c)
	if err != nil {
		return authz.Target{}, err
	}
	user, err := h.activeUser(c, id)
	if err != nil {
		return authz.Target{}, err
	}
	return authz.Target{OwnerID: user.ID, Role: user.Role}, nil
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	f := filter.New().
		Equal("role", c.Query("role")).
		Contains("username", c.Query("username"))

	q, err := listQuery(c, h.db.WithContext(c.Request.Context()), f)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	var users []models.User
	if err := q.Order("id").Find(&users).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "users"))
		return
	}

	public := make([]models.User, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	c.JSON(http.StatusOK, public)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	user, err := findByID[models.User](c.Request.Context(), h.db, id, "user")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// UpdateUser replaces the account fields of a user. Roles change only
// through ChangeRole.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, _ := paramID(c)
	var input models.UpdateUserRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := checkReservedNames(input.Username, input.Email); err != nil {
		apperror.Respond(c, err)
		return
	}

	err := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"username":           strings.TrimSpace(input.Username),
			"email":              strings.ToLower(strings.TrimSpace(input.Email)),
			"nickname":           input.Nickname,
			"bio":                input.Bio,
			"avatar_url":         input.AvatarURL,
			"dietary_preference": input.DietaryPreference,
			"region":             input.Region,
		}).Error
	if err != nil {
		err = apperror.FromDB(err, "user")
		if apperror.KindOf(err) == apperror.KindConflict {
			err = apperror.Conflict("username or email already exists")
		}
		apperror.Respond(c, err)
		return
	}

	user, err := findByID[models.User](c.Request.Context(), h.db, id, "user")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile lets the caller change their own profile fields. Fields
// missing from the body are kept.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var input models.ProfileRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	updates := map[string]any{}
	for column, v := range map[string]*string{
		"nickname":           input.Nickname,
		"bio":                input.Bio,
		"avatar_url":         input.AvatarURL,
		"dietary_preference": input.DietaryPreference,
		"region":             input.Region,
	} {
		if v != nil {
			updates[column] = *v
		}
	}

	userID := middleware.CurrentActor(c).UserID
	if len(updates) > 0 {
		err := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
			Where("id = ?", userID).
			Updates(updates).Error
		if err != nil {
			apperror.Respond(c, apperror.FromDB(err, "user"))
			return
		}
	}

	user, err := findByID[models.User](c.Request.Context(), h.db, userID, "user")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangeRole sets the role given in the body.
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var input models.ChangeRoleRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}
	h.changeRole(c, input.Role)
}

// PromoteToModerator is ChangeRole with the role fixed to moderator.
func (h *UserHandler) PromoteToModerator(c *gin.Context) {
	h.changeRole(c, models.RoleModerator)
}

func (h *UserHandler) changeRole(c *gin.Context, role models.Role) {
	if !role.Assignable() {
		apperror.Respond(c, apperror.Validation(fmt.Sprintf("role %q cannot be assigned", role)))
		return
	}

	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	user, err := h.activeUser(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	actor := middleware.CurrentActor(c)
	target := authz.Target{OwnerID: user.ID, Role: user.Role, NewRole: role}
	if err := authz.Check(actor, authz.ChangeRole, target); err != nil {
		apperror.Respond(c, err)
		return
	}

	previous := user.Role
	if err := h.db.WithContext(c.Request.Context()).Model(user).Update("role", role).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "user"))
		return
	}
	user.Role = role
	h.revokeSessions(c, user.ID)

	audit.Record(c.Request.Context(), h.audit, audit.Event{
		Action:     audit.RoleChanged,
		ActorID:    actor.UserID,
		ActorRole:  string(actor.Role),
		TargetType: "user",
		TargetID:   user.ID,
		Detail:     string(previous) + " -> " + string(role),
	})
	c.JSON(http.StatusOK, user.Public())
}

// DeleteUser soft-deletes the account: personal data is scrubbed, the role
// becomes deleted and every session is revoked. Content stays in place.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, _ := paramID(c)
	user, err := h.activeUser(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	err = h.db.WithContext(c.Request.Context()).Model(user).Updates(map[string]any{
		"username":           fmt.Sprintf("%s%d", deletedUsernamePrefix, user.ID),
		"email":              fmt.Sprintf("deleted_%d%s", user.ID, deletedEmailDomain),
		"password_hash":      "",
		"role":               models.RoleDeleted,
		"nickname":           "",
		"bio":                "",
		"avatar_url":         "",
		"dietary_preference": "",
		"region":             "",
	}).Error
	if err != nil {
		apperror.Respond(c, apperror.FromDB(err, "user"))
		return
	}
	h.revokeSessions(c, user.ID)

	actor := middleware.CurrentActor(c)
	audit.Record(c.Request.Context(), h.audit, audit.Event{
		Action:     audit.UserDeleted,
		ActorID:    actor.UserID,
		ActorRole:  string(actor.Role),
		TargetType: "user",
		TargetID:   user.ID,
	})

	deleted, err := findByID[models.User](c.Request.Context(), h.db, user.ID, "user")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, deleted.Public())
}

// revokeSessions logs out every token of the user. The role change has
// already committed, so a failure is only logged.
func (h *UserHandler) revokeSessions(c *gin.Context, userID int) {
	if err := h.sessions.RevokeAll(c.Request.Context(), userID); err != nil {
		slog.WarnContext(c.Request.Context(), "failed to revoke sessions", "user_id", userID, "error", err)
	}
}
