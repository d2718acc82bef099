package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/auth"
	"github.com/emilythestrangee/tastemap/backend/internal/middleware"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

type AuthHandler struct {
	db       *gorm.DB
	tokens   *auth.Tokens
	sessions auth.Sessions
}

func NewAuthHandler(db *gorm.DB, tokens *auth.Tokens, sessions auth.Sessions) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, sessions: sessions}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := checkReservedNames(input.Username, input.Email); err != nil {
		apperror.Respond(c, err)
		return
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
		Nickname:     input.Nickname,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		err = apperror.FromDB(err, "user")
		if apperror.KindOf(err) == apperror.KindConflict {
			err = apperror.Conflict("username or email already exists")
		}
		apperror.Respond(c, err)
		return
	}

	resp, err := h.issue(c, user)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login accepts the username or the email address.
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	login := strings.TrimSpace(input.Login)
	var user models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		apperror.Respond(c, apperror.FromDB(err, "user"))
		return
	}

	// Soft-deleted accounts have no password hash, so they fail here too.
	if err != nil || user.Role == models.RoleDeleted || !auth.CheckPassword(user.PasswordHash, input.Password) {
		apperror.Respond(c, apperror.Unauthenticated("invalid credentials"))
		return
	}

	resp, err := h.issue(c, user)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout revokes the token used for this request.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	if err := h.sessions.Remove(c.Request.Context(), claims.UserID, claims.ID); err != nil {
		apperror.Respond(c, apperror.Storage("failed to revoke token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetMe returns the authenticated user, email included.
func (h *AuthHandler) GetMe(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	user, err := findByID[models.User](c.Request.Context(), h.db, claims.UserID, "user")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) issue(c *gin.Context, user models.User) (*models.AuthResponse, error) {
	token, claims, err := h.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	if err := h.sessions.Add(c.Request.Context(), user.ID, claims.ID, h.tokens.TTL()); err != nil {
		return nil, apperror.Storage("failed to start session", err)
	}
	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}
