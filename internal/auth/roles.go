package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

// ErrUnknownUser means the token's subject no longer exists.
var ErrUnknownUser = errors.New("unknown user")

// Roles reports a user's current role. Tokens carry the role at issue time;
// the stored role wins so demotions and deletions apply immediately.
type Roles interface {
	CurrentRole(ctx context.Context, userID int) (models.Role, error)
}

type DBRoles struct {
	db *gorm.DB
}

func NewDBRoles(db *gorm.DB) *DBRoles {
	return &DBRoles{db: db}
}

func (r *DBRoles) CurrentRole(ctx context.Context, userID int) (models.Role, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("id", "role").Take(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", err
	}
	return user.Role, nil
}
