// Package testutil runs integration tests against a throwaway PostGIS
// container and provides small fixture helpers.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/auth"
	"github.com/emilythestrangee/tastemap/backend/internal/database"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

const postgisImage = "postgis/postgis:16-3.4-alpine"

var shared struct {
	once sync.Once
	ctr  *postgres.PostgresContainer
	svc  database.Service
	err  error
}

func start() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, postgisImage,
		postgres.WithDatabase("tastemap"),
		postgres.WithUsername("tastemap"),
		postgres.WithPassword("tastemap"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		shared.err = fmt.Errorf("starting postgis container: %w", err)
		return
	}
	shared.ctr = ctr

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		shared.err = err
		return
	}
	svc, err := database.New(database.Options{DSN: dsn})
	if err != nil {
		shared.err = err
		return
	}
	shared.svc = svc
	shared.err = database.Migrate(ctx, svc.GetDB())
}

// DB returns a migrated, empty database. The container is started once per
// test binary; tables are truncated on every call.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	return Database(t).GetDB()
}

// Database is DB wrapped in the service used by the server.
func Database(t *testing.T) database.Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	shared.once.Do(start)
	require.NoError(t, shared.err)

	require.NoError(t, shared.svc.GetDB().Exec(`TRUNCATE users, subcategories, posts, post_votes, comments,
		restaurants, stores, discount_events RESTART IDENTITY CASCADE`).Error)
	return shared.svc
}

// Terminate stops the shared container. Call it from TestMain after m.Run.
func Terminate() {
	if shared.svc != nil {
		_ = shared.svc.Close()
	}
	if shared.ctr != nil {
		_ = testcontainers.TerminateContainer(shared.ctr)
	}
}

func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateSubcategory(t *testing.T, db *gorm.DB, name string, createdBy int) *models.Subcategory {
	t.Helper()
	sub := &models.Subcategory{Name: name, CreatedBy: createdBy}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func CreatePost(t *testing.T, db *gorm.DB, subcategoryID, authorID int, title string) *models.Post {
	t.Helper()
	post := &models.Post{SubcategoryID: subcategoryID, AuthorID: authorID, Title: title}
	require.NoError(t, db.Omit("Author", "Subcategory").Create(post).Error)
	return post
}

func CreateComment(t *testing.T, db *gorm.DB, postID, authorID int, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: postID, AuthorID: authorID, Content: content}
	require.NoError(t, db.Omit("Author", "Post").Create(comment).Error)
	return comment
}

// Token issues a bearer token for user.
func Token(t *testing.T, tokens *auth.Tokens, user *models.User) string {
	t.Helper()
	tok, _, err := tokens.Issue(*user)
	require.NoError(t, err)
	return tok
}
