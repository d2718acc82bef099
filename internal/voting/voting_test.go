package voting

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
	"github.com/emilythestrangee/tastemap/backend/internal/testutil"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutil.Terminate()
	os.Exit(code)
}

type fixture struct {
	db   *gorm.DB
	svc  *Service
	post *models.Post
}

func setup(t *testing.T, voters ...string) (fixture, []*models.User) {
	t.Helper()
	db := testutil.DB(t)
	author := testutil.CreateUser(t, db, "author", models.RoleUser)
	sub := testutil.CreateSubcategory(t, db, "general", author.ID)
	post := testutil.CreatePost(t, db, sub.ID, author.ID, "hello")

	users := make([]*models.User, 0, len(voters))
	for _, name := range voters {
		users = append(users, testutil.CreateUser(t, db, name, models.RoleUser))
	}
	return fixture{db: db, svc: NewService(db), post: post}, users
}

// counters reads the post counters and the ledger tallies.
func counters(t *testing.T, db *gorm.DB, postID int) (up, down, ledgerUp, ledgerDown int) {
	t.Helper()
	var post models.Post
	require.NoError(t, db.First(&post, postID).Error)

	var u, d int64
	require.NoError(t, db.Model(&models.PostVote{}).Where("post_id = ? AND direction = 1", postID).Count(&u).Error)
	require.NoError(t, db.Model(&models.PostVote{}).Where("post_id = ? AND direction = -1", postID).Count(&d).Error)
	return post.Upvotes, post.Downvotes, int(u), int(d)
}

func ptr(n int) *int { return &n }

func TestApplyTransitions(t *testing.T) {
	f, users := setup(t, "voter")
	ctx := context.Background()
	voter := users[0].ID

	steps := []struct {
		name   string
		intent Intent
		want   Outcome
	}{
		{"first upvote", Up, Outcome{Success: true, Upvotes: ptr(1)}},
		{"repeat upvote", Up, Outcome{Message: "already upvoted"}},
		{"reverse to down", Down, Outcome{Success: true, Upvotes: ptr(0), Downvotes: ptr(1)}},
		{"repeat downvote", Down, Outcome{Message: "already downvoted"}},
		{"reverse to up", Up, Outcome{Success: true, Upvotes: ptr(1), Downvotes: ptr(0)}},
	}
	for _, step := range steps {
		got, err := f.svc.Apply(ctx, voter, f.post.ID, step.intent)
		require.NoError(t, err, step.name)
		assert.Equal(t, &step.want, got, step.name)

		up, down, lu, ld := counters(t, f.db, f.post.ID)
		assert.Equal(t, lu, up, step.name)
		assert.Equal(t, ld, down, step.name)
	}
}

func TestApplyFirstDownvote(t *testing.T) {
	f, users := setup(t, "voter")

	got, err := f.svc.Apply(context.Background(), users[0].ID, f.post.ID, Down)
	require.NoError(t, err)
	assert.Equal(t, &Outcome{Success: true, Downvotes: ptr(1)}, got)

	var vote models.PostVote
	require.NoError(t, f.db.Where("user_id = ? AND post_id = ?", users[0].ID, f.post.ID).Take(&vote).Error)
	assert.Equal(t, models.DirectionDown, vote.Direction)
}

func TestApplyRepeatIsIdempotent(t *testing.T) {
	f, users := setup(t, "voter")
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, users[0].ID, f.post.ID, Up)
	require.NoError(t, err)
	for range 3 {
		out, err := f.svc.Apply(ctx, users[0].ID, f.post.ID, Up)
		require.NoError(t, err)
		assert.False(t, out.Success)
	}

	up, down, lu, _ := counters(t, f.db, f.post.ID)
	assert.Equal(t, 1, up)
	assert.Equal(t, 0, down)
	assert.Equal(t, 1, lu)
}

func TestApplyMissingPost(t *testing.T) {
	f, users := setup(t, "voter")

	_, err := f.svc.Apply(context.Background(), users[0].ID, f.post.ID+100, Up)
	require.ErrorIs(t, err, apperror.ErrNotFound)

	var n int64
	require.NoError(t, f.db.Model(&models.PostVote{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestApplyUnknownIntent(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Apply(context.Background(), 1, 1, Intent(0))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestApplyRollsBackOnFailure(t *testing.T) {
	f, _ := setup(t)

	// user 9999 does not exist, so the ledger insert violates its foreign key
	// after the post row is locked.
	_, err := f.svc.Apply(context.Background(), 9999, f.post.ID, Up)
	require.Error(t, err)

	up, down, lu, ld := counters(t, f.db, f.post.ID)
	assert.Zero(t, up+down+lu+ld)
}

func TestApplyConcurrentDistinctUsers(t *testing.T) {
	const n = 20
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("voter%d", i)
	}
	f, users := setup(t, names...)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i, u := range users {
		intent := Up
		if i%4 == 0 {
			intent = Down
		}
		wg.Add(1)
		go func(userID int, intent Intent) {
			defer wg.Done()
			out, err := f.svc.Apply(context.Background(), userID, f.post.ID, intent)
			if err != nil || !out.Success {
				failures.Add(1)
			}
		}(u.ID, intent)
	}
	wg.Wait()

	require.Zero(t, failures.Load())
	up, down, lu, ld := counters(t, f.db, f.post.ID)
	assert.Equal(t, 15, up)
	assert.Equal(t, 5, down)
	assert.Equal(t, lu, up)
	assert.Equal(t, ld, down)
}

func TestApplyConcurrentSameUser(t *testing.T) {
	f, users := setup(t, "voter")
	voter := users[0].ID

	const n = 10
	var wg sync.WaitGroup
	var applied atomic.Int32
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.svc.Apply(context.Background(), voter, f.post.ID, Up)
			if err == nil && out.Success {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), applied.Load())
	up, _, lu, _ := counters(t, f.db, f.post.ID)
	assert.Equal(t, 1, up)
	assert.Equal(t, 1, lu)
}

func TestApplyConcurrentFlips(t *testing.T) {
	f, users := setup(t, "a", "b", "c", "d")
	ctx := context.Background()
	for _, u := range users {
		_, err := f.svc.Apply(ctx, u.ID, f.post.ID, Up)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for round := range 6 {
		for _, u := range users {
			wg.Add(1)
			go func(userID int) {
				defer wg.Done()
				intent := Down
				if round%2 == 1 {
					intent = Up
				}
				_, _ = f.svc.Apply(ctx, userID, f.post.ID, intent)
			}(u.ID)
		}
	}
	wg.Wait()

	up, down, lu, ld := counters(t, f.db, f.post.ID)
	assert.Equal(t, lu, up)
	assert.Equal(t, ld, down)
	assert.Equal(t, len(users), up+down)
}

func TestDeletingPostRemovesLedger(t *testing.T) {
	f, users := setup(t, "voter")
	_, err := f.svc.Apply(context.Background(), users[0].ID, f.post.ID, Up)
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&models.Post{}, f.post.ID).Error)

	var n int64
	require.NoError(t, f.db.Model(&models.PostVote{}).Count(&n).Error)
	assert.Zero(t, n)
}
