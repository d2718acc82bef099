// Package voting applies up/down vote intents to posts. The vote ledger
// (post_votes) and the posts' aggregate counters change together in one
// transaction that holds the post row lock, so concurrent intents on the same
// post are serialized and the counters always equal the ledger tallies.
package voting

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

type Intent int

const (
	Up   Intent = models.DirectionUp
	Down Intent = models.DirectionDown
)

func (i Intent) String() string {
	if i == Up {
		return "upvote"
	}
	return "downvote"
}

// Outcome is written to the client as-is. Only the counters touched by the
// transition are set.
type Outcome struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Upvotes   *int   `json:"upvotes,omitempty"`
	Downvotes *int   `json:"downvotes,omitempty"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Apply records intent by userID on postID.
func (s *Service) Apply(ctx context.Context, userID, postID int, intent Intent) (*Outcome, error) {
	if intent != Up && intent != Down {
		return nil, apperror.Validation("unknown vote direction")
	}

	var out *Outcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "upvotes", "downvotes").
			First(&post, postID).Error; err != nil {
			return apperror.FromDB(err, "post")
		}

		var vote models.PostVote
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).Take(&vote).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote = models.PostVote{UserID: userID, PostID: postID, Direction: int(intent)}
			if err := tx.Create(&vote).Error; err != nil {
				return apperror.FromDB(err, "vote")
			}
			out, err = s.bump(tx, &post, intent, 1)
			return err
		case err != nil:
			return apperror.FromDB(err, "vote")
		}

		if Intent(vote.Direction) == intent {
			out = &Outcome{Message: "already " + intent.String() + "d"}
			return nil
		}

		if err := tx.Model(&models.PostVote{}).
			Where("user_id = ? AND post_id = ?", userID, postID).
			Update("direction", int(intent)).Error; err != nil {
			return apperror.FromDB(err, "vote")
		}
		out, err = s.bump(tx, &post, intent, 2)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// bump applies the counter change for a fresh vote (touched == 1) or a
// reversal (touched == 2) and reports the resulting counters.
func (s *Service) bump(tx *gorm.DB, post *models.Post, intent Intent, touched int) (*Outcome, error) {
	updates := map[string]any{}
	out := &Outcome{Success: true}

	up, down := post.Upvotes, post.Downvotes
	if intent == Up {
		up++
		updates["upvotes"] = gorm.Expr("upvotes + 1")
		out.Upvotes = &up
		if touched == 2 {
			down--
			updates["downvotes"] = gorm.Expr("downvotes - 1")
			out.Downvotes = &down
		}
	} else {
		down++
		updates["downvotes"] = gorm.Expr("downvotes + 1")
		out.Downvotes = &down
		if touched == 2 {
			up--
			updates["upvotes"] = gorm.Expr("upvotes - 1")
			out.Upvotes = &up
		}
	}

	if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumns(updates).Error; err != nil {
		return nil, apperror.FromDB(err, "post")
	}
	return out, nil
}
