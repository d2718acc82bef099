package models

import "time"

// PostVote is one user's current vote on one post. A missing row means no vote.
type PostVote struct {
	UserID    int       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PostID    int       `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Direction int       `gorm:"not null;check:chk_post_votes_direction,direction IN (-1, 1)" json:"direction"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	DirectionUp   = 1
	DirectionDown = -1
)
