package models

import "time"

type Post struct {
	ID            int         `gorm:"primaryKey" json:"id"`
	SubcategoryID int         `gorm:"not null;index" json:"subcategory_id"`
	Subcategory   Subcategory `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID      int         `gorm:"not null;index" json:"author_id"`
	Author        User        `gorm:"foreignKey:AuthorID" json:"author"`
	Title         string      `gorm:"size:300;not null" json:"title"`
	Content       string      `gorm:"type:text" json:"content"`
	Upvotes       int         `gorm:"not null;default:0;check:chk_posts_upvotes,upvotes >= 0" json:"upvotes"`
	Downvotes     int         `gorm:"not null;default:0;check:chk_posts_downvotes,downvotes >= 0" json:"downvotes"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type PostRequest struct {
	SubcategoryID int    `json:"subcategory_id" binding:"required,gt=0"`
	Title         string `json:"title" binding:"required,max=300"`
	Content       string `json:"content"`
}

type Subcategory struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string    `json:"description"`
	CreatedBy   int       `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SubcategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}
