package models

import "time"

type Store struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:200;not null;index" json:"name"`
	Address      string    `json:"address"`
	Category     string    `gorm:"size:50;index" json:"category"`
	Phone        string    `gorm:"size:30" json:"phone"`
	OpeningHours string    `json:"opening_hours"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type StoreRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	Address      string `json:"address"`
	Category     string `json:"category"`
	Phone        string `json:"phone"`
	OpeningHours string `json:"opening_hours"`
}
