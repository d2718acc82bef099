package models

import "time"

type DiscountEvent struct {
	ID              int       `gorm:"primaryKey" json:"id"`
	StoreID         int       `gorm:"not null;index" json:"store_id"`
	Store           Store     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Description     string    `json:"description"`
	Category        string    `gorm:"size:50;index" json:"category"`
	DiscountType    string    `gorm:"size:20;not null;default:percent" json:"discount_type"`
	DiscountRate    float64   `gorm:"not null;default:0" json:"discount_rate"`
	DiscountAmount  int       `gorm:"not null;default:0" json:"discount_amount"`
	OriginalPrice   int       `gorm:"not null;default:0" json:"original_price"`
	DiscountedPrice int       `gorm:"not null;default:0" json:"discounted_price"`
	StartDate       string    `gorm:"size:10;not null" json:"start_date"`
	EndDate         *string   `gorm:"size:10" json:"end_date"`
	StartTime       string    `gorm:"size:5;not null" json:"start_time"`
	EndTime         string    `gorm:"size:5;not null" json:"end_time"`
	DaysOfWeek      string    `gorm:"size:60;not null" json:"days_of_week"`
	ImageURL        string    `json:"image_url"`
	Terms           string    `json:"terms"`
	MaxRedemptions  *int      `json:"max_redemptions"`
	IsActive        bool      `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DiscountEventRequest carries the pass-through fields. Optional fields are
// pointers so a missing value can fall back to its default.
type DiscountEventRequest struct {
	StoreID         int      `json:"store_id" binding:"required,gt=0"`
	Title           string   `json:"title" binding:"required,max=200"`
	Description     *string  `json:"description"`
	Category        *string  `json:"category"`
	DiscountType    *string  `json:"discount_type" binding:"omitempty,oneof=percent amount bogo"`
	DiscountRate    *float64 `json:"discount_rate" binding:"omitempty,gte=0,lte=100"`
	DiscountAmount  *int     `json:"discount_amount" binding:"omitempty,gte=0"`
	OriginalPrice   *int     `json:"original_price" binding:"omitempty,gte=0"`
	DiscountedPrice *int     `json:"discounted_price" binding:"omitempty,gte=0"`
	StartDate       string   `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate         *string  `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime       *string  `json:"start_time" binding:"omitempty,datetime=15:04"`
	EndTime         *string  `json:"end_time" binding:"omitempty,datetime=15:04"`
	DaysOfWeek      *string  `json:"days_of_week"`
	ImageURL        *string  `json:"image_url"`
	Terms           *string  `json:"terms"`
	MaxRedemptions  *int     `json:"max_redemptions" binding:"omitempty,gt=0"`
	IsActive        *bool    `json:"is_active"`
}

// Apply copies the request onto e, substituting defaults for missing
// optional fields. It is a full replace: fields absent from the request
// are reset to their defaults.
func (r DiscountEventRequest) Apply(e *DiscountEvent) {
	e.StoreID = r.StoreID
	e.Title = r.Title
	e.Description = valueOr(r.Description, "")
	e.Category = valueOr(r.Category, "")
	e.DiscountType = valueOr(r.DiscountType, "percent")
	e.DiscountRate = valueOr(r.DiscountRate, 0)
	e.DiscountAmount = valueOr(r.DiscountAmount, 0)
	e.OriginalPrice = valueOr(r.OriginalPrice, 0)
	e.DiscountedPrice = valueOr(r.DiscountedPrice, 0)
	e.StartDate = r.StartDate
	e.EndDate = r.EndDate
	e.StartTime = valueOr(r.StartTime, "00:00")
	e.EndTime = valueOr(r.EndTime, "23:59")
	e.DaysOfWeek = valueOr(r.DaysOfWeek, "mon,tue,wed,thu,fri,sat,sun")
	e.ImageURL = valueOr(r.ImageURL, "")
	e.Terms = valueOr(r.Terms, "")
	e.MaxRedemptions = r.MaxRedemptions
	e.IsActive = valueOr(r.IsActive, true)
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
