package models

import "time"

// Restaurant rows also carry a PostGIS location column that gorm does not
// manage; Longitude and Latitude are read from it by the queries that need them.
type Restaurant struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Address     string `gorm:"not null" json:"address"`
	Region1     string `gorm:"size:50" json:"region1"`
	Region2     string `gorm:"size:50" json:"region2"`
	Region3     string `gorm:"size:50" json:"region3"`
	PostalCode  string `gorm:"size:10" json:"postal_code"`
	RoadAddress string `json:"road_address"`

	Vegetarian           bool `gorm:"not null;default:false" json:"vegetarian"`
	Vegan                bool `gorm:"not null;default:false" json:"vegan"`
	Halal                bool `gorm:"not null;default:false" json:"halal"`
	GlutenFree           bool `gorm:"not null;default:false" json:"gluten_free"`
	WheelchairAccessible bool `gorm:"not null;default:false" json:"wheelchair_accessible"`

	Longitude float64 `gorm:"->;-:migration" json:"longitude"`
	Latitude  float64 `gorm:"->;-:migration" json:"latitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RestaurantRequest struct {
	Name                 string `json:"name" binding:"required,max=200"`
	Address              string `json:"address" binding:"required"`
	Vegetarian           bool   `json:"vegetarian"`
	Vegan                bool   `json:"vegan"`
	Halal                bool   `json:"halal"`
	GlutenFree           bool   `json:"gluten_free"`
	WheelchairAccessible bool   `json:"wheelchair_accessible"`
}
