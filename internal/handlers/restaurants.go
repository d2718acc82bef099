package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/filter"
	"github.com/emilythestrangee/tastemap/backend/internal/geocode"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

const restaurantColumns = "restaurants.*, " +
	"COALESCE(ST_X(location::geometry), 0) AS longitude, " +
	"COALESCE(ST_Y(location::geometry), 0) AS latitude"

const upsertRestaurant = `
INSERT INTO restaurants (name, address, region1, region2, region3, postal_code, road_address,
	vegetarian, vegan, halal, gluten_free, wheelchair_accessible, location, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography, now(), now())
ON CONFLICT (name) DO UPDATE SET
	address = EXCLUDED.address,
	region1 = EXCLUDED.region1,
	region2 = EXCLUDED.region2,
	region3 = EXCLUDED.region3,
	postal_code = EXCLUDED.postal_code,
	road_address = EXCLUDED.road_address,
	vegetarian = EXCLUDED.vegetarian,
	vegan = EXCLUDED.vegan,
	halal = EXCLUDED.halal,
	gluten_free = EXCLUDED.gluten_free,
	wheelchair_accessible = EXCLUDED.wheelchair_accessible,
	location = EXCLUDED.location,
	updated_at = now()
RETURNING id`

type RestaurantHandler struct {
	db       *gorm.DB
	geocoder Geocoder
}

func NewRestaurantHandler(db *gorm.DB, geocoder Geocoder) *RestaurantHandler {
	return &RestaurantHandler{db: db, geocoder: geocoder}
}

func (h *RestaurantHandler) lookup(c *gin.Context, address string) (*geocode.Result, error) {
	loc, err := h.geocoder.Lookup(c.Request.Context(), address)
	switch {
	case errors.Is(err, geocode.ErrNoResults):
		return nil, apperror.Upstream("no results for that address", err)
	case err != nil:
		return nil, fmt.Errorf("geocoding %q: %w", address, err)
	}
	return loc, nil
}

func (h *RestaurantHandler) find(c *gin.Context, id int) (*models.Restaurant, error) {
	var r models.Restaurant
	err := h.db.WithContext(c.Request.Context()).Select(restaurantColumns).First(&r, id).Error
	if err != nil {
		return nil, apperror.FromDB(err, "restaurant")
	}
	return &r, nil
}

// GetRestaurants lists restaurants, optionally filtered by name, dietary
// flags and a bounding box.
func (h *RestaurantHandler) GetRestaurants(c *gin.Context) {
	f := filter.New().
		Contains("restaurants.name", c.Query("name")).
		Bool("vegetarian", c.Query("vegetarian")).
		Bool("vegan", c.Query("vegan")).
		Bool("halal", c.Query("halal")).
		Bool("gluten_free", c.Query("gluten_free")).
		Bool("wheelchair_accessible", c.Query("wheelchair_accessible")).
		Within("location", filter.Box{
			MinLat: c.Query("minLat"),
			MaxLat: c.Query("maxLat"),
			MinLon: c.Query("minLon"),
			MaxLon: c.Query("maxLon"),
		})

	q, err := listQuery(c, h.db.WithContext(c.Request.Context()).Select(restaurantColumns), f)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	restaurants := []models.Restaurant{}
	if err := q.Order("id").Find(&restaurants).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "restaurants"))
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	r, err := h.find(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateRestaurant geocodes the address and inserts the restaurant, or
// updates the existing one with the same name.
func (h *RestaurantHandler) CreateRestaurant(c *gin.Context) {
	var input models.RestaurantRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	loc, err := h.lookup(c, input.Address)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var id int
	err = h.db.WithContext(c.Request.Context()).Raw(upsertRestaurant,
		input.Name, input.Address, loc.Region1, loc.Region2, loc.Region3, loc.PostalCode, loc.RoadAddress,
		input.Vegetarian, input.Vegan, input.Halal, input.GlutenFree, input.WheelchairAccessible,
		loc.Longitude, loc.Latitude,
	).Row().Scan(&id)
	if err != nil {
		apperror.Respond(c, apperror.FromDB(err, "restaurant"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "id": id})
}

// UpdateRestaurant replaces the restaurant and re-geocodes its address.
func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	var input models.RestaurantRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}
	if _, err := h.find(c, id); err != nil {
		apperror.Respond(c, err)
		return
	}

	loc, err := h.lookup(c, input.Address)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	err = h.db.WithContext(c.Request.Context()).Model(&models.Restaurant{}).Where("id = ?", id).
		Updates(map[string]any{
			"name":                  input.Name,
			"address":               input.Address,
			"region1":               loc.Region1,
			"region2":               loc.Region2,
			"region3":               loc.Region3,
			"postal_code":           loc.PostalCode,
			"road_address":          loc.RoadAddress,
			"vegetarian":            input.Vegetarian,
			"vegan":                 input.Vegan,
			"halal":                 input.Halal,
			"gluten_free":           input.GlutenFree,
			"wheelchair_accessible": input.WheelchairAccessible,
			"location":              gorm.Expr("ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography", loc.Longitude, loc.Latitude),
		}).Error
	if err != nil {
		apperror.Respond(c, apperror.FromDB(err, "restaurant"))
		return
	}

	r, err := h.find(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RestaurantHandler) DeleteRestaurant(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	r, err := h.find(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&models.Restaurant{}, id).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "restaurant"))
		return
	}
	c.JSON(http.StatusOK, r)
}
