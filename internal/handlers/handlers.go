package handlers

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/audit"
	"github.com/emilythestrangee/tastemap/backend/internal/auth"
	"github.com/emilythestrangee/tastemap/backend/internal/geocode"
	"github.com/emilythestrangee/tastemap/backend/internal/voting"
)

// Geocoder resolves a postal address to regions and coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (*geocode.Result, error)
}

// Deps are the collaborators shared by the handlers.
type Deps struct {
	DB       *gorm.DB
	Tokens   *auth.Tokens
	Sessions auth.Sessions
	Geocoder Geocoder
	Audit    audit.Publisher
}

// Handler combines all handler types
type Handler struct {
	Auth          *AuthHandler
	Restaurant    *RestaurantHandler
	Store         *StoreHandler
	DiscountEvent *DiscountEventHandler
	Subcategory   *SubcategoryHandler
	Post          *PostHandler
	Comment       *CommentHandler
	User          *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) *Handler {
	if d.Sessions == nil {
		d.Sessions = auth.NopSessions{}
	}

	return &Handler{
		Auth:          NewAuthHandler(d.DB, d.Tokens, d.Sessions),
		Restaurant:    NewRestaurantHandler(d.DB, d.Geocoder),
		Store:         NewStoreHandler(d.DB),
		DiscountEvent: NewDiscountEventHandler(d.DB),
		Subcategory:   NewSubcategoryHandler(d.DB, d.Audit),
		Post:          NewPostHandler(d.DB, voting.NewService(d.DB), d.Audit),
		Comment:       NewCommentHandler(d.DB, d.Audit),
		User:          NewUserHandler(d.DB, d.Sessions, d.Audit),
	}
}
