package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/filter"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

type DiscountEventHandler struct {
	db *gorm.DB
}

func NewDiscountEventHandler(db *gorm.DB) *DiscountEventHandler {
	return &DiscountEventHandler{db: db}
}

func (h *DiscountEventHandler) GetDiscountEvents(c *gin.Context) {
	f := filter.New().
		Int("store_id", c.Query("store_id")).
		Equal("category", c.Query("category")).
		Bool("is_active", c.Query("is_active"))

	q, err := listQuery(c, h.db.WithContext(c.Request.Context()), f)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	events := []models.DiscountEvent{}
	if err := q.Order("start_date DESC, id").Find(&events).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "discount events"))
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *DiscountEventHandler) GetDiscountEvent(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	event, err := findByID[models.DiscountEvent](c.Request.Context(), h.db, id, "discount event")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *DiscountEventHandler) CreateDiscountEvent(c *gin.Context) {
	var input models.DiscountEventRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	var event models.DiscountEvent
	input.Apply(&event)
	if err := h.db.WithContext(c.Request.Context()).Omit("Store").Create(&event).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "discount event"))
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *DiscountEventHandler) UpdateDiscountEvent(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	var input models.DiscountEventRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	event, err := findByID[models.DiscountEvent](c.Request.Context(), h.db, id, "discount event")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	input.Apply(event)
	if err := h.db.WithContext(c.Request.Context()).Omit("Store").Save(event).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "discount event"))
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *DiscountEventHandler) DeleteDiscountEvent(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	event, err := findByID[models.DiscountEvent](c.Request.Context(), h.db, id, "discount event")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(event).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "discount event"))
		return
	}
	c.JSON(http.StatusOK, event)
}
