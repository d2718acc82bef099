package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/audit"
	"github.com/emilythestrangee/tastemap/backend/internal/authz"
	"github.com/emilythestrangee/tastemap/backend/internal/filter"
	"github.com/emilythestrangee/tastemap/backend/internal/middleware"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

type SubcategoryHandler struct {
	db    *gorm.DB
	audit audit.Publisher
}

func NewSubcategoryHandler(db *gorm.DB, auditor audit.Publisher) *SubcategoryHandler {
	return &SubcategoryHandler{db: db, audit: auditor}
}

// Target loads the subcategory addressed by :id for the authorization gate.
func (h *SubcategoryHandler) Target(c *gin.Context) (authz.Target, error) {
	id, err := paramID(c)
	if err != nil {
		return authz.Target{}, err
	}
	sub, err := findByID[models.Subcategory](c.Request.Context(), h.db, id, "subcategory")
	if err != nil {
		return authz.Target{}, err
	}
	return authz.Target{OwnerID: sub.CreatedBy}, nil
}

func (h *SubcategoryHandler) GetSubcategories(c *gin.Context) {
	q, err := listQuery(c, h.db.WithContext(c.Request.Context()), filter.New().Contains("name", c.Query("name")))
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	subs := []models.Subcategory{}
	if err := q.Order("name").Find(&subs).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "subcategories"))
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *SubcategoryHandler) GetSubcategory(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	sub, err := findByID[models.Subcategory](c.Request.Context(), h.db, id, "subcategory")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubcategoryHandler) CreateSubcategory(c *gin.Context) {
	var input models.SubcategoryRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	sub := models.Subcategory{
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   middleware.CurrentActor(c).UserID,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&sub).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "subcategory"))
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *SubcategoryHandler) UpdateSubcategory(c *gin.Context) {
	id, _ := paramID(c)
	var input models.SubcategoryRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	sub, err := findByID[models.Subcategory](c.Request.Context(), h.db, id, "subcategory")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	sub.Name = input.Name
	sub.Description = input.Description
	if err := h.db.WithContext(c.Request.Context()).Save(sub).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "subcategory"))
		return
	}
	c.JSON(http.StatusOK, sub)
}

// DeleteSubcategory removes the subcategory together with its posts.
func (h *SubcategoryHandler) DeleteSubcategory(c *gin.Context) {
	id, _ := paramID(c)
	sub, err := findByID[models.Subcategory](c.Request.Context(), h.db, id, "subcategory")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(sub).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "subcategory"))
		return
	}

	recordRemoval(c, h.audit, audit.SubcategoryRemoved, "subcategory", sub.ID, sub.CreatedBy)
	c.JSON(http.StatusOK, sub)
}

// recordRemoval audits deletions of content the actor does not own.
func recordRemoval(c *gin.Context, p audit.Publisher, action audit.Action, targetType string, targetID, ownerID int) {
	actor := middleware.CurrentActor(c)
	if !authz.Overrides(actor, authz.Target{OwnerID: ownerID}) {
		return
	}
	audit.Record(c.Request.Context(), p, audit.Event{
		Action:     action,
		ActorID:    actor.UserID,
		ActorRole:  string(actor.Role),
		TargetType: targetType,
		TargetID:   targetID,
	})
}
