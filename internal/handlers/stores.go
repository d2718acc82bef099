package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/filter"
	"github.com/emilythestrangee/tastemap/backend/internal/models"
)

type StoreHandler struct {
	db *gorm.DB
}

func NewStoreHandler(db *gorm.DB) *StoreHandler {
	return &StoreHandler{db: db}
}

// GetStores lists stores by category. With searchName it answers whether a
// store with a matching name exists, returning the first match.
func (h *StoreHandler) GetStores(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	if name := c.Query("searchName"); name != "" {
		q, err := filter.New().Contains("name", name).Apply(db)
		if err != nil {
			apperror.Respond(c, apperror.Validation(err.Error()))
			return
		}
		var store models.Store
		err = q.Order("id").Take(&store).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusOK, gin.H{"exists": false})
		case err != nil:
			apperror.Respond(c, apperror.FromDB(err, "store"))
		default:
			c.JSON(http.StatusOK, gin.H{"exists": true, "store": store})
		}
		return
	}

	q, err := listQuery(c, db, filter.New().Equal("category", c.Query("category")))
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	stores := []models.Store{}
	if err := q.Order("id").Find(&stores).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "stores"))
		return
	}
	c.JSON(http.StatusOK, stores)
}

func (h *StoreHandler) GetStore(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	store, err := findByID[models.Store](c.Request.Context(), h.db, id, "store")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) CreateStore(c *gin.Context) {
	var input models.StoreRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	store := models.Store{
		Name:         input.Name,
		Address:      input.Address,
		Category:     input.Category,
		Phone:        input.Phone,
		OpeningHours: input.OpeningHours,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&store).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "store"))
		return
	}
	c.JSON(http.StatusCreated, store)
}

func (h *StoreHandler) UpdateStore(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	var input models.StoreRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	store, err := findByID[models.Store](c.Request.Context(), h.db, id, "store")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	store.Name = input.Name
	store.Address = input.Address
	store.Category = input.Category
	store.Phone = input.Phone
	store.OpeningHours = input.OpeningHours

	if err := h.db.WithContext(c.Request.Context()).Save(store).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "store"))
		return
	}
	c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) DeleteStore(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	store, err := findByID[models.Store](c.Request.Context(), h.db, id, "store")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(store).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "store"))
		return
	}
	c.JSON(http.StatusOK, store)
}
