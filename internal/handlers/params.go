package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
	"github.com/emilythestrangee/tastemap/backend/internal/filter"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func paramID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, apperror.Validation("invalid id")
	}
	return id, nil
}

// page reads limit/offset. limit defaults to def and is capped at ceiling.
func page(c *gin.Context, def, ceiling int) (limit, offset int, err error) {
	limit, offset = def, 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return 0, 0, apperror.Validation("limit must be a positive integer")
		}
		limit = min(limit, ceiling)
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, apperror.Validation("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// listQuery applies the filters and pagination of a list endpoint.
func listQuery(c *gin.Context, q *gorm.DB, f *filter.Builder) (*gorm.DB, error) {
	q, err := f.Apply(q)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	limit, offset, err := page(c, defaultPageSize, maxPageSize)
	if err != nil {
		return nil, err
	}
	return q.Limit(limit).Offset(offset), nil
}

func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func findByID[T any](ctx context.Context, db *gorm.DB, id int, what string) (*T, error) {
	var record T
	if err := db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, apperror.FromDB(err, what)
	}
	return &record, nil
}

// authorColumns limits preloaded authors to their public fields.
func authorColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "nickname", "avatar_url", "role", "created_at", "updated_at")
}
