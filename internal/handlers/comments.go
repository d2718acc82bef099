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

type CommentHandler struct {
	db    *gorm.DB
	audit audit.Publisher
}

func NewCommentHandler(db *gorm.DB, auditor audit.Publisher) *CommentHandler {
	return &CommentHandler{db: db, audit: auditor}
}

// Target loads the comment addressed by :id for the authorization gate.
func (h *CommentHandler) Target(c *gin.Context) (authz.Target, error) {
	id, err := paramID(c)
	if err != nil {
		return authz.Target{}, err
	}
	comment, err := findByID[models.Comment](c.Request.Context(), h.db, id, "comment")
	if err != nil {
		return authz.Target{}, err
	}
	return authz.Target{OwnerID: comment.AuthorID}, nil
}

func (h *CommentHandler) find(c *gin.Context, id int) (*models.Comment, error) {
	var comment models.Comment
	err := h.db.WithContext(c.Request.Context()).Preload("Author", authorColumns).First(&comment, id).Error
	if err != nil {
		return nil, apperror.FromDB(err, "comment")
	}
	return &comment, nil
}

// GetComments lists comments oldest first, optionally by post or author.
func (h *CommentHandler) GetComments(c *gin.Context) {
	f := filter.New().
		Int("post_id", c.Query("post_id")).
		Int("author_id", c.Query("author_id"))

	q, err := listQuery(c, h.db.WithContext(c.Request.Context()).Preload("Author", authorColumns), f)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	comments := []models.Comment{}
	if err := q.Order("created_at, id").Find(&comments).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "comments"))
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	comment, err := h.find(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}
	if _, err := findByID[models.Post](c.Request.Context(), h.db, input.PostID, "post"); err != nil {
		apperror.Respond(c, err)
		return
	}

	comment := models.Comment{
		PostID:   input.PostID,
		AuthorID: middleware.CurrentActor(c).UserID,
		Content:  input.Content,
	}
	if err := h.db.WithContext(c.Request.Context()).Omit("Author", "Post").Create(&comment).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "comment"))
		return
	}

	created, err := h.find(c, comment.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateComment is author-only; the gate has already checked ownership.
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, _ := paramID(c)
	var input models.UpdateCommentRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	err := h.db.WithContext(c.Request.Context()).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("content", input.Content).Error
	if err != nil {
		apperror.Respond(c, apperror.FromDB(err, "comment"))
		return
	}

	comment, err := h.find(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, _ := paramID(c)
	comment, err := h.find(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&models.Comment{}, id).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "comment"))
		return
	}

	recordRemoval(c, h.audit, audit.CommentRemoved, "comment", comment.ID, comment.AuthorID)
	c.JSON(http.StatusOK, comment)
}
