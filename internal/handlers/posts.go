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
	"github.com/emilythestrangee/tastemap/backend/internal/voting"
)

const (
	defaultTrending = 10
	maxTrending     = 50

	// startOfUTCDay does not depend on the session's TimeZone setting.
	startOfUTCDay = "date_trunc('day', now() AT TIME ZONE 'UTC') AT TIME ZONE 'UTC'"
)

type PostHandler struct {
	db     *gorm.DB
	voting *voting.Service
	audit  audit.Publisher
}

func NewPostHandler(db *gorm.DB, votes *voting.Service, auditor audit.Publisher) *PostHandler {
	return &PostHandler{db: db, voting: votes, audit: auditor}
}

// Target loads the post addressed by :id for the authorization gate.
func (h *PostHandler) Target(c *gin.Context) (authz.Target, error) {
	id, err := paramID(c)
	if err != nil {
		return authz.Target{}, err
	}
	post, err := findByID[models.Post](c.Request.Context(), h.db, id, "post")
	if err != nil {
		return authz.Target{}, err
	}
	return authz.Target{OwnerID: post.AuthorID}, nil
}

func (h *PostHandler) query(c *gin.Context) *gorm.DB {
	return h.db.WithContext(c.Request.Context()).Preload("Author", authorColumns)
}

func (h *PostHandler) find(c *gin.Context, id int) (*models.Post, error) {
	var post models.Post
	if err := h.query(c).First(&post, id).Error; err != nil {
		return nil, apperror.FromDB(err, "post")
	}
	return &post, nil
}

// GetPosts lists posts newest first.
func (h *PostHandler) GetPosts(c *gin.Context) {
	f := filter.New().
		Int("subcategory_id", c.Query("subcategory_id")).
		Int("author_id", c.Query("author_id")).
		Contains("title", c.Query("title"))

	q, err := listQuery(c, h.query(c), f)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	posts := []models.Post{}
	if err := q.Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "posts"))
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetTrending ranks today's posts by (upvotes+1)/(downvotes+1).
func (h *PostHandler) GetTrending(c *gin.Context) {
	limit, _, err := page(c, defaultTrending, maxTrending)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	posts := []models.Post{}
	err = h.query(c).
		Where("created_at >= " + startOfUTCDay).
		Order("(upvotes + 1)::float / (downvotes + 1) DESC, created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		apperror.Respond(c, apperror.FromDB(err, "posts"))
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	post, err := h.find(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.PostRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	post := models.Post{
		SubcategoryID: input.SubcategoryID,
		AuthorID:      middleware.CurrentActor(c).UserID,
		Title:         input.Title,
		Content:       input.Content,
	}
	if err := h.db.WithContext(c.Request.Context()).Omit("Author", "Subcategory").Create(&post).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "post"))
		return
	}

	created, err := h.find(c, post.ID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdatePost replaces the editable fields. Vote counters are left alone.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, _ := paramID(c)
	var input models.PostRequest
	if err := bindJSON(c, &input); err != nil {
		apperror.Respond(c, err)
		return
	}

	err := h.db.WithContext(c.Request.Context()).Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"subcategory_id": input.SubcategoryID,
			"title":          input.Title,
			"content":        input.Content,
		}).Error
	if err != nil {
		apperror.Respond(c, apperror.FromDB(err, "post"))
		return
	}

	post, err := h.find(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost removes the post; its comments and votes go with it.
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, _ := paramID(c)
	post, err := h.find(c, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&models.Post{}, id).Error; err != nil {
		apperror.Respond(c, apperror.FromDB(err, "post"))
		return
	}

	recordRemoval(c, h.audit, audit.PostRemoved, "post", post.ID, post.AuthorID)
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Upvote(c *gin.Context)   { h.vote(c, voting.Up) }
func (h *PostHandler) Downvote(c *gin.Context) { h.vote(c, voting.Down) }

func (h *PostHandler) vote(c *gin.Context, intent voting.Intent) {
	id, err := paramID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	out, err := h.voting.Apply(c.Request.Context(), middleware.CurrentActor(c).UserID, id, intent)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
