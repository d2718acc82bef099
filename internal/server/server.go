package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/tastemap/backend/internal/audit"
	"github.com/emilythestrangee/tastemap/backend/internal/auth"
	"github.com/emilythestrangee/tastemap/backend/internal/authz"
	"github.com/emilythestrangee/tastemap/backend/internal/config"
	"github.com/emilythestrangee/tastemap/backend/internal/database"
	"github.com/emilythestrangee/tastemap/backend/internal/handlers"
	"github.com/emilythestrangee/tastemap/backend/internal/middleware"
)

type Server struct {
	cfg      config.Config
	db       database.Service
	tokens   *auth.Tokens
	sessions auth.Sessions
	roles    auth.Roles
	logger   *slog.Logger
	handler  *handlers.Handler
}

// Options wires the server's collaborators. Sessions and Audit are optional.
type Options struct {
	Config   config.Config
	DB       database.Service
	Tokens   *auth.Tokens
	Sessions auth.Sessions
	Geocoder handlers.Geocoder
	Audit    audit.Publisher
	Logger   *slog.Logger
}

func New(opts Options) *Server {
	if opts.Sessions == nil {
		opts.Sessions = auth.NopSessions{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Audit == nil {
		opts.Audit = audit.NewLogPublisher(opts.Logger)
	}

	// Create unified handler
	handler := handlers.NewHandler(handlers.Deps{
		DB:       opts.DB.GetDB(),
		Tokens:   opts.Tokens,
		Sessions: opts.Sessions,
		Geocoder: opts.Geocoder,
		Audit:    opts.Audit,
	})

	return &Server{
		cfg:      opts.Config,
		db:       opts.DB,
		tokens:   opts.Tokens,
		sessions: opts.Sessions,
		roles:    auth.NewDBRoles(opts.DB.GetDB()),
		logger:   opts.Logger,
		handler:  handler,
	}
}

// HTTPServer returns the configured http.Server for this router.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(s.logger))

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		stats := s.db.Health(c.Request.Context())
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	h := s.handler
	requireAuth := middleware.Auth(s.tokens, s.sessions, s.roles)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", requireAuth, h.Auth.Logout)
		authGroup.GET("/me", requireAuth, h.Auth.GetMe)
	}

	restaurants := r.Group("/restaurants")
	{
		restaurants.GET("", h.Restaurant.GetRestaurants)
		restaurants.GET("/:id", h.Restaurant.GetRestaurant)
		restaurants.POST("", requireAuth, h.Restaurant.CreateRestaurant)
		restaurants.PUT("/:id", requireAuth, h.Restaurant.UpdateRestaurant)
		restaurants.DELETE("/:id", requireAuth, h.Restaurant.DeleteRestaurant)
	}

	stores := r.Group("/stores")
	{
		stores.GET("", h.Store.GetStores)
		stores.GET("/:id", h.Store.GetStore)
		stores.POST("", requireAuth, h.Store.CreateStore)
		stores.PUT("/:id", requireAuth, h.Store.UpdateStore)
		stores.DELETE("/:id", requireAuth, h.Store.DeleteStore)
	}

	events := r.Group("/discount-events")
	{
		events.GET("", h.DiscountEvent.GetDiscountEvents)
		events.GET("/:id", h.DiscountEvent.GetDiscountEvent)
		events.POST("", requireAuth, h.DiscountEvent.CreateDiscountEvent)
		events.PUT("/:id", requireAuth, h.DiscountEvent.UpdateDiscountEvent)
		events.DELETE("/:id", requireAuth, h.DiscountEvent.DeleteDiscountEvent)
	}

	community := r.Group("/community")
	{
		community.GET("/trending", h.Post.GetTrending)

		community.GET("/subcategories", h.Subcategory.GetSubcategories)
		community.GET("/subcategories/:id", h.Subcategory.GetSubcategory)
		community.POST("/subcategories", requireAuth, h.Subcategory.CreateSubcategory)
		community.PUT("/subcategories/:id", requireAuth,
			middleware.Authorize(authz.EditSubcategory, h.Subcategory.Target), h.Subcategory.UpdateSubcategory)
		community.DELETE("/subcategories/:id", requireAuth,
			middleware.Authorize(authz.DeleteSubcategory, h.Subcategory.Target), h.Subcategory.DeleteSubcategory)

		community.GET("/posts", h.Post.GetPosts)
		community.GET("/posts/:id", h.Post.GetPost)
		community.POST("/posts", requireAuth, h.Post.CreatePost)
		community.PUT("/posts/:id", requireAuth,
			middleware.Authorize(authz.EditPost, h.Post.Target), h.Post.UpdatePost)
		community.DELETE("/posts/:id", requireAuth,
			middleware.Authorize(authz.DeletePost, h.Post.Target), h.Post.DeletePost)
		community.POST("/posts/:id/upvote", requireAuth, h.Post.Upvote)
		community.POST("/posts/:id/downvote", requireAuth, h.Post.Downvote)

		community.GET("/comments", h.Comment.GetComments)
		community.GET("/comments/:id", h.Comment.GetComment)
		community.POST("/comments", requireAuth, h.Comment.CreateComment)
		community.PUT("/comments/:id", requireAuth,
			middleware.Authorize(authz.EditComment, h.Comment.Target), h.Comment.UpdateComment)
		community.DELETE("/comments/:id", requireAuth,
			middleware.Authorize(authz.DeleteComment, h.Comment.Target), h.Comment.DeleteComment)
	}

	users := r.Group("/users")
	{
		users.GET("", h.User.GetUsers)
		users.GET("/:id", h.User.GetUser)
		users.PUT("/:id", requireAuth,
			middleware.Authorize(authz.UpdateUser, h.User.Target), h.User.UpdateUser)
		users.PUT("/:id/role", requireAuth, h.User.ChangeRole)
		users.POST("/:id/promoteToModerator", requireAuth, h.User.PromoteToModerator)
		users.DELETE("/:id", requireAuth,
			middleware.Authorize(authz.DeleteUser, h.User.Target), h.User.DeleteUser)
	}

	r.POST("/profile", requireAuth, h.User.UpdateProfile)

	return r
}
