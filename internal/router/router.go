package router

import (
	"context"
	"log/slog"

	"panda/internal/auth"
	"panda/internal/config"
	"panda/internal/db"
	"panda/internal/handlers"
	"panda/internal/middleware"
	"panda/internal/models"
	"panda/internal/rate"
	"panda/internal/services"
	"panda/internal/utils"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const rateLimitKeys = 10000

// New wires services, handlers and middleware over conn and returns the engine.
func New(cfg config.Config, conn *gorm.DB, logger *slog.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := auth.NewTokens(cfg.Auth.SecretKey, cfg.Auth.Algorithm, cfg.Auth.AccessTokenExpire)
	if err != nil {
		return nil, err
	}
	userCache, err := utils.NewCache[uint, models.User](cfg.UserCache.Size, cfg.UserCache.TTL)
	if err != nil {
		return nil, err
	}
	limiter, err := rate.NewMemory(rateLimitKeys)
	if err != nil {
		return nil, err
	}

	users := services.NewUserService(conn, userCache, logger)
	votes := services.NewVoteService(conn, logger)
	posts := services.NewPostService(conn, votes, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	RegisterRoutes(r, Routes{
		Home:        handlers.NewHomeHandler(func(ctx context.Context) error { return db.Ping(ctx, conn) }),
		Auth:        handlers.NewAuthHandler(users, tokens),
		Posts:       handlers.NewPostHandler(posts),
		Users:       handlers.NewUserHandler(users),
		Votes:       handlers.NewVoteHandler(votes),
		RequireUser: middleware.RequireUser(tokens, users),
		LoginLimit:  middleware.RateLimit(limiter, "login", cfg.RateLimits.LoginPerMinute),
		VoteLimit:   middleware.RateLimit(limiter, "vote", cfg.RateLimits.VotePerMinute),
	})
	return r, nil
}

// Routes groups the handlers and guards the route table is built from.
type Routes struct {
	Home  *handlers.HomeHandler
	Auth  *handlers.AuthHandler
	Posts *handlers.PostHandler
	Users *handlers.UserHandler
	Votes *handlers.VoteHandler

	RequireUser gin.HandlerFunc
	LoginLimit  gin.HandlerFunc
	VoteLimit   gin.HandlerFunc
}

func RegisterRoutes(r *gin.Engine, h Routes) {
	// Public routes
	r.GET("/", h.Home.Root)
	r.GET("/healthz", h.Home.Health)
	r.POST("/login", h.LoginLimit, h.Auth.Login)
	r.GET("/posts/latest", h.Posts.Latest)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(h.RequireUser)
	{
		authorized.GET("/posts", h.Posts.List)
		authorized.POST("/posts", h.Posts.Create)
		authorized.GET("/posts/:id", h.Posts.Get)
		authorized.PUT("/posts/:id", h.Posts.Update)
		authorized.DELETE("/posts/:id", h.Posts.Delete)

		authorized.GET("/users", h.Users.List)
		authorized.POST("/users", h.Users.Create)
		authorized.GET("/users/:id", h.Users.Get)

		authorized.POST("/vote", h.VoteLimit, h.Votes.Vote)
	}
}
