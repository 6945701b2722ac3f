package http

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/devhyun/boardwatch/internal/keyword"
	"github.com/devhyun/boardwatch/internal/service"
	"github.com/devhyun/boardwatch/internal/ws"
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, db *gorm.DB, hub *ws.Hub, notifier *keyword.Notifier) {

	// --- Dependencies ---
	env := &Env{
		Posts:    service.NewPostService(db, notifier),
		Comments: service.NewCommentService(db, notifier),
	}

	// --- Middleware ---

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "*" // Default to allow all for local dev
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// --- Rate Limiter Setup ---
	limiter := NewIPRateLimiter(rate.Limit(rateLimitRPS), rateLimitBurst)
	go func() {
		for {
			time.Sleep(10 * time.Minute)
			limiter.mu.Lock()
			for ip, v := range limiter.visitors {
				if v.Allow() {
					// An idle limiter has refilled; drop it.
					delete(limiter.visitors, ip)
				}
			}
			limiter.mu.Unlock()
		}
	}()

	// --- API Routes ---

	posts := router.Group("/posts")
	{
		posts.GET("", env.GetPosts)
		posts.POST("", RateLimitMiddleware(limiter), env.CreatePost)
		posts.GET("/:id", env.GetPost)
		posts.PATCH("/:id", env.EditPost)
		posts.DELETE("/:id", env.DeletePost)

		posts.GET("/:id/comments", env.GetComments)
		posts.POST("/:id/comments", RateLimitMiddleware(limiter), env.CreateComment)
		posts.DELETE("/:id/comments/:commentId", env.DeleteComment)
	}

	// --- WebSocket Route ---
	// Clients subscribe here to receive keyword alarms.

	router.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(hub, c.Writer, c.Request)
	})
}
