package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medforo/medforo/internal/cache"
	"github.com/medforo/medforo/internal/middleware"
	"github.com/medforo/medforo/internal/service"
	"github.com/medforo/medforo/pkg/config"
	"github.com/medforo/medforo/pkg/logging"
)

// Router sets up API routes
type Router struct {
	communities *service.CommunityService
	content     *service.ContentService
	notifier    *service.Notifier
	cache       *cache.Cache
	jwtSecret   string
	logger      *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(communities *service.CommunityService, content *service.ContentService, notifier *service.Notifier, redisCache *cache.Cache, cfg *config.AuthConfig) *Router {
	return &Router{
		communities: communities,
		content:     content,
		notifier:    notifier,
		cache:       redisCache,
		jwtSecret:   cfg.JWTSecret,
		logger:      logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	v1 := engine.Group("/api/v1", middleware.Auth(r.jwtSecret))

	communities := v1.Group("/communities")
	communities.POST("", r.createCommunity)
	communities.GET("", r.listCommunities)
	communities.GET("/name-available", r.checkNameAvailable)
	communities.GET("/:id", r.getCommunity)
	communities.PATCH("/:id", r.updateSettings)
	communities.DELETE("/:id", r.deleteCommunity)
	communities.POST("/:id/join", r.joinCommunity)
	communities.POST("/:id/leave", r.leaveCommunity)
	communities.POST("/:id/transfer-ownership", r.transferOwnership)
	communities.GET("/:id/moderators", r.listModerators)
	communities.POST("/:id/moderators", r.addModerator)
	communities.DELETE("/:id/moderators/:userId", r.removeModerator)
	communities.GET("/:id/pending-members", r.listPendingMembers)
	communities.POST("/:id/pending-members/:userId/approve", r.approveMember)
	communities.POST("/:id/pending-members/:userId/reject", r.rejectMember)
	communities.GET("/:id/bans", r.listBans)
	communities.POST("/:id/bans", r.banUser)
	communities.DELETE("/:id/bans/:userId", r.unbanUser)
	communities.GET("/:id/posts", r.listPosts)
	communities.GET("/:id/pending-posts", r.listPendingPosts)
	communities.POST("/:id/posts/:postId/validate", r.validatePost)
	communities.POST("/:id/posts/:postId/reject", r.rejectPost)

	posts := v1.Group("/posts")
	posts.POST("", r.createPost)
	posts.GET("/:id", r.getPost)
	posts.PATCH("/:id", r.editPost)
	posts.DELETE("/:id", r.deletePost)
	posts.GET("/:id/comments", r.listComments)
	posts.POST("/:id/comments", r.createComment)

	comments := v1.Group("/comments")
	comments.PATCH("/:id", r.editComment)
	comments.DELETE("/:id", r.deleteComment)

	notifications := v1.Group("/notifications")
	notifications.GET("", r.listNotifications)
	notifications.POST("/read-all", r.markAllNotificationsRead)
	notifications.POST("/:id/read", r.markNotificationRead)
	notifications.DELETE("/read", r.deleteReadNotifications)
	notifications.DELETE("/all", r.deleteAllNotifications)
	notifications.DELETE("/:id", r.deleteNotification)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "medforo-api",
	})
}
