package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medforo/medforo/internal/middleware"
)

func (r *Router) listNotifications(c *gin.Context) {
	notifications, err := r.notifier.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (r *Router) markNotificationRead(c *gin.Context) {
	if err := r.notifier.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (r *Router) markAllNotificationsRead(c *gin.Context) {
	updated, err := r.notifier.MarkAllRead(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (r *Router) deleteNotification(c *gin.Context) {
	if err := r.notifier.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (r *Router) deleteAllNotifications(c *gin.Context) {
	deleted, err := r.notifier.DeleteAll(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (r *Router) deleteReadNotifications(c *gin.Context) {
	deleted, err := r.notifier.DeleteRead(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
