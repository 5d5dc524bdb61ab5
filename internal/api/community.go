package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medforo/medforo/internal/middleware"
	"github.com/medforo/medforo/internal/models"
	"github.com/medforo/medforo/internal/service"
)

const communityCacheTTL = 5 * time.Minute

func communityKey(id string) string {
	return "community:" + id
}

// invalidateCommunity drops the cached views a community mutation stales
func (r *Router) invalidateCommunity(id string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete("communities"); err != nil {
		r.logger.Debug("Cache invalidation skipped", zap.Error(err))
	}
	if id != "" {
		if err := r.cache.Delete(communityKey(id)); err != nil {
			r.logger.Debug("Cache invalidation skipped", zap.Error(err))
		}
	}
}

type createCommunityRequest struct {
	Name                 string `json:"name" binding:"required"`
	Description          string `json:"description"`
	Rules                string `json:"rules"`
	RequiresApproval     bool   `json:"requiresApproval"`
	RequiresPostApproval bool   `json:"requiresPostApproval"`
}

func (r *Router) createCommunity(c *gin.Context) {
	var req createCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	community, err := r.communities.Create(c.Request.Context(), middleware.UserID(c),
		req.Name, req.Description, req.Rules, req.RequiresApproval, req.RequiresPostApproval)
	if err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity("")
	c.JSON(http.StatusCreated, community)
}

func (r *Router) listCommunities(c *gin.Context) {
	if r.cache != nil {
		var cached []*models.Community
		if err := r.cache.GetJSON("communities", &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	communities, err := r.communities.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if r.cache != nil {
		if err := r.cache.SetJSON("communities", communities, communityCacheTTL); err != nil {
			r.logger.Debug("Cache write skipped", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, communities)
}

func (r *Router) checkNameAvailable(c *gin.Context) {
	available, err := r.communities.CheckNameAvailable(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (r *Router) getCommunity(c *gin.Context) {
	id := c.Param("id")

	if r.cache != nil {
		var cached models.Community
		if err := r.cache.GetJSON(communityKey(id), &cached); err == nil {
			c.JSON(http.StatusOK, &cached)
			return
		}
	}

	community, err := r.communities.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if r.cache != nil {
		if err := r.cache.SetJSON(communityKey(id), community, communityCacheTTL); err != nil {
			r.logger.Debug("Cache write skipped", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, community)
}

type updateSettingsRequest struct {
	Name                 *string `json:"name"`
	Description          *string `json:"description"`
	Rules                *string `json:"rules"`
	RequiresApproval     *bool   `json:"requiresApproval"`
	RequiresPostApproval *bool   `json:"requiresPostApproval"`
}

func (r *Router) updateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := r.communities.UpdateSettings(c.Request.Context(), c.Param("id"), middleware.UserID(c),
		service.UpdateSettingsInput{
			Name:                 req.Name,
			Description:          req.Description,
			Rules:                req.Rules,
			RequiresApproval:     req.RequiresApproval,
			RequiresPostApproval: req.RequiresPostApproval,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity(c.Param("id"))
	c.JSON(http.StatusOK, result)
}

type deleteCommunityRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (r *Router) deleteCommunity(c *gin.Context) {
	var req deleteCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := r.communities.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity(c.Param("id"))
	c.JSON(http.StatusOK, result)
}

func (r *Router) joinCommunity(c *gin.Context) {
	pending, err := r.communities.Join(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity(c.Param("id"))
	status := "joined"
	if pending {
		status = "pending"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (r *Router) leaveCommunity(c *gin.Context) {
	if err := r.communities.Leave(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

func (r *Router) transferOwnership(c *gin.Context) {
	successorID, err := r.communities.TransferOwnershipAndLeave(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"newOwnerId": successorID})
}

func (r *Router) listModerators(c *gin.Context) {
	moderators, err := r.communities.ListModerators(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, moderators)
}

type moderatorRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (r *Router) addModerator(c *gin.Context) {
	var req moderatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.communities.AddModerator(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "assigned"})
}

func (r *Router) removeModerator(c *gin.Context) {
	if err := r.communities.RemoveModerator(c.Request.Context(), c.Param("id"), middleware.UserID(c), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (r *Router) listPendingMembers(c *gin.Context) {
	pending, err := r.communities.ListPendingMembers(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

func (r *Router) approveMember(c *gin.Context) {
	if err := r.communities.ApproveMember(c.Request.Context(), c.Param("id"), middleware.UserID(c), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

func (r *Router) rejectMember(c *gin.Context) {
	if err := r.communities.RejectMember(c.Request.Context(), c.Param("id"), middleware.UserID(c), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (r *Router) listBans(c *gin.Context) {
	bans, err := r.communities.ListBans(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bans)
}

type banRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
	Duration string `json:"duration" binding:"required"`
}

func (r *Router) banUser(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.communities.BanUser(c.Request.Context(), c.Param("id"), middleware.UserID(c),
		req.UserID, req.Reason, req.Duration); err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "banned"})
}

func (r *Router) unbanUser(c *gin.Context) {
	if err := r.communities.UnbanUser(c.Request.Context(), c.Param("id"), middleware.UserID(c), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unbanned"})
}

func (r *Router) listPendingPosts(c *gin.Context) {
	posts, err := r.communities.GetPendingPosts(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (r *Router) validatePost(c *gin.Context) {
	if err := r.communities.ValidatePost(c.Request.Context(), c.Param("id"), c.Param("postId"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "validated"})
}

func (r *Router) rejectPost(c *gin.Context) {
	if err := r.communities.RejectPost(c.Request.Context(), c.Param("id"), c.Param("postId"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}
