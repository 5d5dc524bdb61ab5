package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medforo/medforo/internal/middleware"
	"github.com/medforo/medforo/internal/service"
)

type createPostRequest struct {
	CommunityID string   `json:"communityId" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	ImageURLs   []string `json:"imageUrls"`
}

func (r *Router) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := r.content.CreatePost(c.Request.Context(), service.CreatePostInput{
		CommunityID: req.CommunityID,
		AuthorID:    middleware.UserID(c),
		Title:       req.Title,
		Content:     req.Content,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity(req.CommunityID)
	c.JSON(http.StatusCreated, post)
}

func (r *Router) getPost(c *gin.Context) {
	post, err := r.content.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	images, err := r.content.PostImages(c.Request.Context(), post.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "images": images})
}

func (r *Router) listPosts(c *gin.Context) {
	posts, err := r.content.ListPosts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

type editPostRequest struct {
	Title     *string   `json:"title"`
	Content   *string   `json:"content"`
	ImageURLs *[]string `json:"imageUrls"`
}

func (r *Router) editPost(c *gin.Context) {
	var req editPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.content.EditPost(c.Request.Context(), c.Param("id"), middleware.UserID(c),
		service.EditPostInput{Title: req.Title, Content: req.Content, ImageURLs: req.ImageURLs}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (r *Router) deletePost(c *gin.Context) {
	result, err := r.content.DeletePost(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	r.invalidateCommunity("")
	c.JSON(http.StatusOK, result)
}

type createCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID string `json:"parentCommentId"`
}

func (r *Router) createComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := r.content.CreateComment(c.Request.Context(), service.CreateCommentInput{
		PostID:          c.Param("id"),
		AuthorID:        middleware.UserID(c),
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (r *Router) listComments(c *gin.Context) {
	comments, err := r.content.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

type editCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (r *Router) editComment(c *gin.Context) {
	var req editCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.content.EditComment(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Content); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (r *Router) deleteComment(c *gin.Context) {
	result, err := r.content.DeleteComment(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
