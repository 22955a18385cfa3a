package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like-related HTTP requests
type LikeHandler struct {
	posts *services.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(posts *services.PostService) *LikeHandler {
	return &LikeHandler{posts: posts}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.POST("/posts/:id/unlike", h.UnlikePost)
	g.GET("/posts/:id/likes", h.GetLikes)
}

// LikePost likes a post. Liking twice is a no-op reported with 200 instead of 201.
func (h *LikeHandler) LikePost(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	result, err := h.posts.Like(ctx, postID, p.UserID)
	if err != nil {
		return httpError(err)
	}
	count, err := h.posts.LikesCount(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	status, message := http.StatusCreated, "Post liked"
	if !result.Created {
		status, message = http.StatusOK, "You have already liked this post"
	}
	return respond(c, status, echo.Map{
		"message":     message,
		"created":     result.Created,
		"likes_count": count,
	})
}

// UnlikePost removes the requester's like
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.posts.Unlike(ctx, postID, p.UserID); err != nil {
		return httpError(err)
	}
	count, err := h.posts.LikesCount(ctx, postID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Post unliked", "likes_count": count})
}

// GetLikes lists who liked a post, newest first
func (h *LikeHandler) GetLikes(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	likes, err := h.posts.ListLikes(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	views := make([]models.LikeView, len(likes))
	for i := range likes {
		views[i] = likes[i].View()
	}
	return respond(c, http.StatusOK, views)
}
