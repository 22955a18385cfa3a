package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/comments/:id", h.GetComment)
	g.PUT("/posts/comments/:id", h.UpdateComment)
	g.DELETE("/posts/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.CreateComment(c.Request().Context(), postID, p.UserID, req.Content)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, comment.View())
}

// GetCommentsByPostID lists a post's comments, oldest first
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.comments.ListComments(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	views := make([]models.CommentView, len(comments))
	for i := range comments {
		views[i] = comments[i].View()
	}
	return respond(c, http.StatusOK, views)
}

func (h *CommentHandler) GetComment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	comment, err := h.comments.GetComment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, comment.View())
}

// UpdateComment edits a comment owned by the requester
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.UpdateComment(c.Request().Context(), p, id, req.Content)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, comment.View())
}

// DeleteComment removes a comment owned by the requester
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.comments.DeleteComment(c.Request().Context(), p, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
