package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/permissions"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	posts *services.PostService
	users *services.UserService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService, users *services.UserService) *PostHandler {
	return &PostHandler{posts: posts, users: users}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/posts/users/:username", h.GetPostsByUser)
}

// CreatePost publishes a post. Attaching media requires a verified or staff account.
func (h *PostHandler) CreatePost(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if hasMedia(req.MediaURL) && !permissions.CanAttachMedia(p) {
		return httpError(services.ErrMediaNotAllowed)
	}

	ctx := c.Request().Context()
	post, err := h.posts.CreatePost(ctx, p.UserID, req.Content, req.MediaURL)
	if err != nil {
		return httpError(err)
	}
	enriched, err := h.posts.Enrich(ctx, []models.Post{*post}, p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, enriched[0])
}

// GetPost returns a single post as seen by the requester
func (h *PostHandler) GetPost(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.posts.GetPost(ctx, id)
	if err != nil {
		return httpError(err)
	}
	enriched, err := h.posts.Enrich(ctx, []models.Post{*post}, p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, enriched[0])
}

// UpdatePost edits a post owned by the requester
func (h *PostHandler) UpdatePost(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if hasMedia(req.MediaURL) && !permissions.CanAttachMedia(p) {
		return httpError(services.ErrMediaNotAllowed)
	}

	ctx := c.Request().Context()
	post, err := h.posts.UpdatePost(ctx, p, id, req.Content, req.MediaURL)
	if err != nil {
		return httpError(err)
	}
	enriched, err := h.posts.Enrich(ctx, []models.Post{*post}, p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, enriched[0])
}

// DeletePost removes a post owned by the requester
func (h *PostHandler) DeletePost(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.posts.DeletePost(c.Request().Context(), p, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetPostsByUser lists the posts of one author, newest first
func (h *PostHandler) GetPostsByUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	author, err := h.users.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return httpError(err)
	}
	posts, err := h.posts.ListByAuthor(ctx, author.ID)
	if err != nil {
		return httpError(err)
	}
	enriched, err := h.posts.Enrich(ctx, posts, p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, enriched)
}

func hasMedia(mediaURL *string) bool {
	return mediaURL != nil && *mediaURL != ""
}
