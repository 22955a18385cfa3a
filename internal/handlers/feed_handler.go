package handlers

import (
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feed  *services.FeedService
	posts *services.PostService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService, posts *services.PostService) *FeedHandler {
	return &FeedHandler{feed: feed, posts: posts}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts", h.GetFeed)
}

// GetFeed returns one page of the requester's feed: their own posts and those of the
// accounts they follow, newest first.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	page := parsePagination(c)

	ctx := c.Request().Context()
	posts, total, err := h.feed.FeedPage(ctx, p.UserID, page.Offset(), page.Limit)
	if err != nil {
		return httpError(err)
	}
	enriched, err := h.posts.Enrich(ctx, posts, p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, enriched, page, total)
}
