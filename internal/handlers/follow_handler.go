package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow-related HTTP requests
type FollowHandler struct {
	follows *services.FollowService
	users   *services.UserService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows *services.FollowService, users *services.UserService) *FollowHandler {
	return &FollowHandler{follows: follows, users: users}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follow/:username", h.FollowUser)
	g.POST("/unfollow/:username", h.UnfollowUser)
	g.GET("/users/:username/followers", h.GetFollowers)
	g.GET("/users/:username/following", h.GetFollowing)
}

// FollowUser follows the user named in the path. Repeating the call is a no-op
// reported with 200 instead of 201.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	target, err := h.users.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return httpError(err)
	}

	result, err := h.follows.Follow(ctx, p.UserID, target.ID)
	if err != nil {
		return httpError(err)
	}

	status, message := http.StatusCreated, "You are now following "+target.Username
	if !result.Created {
		status, message = http.StatusOK, "You are already following "+target.Username
	}
	return respond(c, status, echo.Map{
		"message": message,
		"created": result.Created,
		"follow":  result.Follow,
	})
}

// UnfollowUser removes the follow edge to the user named in the path
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	target, err := h.users.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return httpError(err)
	}

	if err := h.follows.Unfollow(ctx, p.UserID, target.ID); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "You have unfollowed " + target.Username})
}

// GetFollowers lists the accounts following the user named in the path
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listEdges(c, h.follows.Followers)
}

// GetFollowing lists the accounts the user named in the path follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listEdges(c, h.follows.Following)
}

func (h *FollowHandler) listEdges(c echo.Context, list func(ctx context.Context, userID uint) ([]models.Follow, error)) error {
	ctx := c.Request().Context()
	user, err := h.users.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return httpError(err)
	}
	edges, err := list(ctx, user.ID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, edges)
}
