package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteUser)
	g.GET("/users", h.ListUsers)
	g.GET("/users/:username", h.GetUser)
}

// GetUser returns another user's profile with follow counts
func (h *UserHandler) GetUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	profile, err := h.users.Profile(c.Request().Context(), c.Param("username"), p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, profile)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	user, err := h.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return httpError(err)
	}
	profile, err := h.users.Profile(ctx, user.Username, p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, profile)
}

// UpdateProfile changes the authenticated user's bio and avatar
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.Request().Context(), p, req.Bio, req.AvatarURL)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, user)
}

// DeleteUser removes the authenticated user's account
func (h *UserHandler) DeleteUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.Request().Context(), p); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUsers returns every other account, ordered by username
func (h *UserHandler) ListUsers(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListUsers(c.Request().Context(), p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, users)
}
