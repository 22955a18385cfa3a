package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/socialgraph/internal/auth"
	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users  *services.UserService
	tokens *auth.TokenIssuer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users *services.UserService, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

// Register creates a local account and returns it with an access token
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.CreateUser(c.Request().Context(), req.Email, req.Username, req.Password, req.Bio)
	if err != nil {
		return httpError(err)
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}
	return respond(c, http.StatusCreated, echo.Map{"user": user, "token": token})
}

// Login exchanges email and password for an access token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return respond(c, http.StatusOK, echo.Map{"user": user, "token": token})
}
