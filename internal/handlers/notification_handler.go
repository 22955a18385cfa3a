package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/recent", h.GetRecent)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.POST("/notifications/:id/read", h.MarkAsRead)
	g.POST("/notifications/read-all", h.MarkAllAsRead)
}

func notificationViews(notifications []models.Notification) []models.NotificationView {
	out := make([]models.NotificationView, len(notifications))
	for i := range notifications {
		out[i] = notifications[i].View()
	}
	return out
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	page := parsePagination(c)

	list, total, err := h.notifications.List(c.Request().Context(), p.UserID, page.Offset(), page.Limit)
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, notificationViews(list), page, total)
}

// GetRecent returns the newest few notifications
func (h *NotificationHandler) GetRecent(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.notifications.Recent(c.Request().Context(), p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, notificationViews(list))
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.Request().Context(), p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"unread_count": count})
}

// MarkAsRead flags one of the requester's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), p, id); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

// MarkAllAsRead flags all of the requester's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	updated, err := h.notifications.MarkAllRead(c.Request().Context(), p.UserID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "All notifications marked as read", "updated": updated})
}
