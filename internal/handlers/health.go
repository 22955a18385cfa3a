package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HealthCheck reports whether the database answers a ping.
func HealthCheck(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, code := "healthy", http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		return c.JSON(code, map[string]string{
			"status":  status,
			"service": "socialgraph-api",
		})
	}
}
