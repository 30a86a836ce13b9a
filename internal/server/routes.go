package server

import (
	"github.com/labstack/echo/v4"

	"example.com/bill-reminder/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	billHandler *handlers.BillHandler,
	statsHandler *handlers.StatsHandler,
	notificationHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler,
	authMiddleware echo.MiddlewareFunc,
	adminMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)
	e.File("/notification-worker.js", "web/notification-worker.js")

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	bills := api.Group("/bills", authMiddleware)
	bills.GET("", billHandler.List)
	bills.POST("", billHandler.Create)
	bills.GET("/export/json", billHandler.ExportJSON)
	bills.GET("/export/csv", billHandler.ExportCSV)
	bills.PATCH("/:id/paid", billHandler.TogglePaid)
	bills.DELETE("/:id", billHandler.Delete)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)
	notifications.GET("/history", notificationHandler.History)
	notifications.GET("/permission", notificationHandler.GetPermission)
	notifications.POST("/permission", notificationHandler.SetPermission)
	notifications.POST("/clicked", notificationHandler.Clicked)
	notifications.POST("/foreground", notificationHandler.Foreground)
	notifications.POST("/clear", notificationHandler.Clear)

	stats := api.Group("/stats", authMiddleware)
	stats.GET("/overview", statsHandler.Overview)

	admin := api.Group("/admin", authMiddleware, adminMiddleware)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/usage", adminHandler.Usage)
}
