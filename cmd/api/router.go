package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library-api/internal/shared/middleware"
	"library-api/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(c.Config.App.CORSOrigins),
	)

	auth := middleware.AuthMiddleware(c.JWTManager, c.TokenStore)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c, auth)

		// Mọi resource route đều cần bearer token
		protected := v1.Group("", auth)
		setupUserRoutes(protected, c)
		setupAuthorRoutes(protected, c)
		setupBookRoutes(protected, c)
		setupExportRoutes(protected, c)
		setupMaintenanceRoutes(protected, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	group := v1.Group("/auth")
	{
		group.POST("/register", c.UserHandler.Register)
		group.POST("/login", c.UserHandler.Login)

		group.GET("/me", auth, c.UserHandler.Me)
		group.POST("/logout", auth, c.UserHandler.Logout)
		group.POST("/refresh", auth, c.UserHandler.Refresh)
	}
}

func setupUserRoutes(r *gin.RouterGroup, c *container.Container) {
	users := r.Group("/users")
	{
		users.GET("", c.UserHandler.ListUsers)
		users.POST("", c.UserHandler.CreateUser)
		users.GET("/:id", c.UserHandler.GetUser)
		users.PUT("/:id", c.UserHandler.UpdateUser)
		users.PATCH("/:id", c.UserHandler.UpdateUser)
		users.DELETE("/:id", c.UserHandler.DeleteUser)
	}
}

// ========================================
// CATALOG ROUTES
// ========================================
func setupAuthorRoutes(r *gin.RouterGroup, c *container.Container) {
	authors := r.Group("/authors")
	{
		authors.GET("", c.AuthorHandler.List)
		authors.POST("", c.AuthorHandler.Create)
		authors.GET("/:id", c.AuthorHandler.GetByID)
		authors.PUT("/:id", c.AuthorHandler.Update)
		authors.PATCH("/:id", c.AuthorHandler.Update)
		authors.DELETE("/:id", c.AuthorHandler.Delete)
	}
}

func setupBookRoutes(r *gin.RouterGroup, c *container.Container) {
	books := r.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.POST("", c.BookHandler.CreateBook)
		books.GET("/:id", c.BookHandler.GetBookDetail)
		books.PUT("/:id", c.BookHandler.UpdateBook)
		books.PATCH("/:id", c.BookHandler.UpdateBook)
		books.DELETE("/:id", c.BookHandler.DeleteBook)
	}
}

func setupExportRoutes(r *gin.RouterGroup, c *container.Container) {
	r.GET("/export/xlsx", c.ExportHandler.ExportXLSX)
}

func setupMaintenanceRoutes(r *gin.RouterGroup, c *container.Container) {
	maintenance := r.Group("/maintenance")
	{
		maintenance.POST("/book-counts/reconcile", c.ReconcileHandler.Reconcile)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
		} else if err := appCtx.DB.Ping(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
		}

		// Redis không critical: chỉ báo degraded
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = fmt.Sprintf("error: %v", err)
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			health["status"] = "down"
			statusCode = http.StatusServiceUnavailable
		} else if redisStatus != "ok" {
			health["status"] = "degraded"
		}

		c.JSON(statusCode, health)
	}
}
