package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"menu_studio_app_go/config"
	"menu_studio_app_go/db"
	"menu_studio_app_go/handlers"
	"menu_studio_app_go/middleware"
	"menu_studio_app_go/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Exported PDFs go to R2 when configured, local disk otherwise
	services.InitializeStorage(cfg)

	// Headless Chrome for exports and layout inspection
	services.Browser = services.NewChromeRenderer(cfg.ChromePath)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	apiLimiter := middleware.NewAPIRateLimiter()
	defer apiLimiter.Stop()
	exportLimiter := middleware.NewExportRateLimiter(cfg)
	defer exportLimiter.Stop()

	// Menu documents
	e.GET("/menus/:id/preview", handlers.MenuPreviewHandler, middleware.PreviewCSP())
	e.GET("/menus/:id/export.pdf", handlers.ExportMenuPDFHandler, exportLimiter.Middleware())
	e.GET("/menus/:id/exports/:exportId", handlers.DownloadMenuExportHandler)

	// Editor API
	api := e.Group("/api")
	api.Use(apiLimiter.Middleware())
	{
		api.POST("/menus", handlers.CreateMenuHandler)
		api.GET("/menus/:id", handlers.GetMenuHandler)
		api.GET("/menus/:id/sections", handlers.GetMenuSectionsHandler)
		api.GET("/menus/:id/layout", handlers.InspectMenuLayoutHandler, exportLimiter.Middleware())
		api.POST("/menus/:id/layout", handlers.SaveMenuLayoutHandler)
		api.GET("/menus/:id/exports", handlers.GetMenuExportsHandler)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
