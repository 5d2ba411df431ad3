package route

import (
	"time"

	"goldshop/internal/config"
	httpHandler "goldshop/internal/delivery/http/handler"
	"goldshop/internal/delivery/http/middleware"
	"goldshop/internal/media"
	repo "goldshop/internal/repository/sqlite"
	"goldshop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func SetupRoute(app *gin.Engine, db *repo.Database, cfg *config.Config, log zerolog.Logger) {
	// --- repositories ---
	productRepo := repo.NewProductRepository(db)
	baseRepo := repo.NewBaseRepository(db)
	activityRepo := repo.NewActivityRepository(db)

	// --- services ---
	store := media.NewStore(cfg.ImagesDir(), cfg.ThumbsDir(), log)
	authService := service.NewAuthService(
		cfg.Operator.Username, cfg.Operator.PasswordHash,
		cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour,
	)
	productService := service.NewProductService(productRepo, baseRepo, store, cfg.CodePrefix, cfg.SearchLimit, log)
	saleService := service.NewSaleService(productRepo, activityRepo, store, cfg.SoldDir(), log)
	inventoryService := service.NewInventoryService(productRepo, cfg.SoldDir(), log)
	exportService := service.NewExportService(productRepo, cfg.ExportsDir(), log)
	backupService := service.NewBackupService(db, productRepo, cfg.ImagesDir(), cfg.ThumbsDir(), cfg.BackupsDir(), log)

	// --- handlers ---
	authHandler := httpHandler.NewAuthHandler(authService)
	productHandler := httpHandler.NewProductHandler(productService)
	categoryHandler := httpHandler.NewCategoryHandler(productService, inventoryService)
	saleHandler := httpHandler.NewSaleHandler(saleService)
	inventoryHandler := httpHandler.NewInventoryHandler(inventoryService)
	maintenanceHandler := httpHandler.NewMaintenanceHandler(exportService, backupService, saleService, cfg.PurgeMonths)

	// stored photos are served straight from the data directory
	app.Static("/images", cfg.ImagesDir())
	app.Static("/thumbs", cfg.ThumbsDir())

	api := app.Group("/api")
	authed := middleware.AuthRequired(authService.Secret())

	// --- authentication ---
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)

	// --- products ---
	products := api.Group("/products")
	products.GET("", productHandler.ListProducts)
	products.GET("/:id", productHandler.GetProduct)
	products.GET("/code/:code", productHandler.GetProductByCode)
	products.POST("", authed, productHandler.CreateProduct)
	products.POST("/batch", authed, productHandler.CreateBatch)
	products.PUT("/:id", authed, productHandler.UpdateProduct)
	products.DELETE("/:id", authed, productHandler.DeleteProduct)
	products.POST("/:id/sell", authed, saleHandler.Sell)
	products.POST("/:id/restore", authed, saleHandler.RestoreProduct)
	api.POST("/uploads", authed, productHandler.UploadImage)

	// --- categories & bases ---
	categories := api.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:category/bases", categoryHandler.ListBases)
	categories.GET("/:category/bases/:base", categoryHandler.GetBase)
	categories.GET("/:category/bases/:base/products", categoryHandler.ListBaseProducts)
	categories.POST("/:category/bases/:base/image", authed, categoryHandler.SetBaseImage)

	// --- sales ---
	api.GET("/sold", saleHandler.ListSold)
	api.GET("/invoices/suggested", saleHandler.SuggestedInvoice)
	api.POST("/invoices/:invoice/restore", authed, saleHandler.RestoreInvoice)

	// --- inventory ---
	api.GET("/inventory/weight", inventoryHandler.Weight)
	api.GET("/stats", inventoryHandler.Stats)

	// --- maintenance ---
	maintenance := api.Group("/maintenance", authed)
	maintenance.GET("/export/csv", maintenanceHandler.ExportCSV)
	maintenance.GET("/backup", maintenanceHandler.Backup)
	maintenance.POST("/restore", maintenanceHandler.Restore)
	maintenance.POST("/purge", maintenanceHandler.Purge)
	maintenance.POST("/wipe", maintenanceHandler.Wipe)
}
