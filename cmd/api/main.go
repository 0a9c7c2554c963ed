package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ss-lucnguyen/seller-inventory/services/auth"
	"github.com/ss-lucnguyen/seller-inventory/services/catalog"
	"github.com/ss-lucnguyen/seller-inventory/services/customer"
	"github.com/ss-lucnguyen/seller-inventory/services/invoice"
	"github.com/ss-lucnguyen/seller-inventory/services/order"
	"github.com/ss-lucnguyen/seller-inventory/services/report"
	"github.com/ss-lucnguyen/seller-inventory/services/store"
	"github.com/ss-lucnguyen/seller-inventory/shared/config"
	"github.com/ss-lucnguyen/seller-inventory/shared/middleware"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Redis backs the token session cache; the API degrades gracefully
	// to pure JWT validation without it.
	if err := utils.InitRedis(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, session cache disabled")
	}
	defer utils.CloseRedis()

	factory := repository.NewGormFactory(db)

	authSvc := auth.NewService(factory)
	storeSvc := store.NewService(factory)
	catalogSvc := catalog.NewService(factory)
	customerSvc := customer.NewService(factory)
	orderSvc := order.NewService(factory, customerSvc)
	invoiceSvc := invoice.NewService(factory)
	reportSvc := report.NewService(factory)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Seller inventory API is healthy", nil)
	})

	v1 := router.Group("/api/v1")
	auth.RegisterPublicRoutes(v1, authSvc)

	authed := v1.Group("")
	authed.Use(middleware.RequireAuth())
	{
		auth.RegisterRoutes(authed, authSvc)
		store.RegisterRoutes(authed, storeSvc)
		catalog.RegisterRoutes(authed, catalogSvc)
		customer.RegisterRoutes(authed, customerSvc)
		order.RegisterRoutes(authed, orderSvc)
		invoice.RegisterRoutes(authed, invoiceSvc)
		report.RegisterRoutes(authed, reportSvc)
	}

	port := config.ServerPort()
	logrus.WithField("port", port).Info("starting seller inventory API")
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
