package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymkeyapp/gymkey-server/internal/api"
	"github.com/gymkeyapp/gymkey-server/internal/config"
	"github.com/gymkeyapp/gymkey-server/internal/docstore"
	"github.com/gymkeyapp/gymkey-server/internal/service"
	"github.com/gymkeyapp/gymkey-server/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	logger := utils.NewLogger()

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}
	defer db.Close()

	// Create document store
	docs := docstore.NewPostgresStore(db)

	// Create service
	svc := service.NewDefaultService(docs, cfg.Auth.JWTSecret, logger)
	defer svc.Close()

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	router := gin.Default()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
