package main

import (
	"log"
	"net/http"

	"scene-index-service/api"
	"scene-index-service/cache"
	"scene-index-service/config"
	"scene-index-service/database"
	"scene-index-service/migration"
)

func main() {
	// Initialize configuration
	config.InitConfig()

	// Apply the scene catalog schema
	if err := migration.RunMigrations(); err != nil {
		log.Fatal(err)
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal(err)
	}

	// Initialize Redis
	if err := cache.InitRedis(); err != nil {
		log.Fatal(err)
	}

	// Rebuild every scene's in-memory index from the catalog
	if err := api.RestoreScenes(); err != nil {
		log.Fatal(err)
	}

	// Register routes
	router := api.RegisterRoutes()

	// Start the server
	log.Printf("Server started on %s", config.Cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(config.Cfg.Server.Addr, router))
}
