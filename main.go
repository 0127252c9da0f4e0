package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"seva-be/config"
	"seva-be/controllers"
	"seva-be/events"
	"seva-be/routes"
	"seva-be/services"
	"seva-be/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const defaultIssueRateLimit = 20

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	backend := selectBackend()

	if err := config.ConnectRedis(); err != nil {
		log.Println("Redis not available, issue rate limiting disabled:", err)
	} else {
		log.Println("Connected to Redis")
	}

	broadcaster := events.NewBroadcaster()
	svc := services.NewIssueService(backend, broadcaster)

	ic := controllers.NewIssueController(svc)
	sc := controllers.NewStreamController(broadcaster)
	ac := controllers.NewAuthController(backend)

	r := gin.Default()
	r.Use(cors.Default())

	routes.IssueRoutes(r, ic, sc, issueRateLimit())
	routes.AuthRoutes(r, ac)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	log.Printf("Seva server running on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// selectBackend probes MongoDB once at startup. On success issues are
// persisted with an in-memory fallback armed for mid-process
// connectivity loss; on failure the process runs entirely in-memory
// until restart.
func selectBackend() store.Backend {
	db, err := config.ConnectDB()
	if err != nil {
		log.Println("MongoDB not available, using in-memory storage for demo")
		log.Println("Error:", err)
		return store.NewMemoryStore()
	}

	log.Println("Connected to MongoDB")

	mongoStore := store.NewMongoStore(db, 10*time.Second)
	if err := mongoStore.EnsureIndexes(context.Background()); err != nil {
		log.Println("Failed to create indexes:", err)
	}
	return store.NewFallbackStore(mongoStore, store.NewMemoryStore())
}

func issueRateLimit() int {
	if raw := os.Getenv("ISSUE_RATE_LIMIT"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			return limit
		}
	}
	return defaultIssueRateLimit
}
