package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/devhyun/boardwatch/internal/db"
	routes "github.com/devhyun/boardwatch/internal/http"
	"github.com/devhyun/boardwatch/internal/keyword"
	"github.com/devhyun/boardwatch/internal/models"
	"github.com/devhyun/boardwatch/internal/ws"
)

const alarmDelay = 2 * time.Second

func main() {
	// Load .env first; in production the variables are set directly
	// and the file may not exist.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	// 1. Initialize Database
	database, err := db.Init()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 2. Run Migrations
	log.Println("Running database migrations...")
	if err := database.AutoMigrate(&models.Post{}, &models.Comment{}, &models.Keyword{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations complete.")

	// 3. Build the keyword watch cache. It is a snapshot for the
	// process lifetime; watch rows added later need a restart.
	log.Println("Initializing keyword cache...")
	cache, err := keyword.LoadCache(database)
	if err != nil {
		log.Fatalf("Failed to load keyword cache: %v", err)
	}
	log.Printf("Keyword cache ready (%d keywords).", len(cache))

	// 4. Initialize WebSocket Hub and the notifier that feeds it
	hub := ws.NewHub()
	go hub.Run()

	alarm := &keyword.AlarmService{Delay: alarmDelay, Hub: hub}
	notifier := keyword.NewNotifier(cache, alarm)

	// 5. Initialize Gin Router
	router := gin.New()
	routes.SetupRoutes(router, database, hub, notifier)

	// 6. Start Server with Graceful Shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
