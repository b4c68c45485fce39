package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"formwoz/internal/cache"
	"formwoz/internal/config"
	"formwoz/internal/repository"
	"formwoz/internal/schema"
	"formwoz/internal/service"
	"formwoz/internal/transport/rest"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using environment")
	}
	cfg := config.Load()
	ctx := context.Background()

	// Interview schema
	sch, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		log.Fatal("Failed to load schema:", err)
	}
	log.Printf("Loaded schema %q with %d questions", sch.Title, sch.Len())

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Repositories and caches
	sessionRepo := repository.NewSessionRepo(db)
	recordRepo := repository.NewRecordRepo(db)
	sessionCache := cache.NewSessionCache(rdb, cfg.SessionTTL)

	// Services
	interviewSvc := service.NewInterviewService(sch, sessionRepo, recordRepo, sessionCache, nil)

	router := rest.NewRouter(&rest.Container{
		InterviewService: interviewSvc,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/rooms")
		log.Println("  POST /v1/rooms/{code}/messages")
		log.Println("  GET  /v1/rooms/{code}/status")
		log.Println("  GET  /v1/rooms/{code}/transcript")
		log.Println("  POST /v1/rooms/{code}/edits")
		log.Println("  POST /v1/rooms/{code}/edits/confirm")
		log.Println("  GET  /v1/records/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
