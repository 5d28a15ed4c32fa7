package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"netcode-backend/internal/api"
	"netcode-backend/internal/auth"
	"netcode-backend/internal/database"
	"netcode-backend/internal/orchestrator"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	dbPath := envOrDefault("NETCODE_DB_PATH", "./netcode.db")
	log.Printf("Initializing database at %s", dbPath)
	if err := database.Open(database.Config{Path: dbPath}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	userRepo := database.NewUserRepo()
	sessionRepo := database.NewSessionRepo()
	versionRepo := database.NewVersionRepo()

	authSvc := auth.NewService(userRepo, sessionRepo)
	shell := orchestrator.NewClient(orchestrator.Config{
		BaseURL: envOrDefault("NETCODE_SHELL_URL", "http://127.0.0.1:8600"),
	})

	// Expired rows never authenticate; this just keeps the table small
	go sessionJanitor(sessionRepo)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{envOrDefault("NETCODE_CORS_ORIGIN", "http://localhost:3000")},
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// API routes
	apiGroup := e.Group("/api")
	api.RegisterRoutes(apiGroup, &api.Handlers{
		Auth:     authSvc,
		Versions: versionRepo,
		Shell:    shell,
		Limiter:  auth.DefaultRateLimiter(),
	})

	port := envOrDefault("NETCODE_PORT", "8080")
	log.Printf("Starting netcode backend on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}

// sessionJanitor periodically removes sessions past their deadline
func sessionJanitor(sessions *database.SessionRepo) {
	ticker := time.NewTicker(time.Hour)
	for range ticker.C {
		n, err := sessions.DeleteExpired()
		if err != nil {
			log.Printf("session cleanup failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("removed %d expired sessions", n)
		}
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
