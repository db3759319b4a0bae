package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/trangpham2601/group-task-manager/internal/cache"
	"github.com/trangpham2601/group-task-manager/internal/events"
	"github.com/trangpham2601/group-task-manager/internal/handlers"
	"github.com/trangpham2601/group-task-manager/internal/handlers/ws"
	"github.com/trangpham2601/group-task-manager/internal/middleware"
	"github.com/trangpham2601/group-task-manager/internal/notify"
	"github.com/trangpham2601/group-task-manager/internal/repository"
	"github.com/trangpham2601/group-task-manager/internal/service"
	"github.com/trangpham2601/group-task-manager/internal/unread"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Group Task Manager Backend",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-GTM-CSRF",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	unreadCache := cache.NewUnreadCache(redisCache)

	// Change signals ride Redis pub/sub when available so they reach
	// every backend instance; without Redis they stay in-process.
	var bus events.Bus
	if redisCache != nil {
		bus = events.NewRedisBus(redisCache)
	} else {
		log.Println("WARNING: using in-process event bus; change signals will not cross instances")
		bus = events.NewMemoryBus()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	readRepo := repository.NewReadPositionRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Unread counter mode: "recompute" rescans the message log per read,
	// "materialized" keeps live Redis counters with recompute fallback.
	recompute := unread.NewRecomputeCounter(messageRepo, readRepo, unreadCache)
	var counter unread.Counter = recompute
	var materialized *unread.MaterializedCounter
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("UNREAD_COUNTER_MODE")))
	if mode == "materialized" && redisCache != nil {
		materialized = unread.NewMaterializedCounter(redisCache, recompute)
		counter = materialized
		log.Println("Unread counter mode: materialized")
	} else {
		if mode == "materialized" {
			log.Println("WARNING: materialized counter requested without Redis; falling back to recompute")
		}
		log.Println("Unread counter mode: recompute")
	}

	badge := unread.NewBadge(groupRepo, counter)
	watcher := unread.NewWatcher(groupRepo, counter, bus)
	fanout := notify.NewFanout(groupRepo, notifRepo, bus)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	groupService := service.NewGroupService(groupRepo, readRepo, bus)
	chatService := service.NewChatService(
		messageRepo, groupRepo, readRepo, notifRepo, userRepo,
		fanout, counter, badge, materialized, unreadCache, bus,
	)

	// Initialize handlers
	hub := ws.NewHub()
	authHandler := handlers.NewAuthHandler(authService)
	groupHandler := handlers.NewGroupHandler(groupService, chatService)
	chatHandler := handlers.NewChatHandler(chatService)
	wsHandler := handlers.NewWebSocketHandler(hub, chatService, watcher, userRepo, notifRepo, bus)

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed())
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired(), middleware.CSRFRequired())
	protected.Put("/me/notifications", authHandler.UpdateNotificationSettings)
	protected.Get("/me/unread", chatHandler.TotalUnread)
	protected.Get("/me/notifications", chatHandler.Notifications)

	// Group routes
	protected.Post("/groups", groupHandler.Create)
	protected.Get("/groups", groupHandler.List)
	protected.Get("/groups/:id", groupHandler.Get)
	protected.Post("/groups/:id/join", groupHandler.Join)
	protected.Post("/groups/:id/leave", groupHandler.Leave)
	protected.Get("/groups/:id/members", groupHandler.Members)
	protected.Get("/groups/:id/messages", chatHandler.History)
	protected.Post("/groups/:id/messages", chatHandler.Send)
	protected.Post("/groups/:id/read", chatHandler.MarkRead)
	protected.Get("/groups/:id/read-state", chatHandler.ReadState)
	protected.Get("/groups/:id/unread", chatHandler.Unread)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		wsHandler.UpgradeRequired(),
	)
	app.Get("/ws", wsHandler.Handle())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Group Task Manager is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
