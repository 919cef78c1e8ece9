package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"indrhi-inventory/internal/handler"
	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/internal/service"
	"indrhi-inventory/internal/ws"
	"indrhi-inventory/pkg/config"
	"indrhi-inventory/pkg/database"
	"indrhi-inventory/pkg/jwt"
	"indrhi-inventory/pkg/lock"
	applog "indrhi-inventory/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	// 1. Load config
	cfg := config.Load()
	log := applog.Init(cfg.LogLevel)
	jwt.SetSecret(cfg.JWTSecret)

	// 2. Setup Database
	db := database.ConnectDB(cfg)
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 3. Seed default roles and admin user
	seedRolesAndAdmin(db, log)

	// 4. Numbering lock: Redis when configured, in-process otherwise
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisAddress != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := lock.ConnectRedis(ctx, cfg.RedisAddress)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.RedisAddress, err)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb)
		log.WithField("address", cfg.RedisAddress).Info("Using Redis numbering locks")
	}

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 6. Dependency Injection (Wiring Layers)
	repos := repository.NewRepositories(db)
	services := handler.Services{
		Auth:      service.NewAuthService(repos.Users),
		Users:     service.NewUserService(repos),
		Catalog:   service.NewCatalogService(repos),
		Inventory: service.NewInventoryService(db, repos, wsHub),
		Lifecycle: service.NewLifecycleService(db, repos, locker, wsHub),
		Receipts:  service.NewReceiptService(db, repos, locker, wsHub),
		Dashboard: service.NewDashboardService(repos.Movements),
		UserRepo:  repos.Users,
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	handler.RegisterRoutes(app, services)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Info("Server exited")
}

// seedRolesAndAdmin creates the default roles and an ADMIN user if they don't exist
func seedRolesAndAdmin(db *gorm.DB, log *logrus.Logger) {
	ctx := context.Background()
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := roleRepo.SeedDefaults(ctx); err != nil {
		log.Warnf("Failed to seed roles: %v", err)
	}

	_, err := userRepo.FindByUsername(ctx, "admin")
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnf("Failed to look up admin user: %v", err)
		return
	}

	adminRole, err := roleRepo.FindByCode(ctx, model.RoleAdmin)
	if err != nil {
		log.Warnf("Failed to find ADMIN role: %v", err)
		return
	}

	admin := &model.User{
		Username:     "admin",
		Email:        "admin@indrhi.gob.do",
		FullName:     "Administrador del Sistema",
		RoleID:       &adminRole.ID,
		IsActive:     true,
		TokenVersion: uuid.NewString(),
	}
	admin.CreatedBy = service.SystemActor.Label()
	admin.UpdatedBy = service.SystemActor.Label()

	if err := admin.SetPassword("admin123"); err != nil {
		log.Warnf("Failed to hash admin password: %v", err)
		return
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Warnf("Failed to create admin user: %v", err)
		return
	}
	log.Info("Admin user created: admin / admin123 (ADMIN)")
}
