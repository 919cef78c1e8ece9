package handler

import (
	"indrhi-inventory/internal/middleware"
	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Services bundles what the HTTP layer needs
type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Catalog   service.CatalogService
	Inventory service.InventoryService
	Lifecycle service.LifecycleService
	Receipts  service.ReceiptService
	Dashboard service.DashboardService

	UserRepo repository.UserRepository
}

// RegisterRoutes mounts the REST API under /api/v1
func RegisterRoutes(app *fiber.App, s Services) {
	authHandler := NewAuthHandler(s.Auth)
	userHandler := NewUserHandler(s.Users)
	catalogHandler := NewCatalogHandler(s.Catalog)
	invHandler := NewInventoryHandler(s.Inventory)
	reqHandler := NewRequestHandler(s.Lifecycle)
	receiptHandler := NewReceiptHandler(s.Receipts)
	dashHandler := NewDashboardHandler(s.Dashboard)

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/change-password", middleware.RequireAuth(s.UserRepo), authHandler.ChangePassword)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(s.UserRepo))
	can := middleware.RequireCapability

	// Dashboard
	protected.Get("/dashboard/stats", can(model.CapDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can(model.CapDashboardView), dashHandler.GetStockMovement)

	// Articles
	protected.Get("/articles", invHandler.GetArticles)
	protected.Get("/articles/code/:code/movements", can(model.CapArticleManage), invHandler.GetMovements)
	protected.Get("/articles/code/:code/reconcile", can(model.CapArticleManage), invHandler.Reconcile)
	protected.Get("/articles/:id", invHandler.GetArticle)
	protected.Post("/articles", can(model.CapArticleManage), invHandler.CreateArticle)
	protected.Put("/articles/:id", can(model.CapArticleManage), invHandler.UpdateArticle)
	protected.Delete("/articles/:id", can(model.CapArticleManage), invHandler.DeleteArticle)
	protected.Post("/articles/:id/adjust", can(model.CapArticleManage), invHandler.AdjustStock)

	// Departments and roles
	protected.Get("/departments", catalogHandler.GetDepartments)
	protected.Get("/departments/:id", catalogHandler.GetDepartment)
	protected.Post("/departments", can(model.CapCatalogManage), catalogHandler.CreateDepartment)
	protected.Put("/departments/:id", can(model.CapCatalogManage), catalogHandler.UpdateDepartment)
	protected.Delete("/departments/:id", can(model.CapCatalogManage), catalogHandler.DeleteDepartment)

	protected.Get("/roles", catalogHandler.GetRoles)
	protected.Get("/roles/capabilities", catalogHandler.GetCapabilities)
	protected.Post("/roles", can(model.CapCatalogManage), catalogHandler.CreateRole)
	protected.Put("/roles/:id", can(model.CapCatalogManage), catalogHandler.UpdateRole)
	protected.Delete("/roles/:id", can(model.CapCatalogManage), catalogHandler.DeleteRole)

	// Users
	users := protected.Group("/users", can(model.CapUserManage))
	users.Get("/", userHandler.GetUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Post("/", userHandler.CreateUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)

	// Supply requests; capabilities and department scope are checked by the lifecycle service
	protected.Get("/requests", reqHandler.GetRequests)
	protected.Post("/requests", reqHandler.CreateRequest)
	protected.Post("/requests/authorize", reqHandler.Authorize)
	protected.Post("/requests/dispatch", reqHandler.Dispatch)
	protected.Get("/requests/:id", reqHandler.GetRequest)
	protected.Put("/requests/:id", reqHandler.UpdateRequest)
	protected.Delete("/requests/:id", reqHandler.DeleteRequest)
	protected.Get("/requests/:id/history", reqHandler.GetHistory)
	protected.Get("/requests/:id/movements", reqHandler.GetMovements)
	protected.Post("/requests/:id/submit", reqHandler.Submit)
	protected.Get("/requests/:id/availability", reqHandler.Availability)
	protected.Post("/requests/:id/manage", reqHandler.Manage)

	// Merchandise receipts
	protected.Get("/receipts", receiptHandler.GetReceipts)
	protected.Get("/receipts/:id", receiptHandler.GetReceipt)
	protected.Post("/receipts", receiptHandler.CreateReceipt)
	protected.Put("/receipts/:id", receiptHandler.UpdateReceipt)
	protected.Delete("/receipts/:id", receiptHandler.DeleteReceipt)
}
