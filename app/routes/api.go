package routes

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/controllers"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
	"github.com/shashiranjanraj/vyapar/pkg/middleware"
	"github.com/shashiranjanraj/vyapar/pkg/router"
)

// RegisterAPI wires every endpoint. Three tiers: public, authenticated, and
// admin (authenticated plus role check).
func RegisterAPI(r *router.Router, db *gorm.DB) {
	authController := controllers.NewAuthController(db)
	productController := controllers.NewProductController(db)
	orderController := controllers.NewOrderController(db)

	api := r.Group("/api")

	// Public.
	api.Post("/register", "auth.register", authController.Register)
	api.Post("/login", "auth.login", authController.Login)

	api.Get("/products", "products.list", productController.List)
	api.Get("/products/search", "products.search", productController.Search)
	api.Post("/products/by-category", "products.by_category", productController.ByCategory)
	api.Get("/products/{id}", "products.get", productController.Get)

	// Authenticated.
	protected := api.Group("", middleware.Auth)
	protected.Get("/me", "auth.me", authController.Me)
	protected.Post("/change-password", "auth.change_password", authController.ChangePassword)
	protected.Put("/address", "auth.address", authController.UpdateAddress)

	protected.Post("/orders", "orders.create", orderController.Create)
	protected.Get("/orders", "orders.list", orderController.List)

	// Admin.
	admin := api.Group("", middleware.Auth, middleware.RequireRole(auth.RoleAdmin))
	admin.Post("/products", "products.upload", productController.Upload)
	admin.Put("/products/{id}", "products.update", productController.Update)
	admin.Delete("/products/{id}", "products.delete", productController.Delete)

	admin.Get("/orders/all", "orders.list_all", orderController.ListAll)
	admin.Patch("/orders/{id}/status", "orders.update_status", orderController.UpdateStatus)
	admin.Delete("/orders/{id}", "orders.delete", orderController.Delete)
	admin.Delete("/order-items/{id}", "orders.delete_item", orderController.DeleteItem)

	admin.Patch("/accounts/{id}/role", "accounts.update_role", authController.UpdateRole)
	admin.Delete("/accounts/{id}", "accounts.delete", authController.Delete)
}
