package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/interfaces/http/handlers"
	"github.com/guardino-io/guardino/internal/interfaces/http/middleware"
)

// RouteConfig holds every handler and middleware the HTTP surface needs.
type RouteConfig struct {
	AuthHandler      *handlers.AuthHandler
	ResellerHandler  *handlers.ResellerHandler
	NodeHandler      *handlers.NodeHandler
	VPNUserHandler   *handlers.VPNUserHandler
	SubscribeHandler *handlers.SubscribeHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

// RegisterValidators installs the custom binding validators used by the
// request structs.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("paneltype", func(fl validator.FieldLevel) bool {
			return node.PanelType(fl.Field().String()).IsValid()
		})
	}
}

// SetupRoutes wires all route groups onto the engine.
func SetupRoutes(engine *gin.Engine, cfg *RouteConfig) {
	// Subscription fetches are authenticated by token alone; VPN clients
	// cannot carry a bearer header.
	engine.GET("/sub/:token", cfg.SubscribeHandler.Fetch)

	v1 := engine.Group("/api/v1")

	v1.POST("/auth/login", cfg.AuthHandler.Login)

	authed := v1.Group("")
	authed.Use(cfg.AuthMiddleware.RequireAuth())
	{
		authed.POST("/resellers", cfg.ResellerHandler.Create)
		authed.GET("/resellers", cfg.ResellerHandler.List)
		authed.POST("/resellers/:id/wallet", cfg.ResellerHandler.AdjustWallet)
		authed.GET("/ledger", cfg.ResellerHandler.LedgerHistory)

		authed.GET("/nodes", cfg.NodeHandler.List)

		authed.POST("/users", cfg.VPNUserHandler.Provision)
		authed.DELETE("/users/:username", cfg.VPNUserHandler.Delete)
	}

	admin := v1.Group("/nodes")
	admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireRoot())
	{
		admin.POST("", cfg.NodeHandler.Create)
		admin.PATCH("/:id", cfg.NodeHandler.UpdateStatus)
		admin.DELETE("/:id", cfg.NodeHandler.Delete)
		admin.POST("/:id/allocations", cfg.NodeHandler.Allocate)
		admin.DELETE("/:id/allocations/:reseller_id", cfg.NodeHandler.Deallocate)
	}
}
