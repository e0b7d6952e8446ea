// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/cloudeats-backend/internal/domain/cart"
	"github.com/your-org/cloudeats-backend/internal/domain/order"
	"github.com/your-org/cloudeats-backend/internal/interfaces/http/handlers"
)

// SetupRoutes wires all API routes
func SetupRoutes(rg *gin.RouterGroup, cartStore *cart.Store, orderService *order.Service, mirror *order.Mirror) {
	SetupCartRoutes(rg, cartStore)
	SetupOrderRoutes(rg, orderService, mirror)
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, cartStore *cart.Store) {
	cartHandler := handlers.NewCartHandler(cartStore)

	carts := rg.Group("/cart")
	{
		carts.GET("/:userId", cartHandler.GetCart)
		carts.POST("/:userId/items", cartHandler.AddItem)
		carts.PUT("/:userId/items/:itemId", cartHandler.UpdateItem)
		carts.DELETE("/:userId/items/:itemId", cartHandler.RemoveItem)
		carts.DELETE("/:userId", cartHandler.ClearCart)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, orderService *order.Service, mirror *order.Mirror) {
	orderHandler := handlers.NewOrderHandler(orderService, mirror)

	orders := rg.Group("/orders")
	{
		orders.POST("", orderHandler.PlaceOrder)
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/user/:userId", orderHandler.ListUserOrders)
		orders.GET("/user/:userId/history", orderHandler.ListUserOrderHistory)
		orders.PUT("/:id/status", orderHandler.UpdateStatus)
		orders.DELETE("/:id", orderHandler.CancelOrder)
	}
}
