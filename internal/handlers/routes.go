package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the API handlers mounted by RegisterRoutes
type Handlers struct {
	Products  *ProductsHandler
	Import    *ImportHandler
	Orders    *OrdersHandler
	Documents *DocumentHandler
	Assistant *AssistantHandler
	Auth      *AuthHandler
}

// RegisterRoutes mounts the public storefront routes and the admin routes
// behind adminAuth on api
func RegisterRoutes(api *gin.RouterGroup, h Handlers, adminAuth gin.HandlerFunc) {
	products := api.Group("/products")
	{
		products.GET("", h.Products.GetProducts)
		products.GET("/:id", h.Products.GetProduct)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", h.Orders.SubmitOrder)
		orders.GET("/:id/receipt", h.Documents.GetOrderReceipt)
	}

	chat := api.Group("/assistant")
	{
		chat.POST("/chat", h.Assistant.Chat)
		chat.DELETE("/sessions/:id", h.Assistant.EndSession)
	}

	api.POST("/admin/login", h.Auth.Login)

	admin := api.Group("/admin", adminAuth)
	{
		admin.POST("/products", h.Products.CreateProduct)
		admin.PUT("/products/:id", h.Products.UpdateProduct)
		admin.DELETE("/products/:id", h.Products.DeleteProduct)
		admin.POST("/products/reset", h.Products.ResetProducts)
		admin.POST("/products/import", h.Import.ImportProducts)
		admin.GET("/products/import/template", h.Import.GetImportTemplate)
		admin.GET("/products/export", h.Import.ExportProducts)

		admin.GET("/orders", h.Orders.GetOrders)
		admin.PUT("/orders/:id/status", h.Orders.UpdateOrderStatus)
		admin.POST("/orders/flush", h.Orders.FlushOrders)

		admin.POST("/images", h.Documents.UploadProductImage)
	}
}
