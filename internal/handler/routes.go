package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *HealthHandler
	Izipay  *IzipayConfigHandler
	Shopify *ShopifyConfigHandler
	Metrics http.Handler
}

// RegisterRoutes registers all routes. auth guards configuration CRUD;
// probeLimit throttles the connectivity probes.
func RegisterRoutes(router *gin.Engine, h *Handlers, auth, probeLimit gin.HandlerFunc) {
	router.GET("/health", h.Health.GetHealth)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	// Izipay routes
	izipay := router.Group("/izipay/api/config")
	{
		izipay.GET("/active_config/", h.Izipay.ActiveConfig)
		izipay.GET("/script_info/", h.Izipay.ScriptInfo)
		izipay.GET("/checkout_config/", h.Izipay.CheckoutConfig)
		izipay.POST("/test_connectivity/", probeLimit, h.Izipay.TestConnectivity)

		izipay.GET("/", auth, h.Izipay.List)
		izipay.POST("/", auth, h.Izipay.Create)
		izipay.GET("/:id/", auth, h.Izipay.Retrieve)
		izipay.PUT("/:id/", auth, h.Izipay.Update)
		izipay.PATCH("/:id/", auth, h.Izipay.PartialUpdate)
		izipay.DELETE("/:id/", auth, h.Izipay.Delete)
	}

	// Shopify routes
	shopify := router.Group("/shopify/api/config")
	{
		shopify.GET("/active_config/", h.Shopify.ActiveConfig)
		shopify.POST("/test_connectivity/", probeLimit, h.Shopify.TestConnectivity)

		shopify.GET("/", auth, h.Shopify.List)
		shopify.POST("/", auth, h.Shopify.Create)
		shopify.GET("/:id/", auth, h.Shopify.Retrieve)
		shopify.PUT("/:id/", auth, h.Shopify.Update)
		shopify.PATCH("/:id/", auth, h.Shopify.PartialUpdate)
		shopify.DELETE("/:id/", auth, h.Shopify.Delete)
	}
}
