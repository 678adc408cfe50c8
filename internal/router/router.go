package router

import (
	"github.com/gin-gonic/gin"

	"listora_publisher_v1/internal/controller"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	publishCtl *controller.PublishController,
	historyCtl *controller.HistoryController,
	connCtl *controller.ConnectionController) {

	api := r.Group("/api")
	{
		// publish 发布组
		publish := api.Group("/publish")
		{
			// POST /api/publish/ebay
			publish.POST("/ebay", publishCtl.PublishEbay)
			// POST /api/publish/amazon/template
			publish.POST("/amazon/template", publishCtl.GenerateAmazonTemplate)

			// GET /api/publish/history
			publish.GET("/history", historyCtl.GetEbayHistory)
			// GET /api/publish/templates
			publish.GET("/templates", historyCtl.GetTemplateFiles)
		}

		// 跨平台投影
		// GET /api/published
		api.GET("/published", historyCtl.GetPublishedProducts)

		// connection 连接组
		conns := api.Group("/connections")
		{
			// GET /api/connections
			conns.GET("", connCtl.GetConnections)
			// POST /api/connections
			conns.POST("", connCtl.CreateConnection)
		}
	}
}
