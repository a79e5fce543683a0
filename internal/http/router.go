package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/supermarket-pos/internal/config"
	"github.com/iyhunko/supermarket-pos/internal/http/controller"
	"github.com/iyhunko/supermarket-pos/internal/http/middleware"
	"github.com/iyhunko/supermarket-pos/internal/http/view"
)

func InitRouter(_ *config.Config, server *gin.Engine, ctr *controller.Controller, storeCtr *controller.StoreController, adminCtr *controller.AdminController) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery(), middleware.Logger())

	server.MaxMultipartMemory = controller.MaxImageSize
	server.SetHTMLTemplate(view.Templates())

	server.GET("/ping", ctr.Ping)

	// Customer pages
	server.GET("/", storeCtr.Catalog)
	server.GET("/image/:id", storeCtr.Image)
	server.POST("/buy", storeCtr.Buy)

	// Admin pages
	admin := server.Group("/admin")
	{
		admin.GET("", adminCtr.Show)
		admin.POST("", adminCtr.Create)
	}

	return server
}
