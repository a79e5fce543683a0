package controller

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/supermarket-pos/internal/model"
	"github.com/iyhunko/supermarket-pos/internal/service"
)

// StoreService is the set of store operations the handlers need.
type StoreService interface {
	ListProducts(ctx context.Context) ([]*model.Product, error)
	ProductImage(ctx context.Context, id int64) ([]byte, error)
	Purchase(ctx context.Context, productID int64, qty int) (*model.Sale, error)
	CreateProduct(ctx context.Context, password string, input service.ProductInput) (*model.Product, error)
	RecentSales(ctx context.Context, limit int) ([]*model.Sale, error)
}

// Controller handles general HTTP requests.
type Controller struct{}

// New creates a new Controller.
func New() *Controller {
	return &Controller{}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}
