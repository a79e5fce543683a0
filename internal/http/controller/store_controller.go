package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/supermarket-pos/internal/http/view"
	"github.com/iyhunko/supermarket-pos/internal/repository"
	"github.com/iyhunko/supermarket-pos/internal/service"
)

const imageContentType = "image/jpeg"

// Customer-facing messages.
const (
	MsgInsufficientQuantity = "Insufficient quantity"
	MsgInvalidQuantity      = "Quantity must be a positive whole number"
	MsgPurchaseFailed       = "Purchase failed, please try again"
	MsgCatalogUnavailable   = "The catalog is unavailable right now"
)

// StoreController serves the catalog, product images and purchases.
type StoreController struct {
	store     StoreService
	flash     *Flash
	storeName string
}

// NewStoreController creates a new StoreController.
func NewStoreController(store StoreService, flash *Flash, storeName string) *StoreController {
	return &StoreController{
		store:     store,
		flash:     flash,
		storeName: storeName,
	}
}

// Catalog handles GET / and renders every product.
func (sc *StoreController) Catalog(c *gin.Context) {
	flashes := sc.flash.Pop(c)
	status := http.StatusOK

	products, err := sc.store.ListProducts(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list products", slog.Any("err", err))
		flashes = append(flashes, MsgCatalogUnavailable)
		status = http.StatusInternalServerError
	}

	c.HTML(status, view.CatalogPage, gin.H{
		"Store":    sc.storeName,
		"Products": products,
		"Flashes":  flashes,
	})
}

// Image handles GET /image/:id. Unknown products, products without image and
// malformed ids all get an empty body.
func (sc *StoreController) Image(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Data(http.StatusOK, imageContentType, nil)
		return
	}

	image, err := sc.store.ProductImage(c.Request.Context(), id)
	if err != nil {
		slog.Error("Failed to load product image", slog.Int64("product_id", id), slog.Any("err", err))
		image = nil
	}

	c.Data(http.StatusOK, imageContentType, image)
}

// Buy handles POST /buy and always redirects back to the catalog.
func (sc *StoreController) Buy(c *gin.Context) {
	defer c.Redirect(http.StatusFound, "/")

	productID, err := strconv.ParseInt(c.PostForm("id"), 10, 64)
	if err != nil {
		return
	}

	qty, err := strconv.Atoi(c.PostForm("qty"))
	if err != nil {
		sc.flash.Add(c, MsgInvalidQuantity)
		return
	}

	sale, err := sc.store.Purchase(c.Request.Context(), productID, qty)
	switch {
	case err == nil:
		sc.flash.Add(c, fmt.Sprintf("Purchase completed. Total: %s", sale.Total.StringFixed(2)))
	case errors.Is(err, repository.ErrNotFound):
	case errors.Is(err, repository.ErrInsufficientStock):
		sc.flash.Add(c, MsgInsufficientQuantity)
	case errors.Is(err, service.ErrInvalidQuantity):
		sc.flash.Add(c, MsgInvalidQuantity)
	default:
		sc.flash.Add(c, MsgPurchaseFailed)
	}
}
