package controller

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/supermarket-pos/internal/http/view"
	"github.com/iyhunko/supermarket-pos/internal/model"
	"github.com/iyhunko/supermarket-pos/internal/repository"
	"github.com/iyhunko/supermarket-pos/internal/service"
)

// MaxImageSize bounds uploaded product images.
const MaxImageSize = 5 << 20

// Admin messages.
const (
	MsgWrongPassword    = "Wrong password"
	MsgDuplicateName    = "A product with this name already exists"
	MsgInvalidProduct   = "Invalid product"
	MsgInvalidImage     = "The uploaded image could not be used"
	MsgCreateFailed     = "Could not add the product, please try again"
	MsgAdminUnavailable = "Store data is unavailable right now"
)

// AdminController serves the password-gated product form.
type AdminController struct {
	store            StoreService
	flash            *Flash
	storeName        string
	recentSalesLimit int
}

// NewAdminController creates a new AdminController.
func NewAdminController(store StoreService, flash *Flash, storeName string, recentSalesLimit int) *AdminController {
	return &AdminController{
		store:            store,
		flash:            flash,
		storeName:        storeName,
		recentSalesLimit: recentSalesLimit,
	}
}

// Show handles GET /admin: the form, the product list and the latest sales.
func (ac *AdminController) Show(c *gin.Context) {
	ctx := c.Request.Context()
	flashes := ac.flash.Pop(c)
	status := http.StatusOK

	products, err := ac.store.ListProducts(ctx)
	if err != nil {
		slog.Error("Failed to list products", slog.Any("err", err))
		status = http.StatusInternalServerError
	}

	var sales []*model.Sale
	if err == nil {
		if sales, err = ac.store.RecentSales(ctx, ac.recentSalesLimit); err != nil {
			slog.Error("Failed to list recent sales", slog.Any("err", err))
			status = http.StatusInternalServerError
		}
	}

	if status != http.StatusOK {
		flashes = append(flashes, MsgAdminUnavailable)
	}

	c.HTML(status, view.AdminPage, gin.H{
		"Store":    ac.storeName,
		"Products": products,
		"Sales":    sales,
		"Flashes":  flashes,
	})
}

// Create handles POST /admin and always redirects back to the admin page.
func (ac *AdminController) Create(c *gin.Context) {
	defer c.Redirect(http.StatusFound, "/admin")

	image, imageErr := readImage(c)
	input, parseErr := service.ParseProductInput(
		c.PostForm("name"), c.PostForm("price"), c.PostForm("stock"), c.PostForm("discount"), image,
	)
	if imageErr != nil {
		// the zero input fails validation, so only the password is checked
		input = service.ProductInput{}
	}

	// an unusable form still goes through the password check first
	product, createErr := ac.store.CreateProduct(c.Request.Context(), c.PostForm("password"), input)
	var uniqueErr *repository.UniqueConstraintError
	switch {
	case errors.Is(createErr, service.ErrWrongPassword):
		ac.flash.Add(c, MsgWrongPassword)
	case imageErr != nil:
		slog.Warn("Rejected product image", slog.Any("err", imageErr))
		ac.flash.Add(c, MsgInvalidImage)
	case parseErr != nil:
		ac.flash.Add(c, fmt.Sprintf("%s: %v", MsgInvalidProduct, parseErr))
	case createErr == nil:
		ac.flash.Add(c, fmt.Sprintf("Product %q added", product.Name))
	case errors.As(createErr, &uniqueErr):
		ac.flash.Add(c, MsgDuplicateName)
	case errors.Is(createErr, service.ErrInvalidProduct):
		ac.flash.Add(c, fmt.Sprintf("%s: %v", MsgInvalidProduct, createErr))
	default:
		ac.flash.Add(c, MsgCreateFailed)
	}
}

// readImage returns the uploaded image bytes, or nil when no file was sent.
func readImage(c *gin.Context) ([]byte, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	if fileHeader.Size > MaxImageSize {
		return nil, fmt.Errorf("image %q is %d bytes", fileHeader.Filename, fileHeader.Size)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, MaxImageSize))
}
