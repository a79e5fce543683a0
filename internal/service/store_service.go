package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/iyhunko/supermarket-pos/internal/metrics"
	"github.com/iyhunko/supermarket-pos/internal/model"
	"github.com/iyhunko/supermarket-pos/internal/repository"
	reposql "github.com/iyhunko/supermarket-pos/internal/repository/sql"
	"github.com/iyhunko/supermarket-pos/internal/sqs"
	"github.com/shopspring/decimal"
)

var (
	// ErrWrongPassword is returned when the admin password does not match.
	ErrWrongPassword = errors.New("wrong admin password")
	// ErrInvalidQuantity is returned when a purchase quantity is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrInvalidProduct is returned when the admin form carries unusable values.
	ErrInvalidProduct = errors.New("invalid product")
)

var maxDiscount = decimal.NewFromInt(100)

// ProductInput holds the values of the admin form.
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	Discount decimal.Decimal
	Image    []byte
}

// ParseProductInput converts raw form values. An empty discount means no discount.
func ParseProductInput(name, price, stock, discount string, image []byte) (ProductInput, error) {
	input := ProductInput{Name: strings.TrimSpace(name), Image: image}

	var err error
	if input.Price, err = decimal.NewFromString(strings.TrimSpace(price)); err != nil {
		return ProductInput{}, fmt.Errorf("%w: price %q", ErrInvalidProduct, price)
	}
	if input.Stock, err = strconv.Atoi(strings.TrimSpace(stock)); err != nil {
		return ProductInput{}, fmt.Errorf("%w: stock %q", ErrInvalidProduct, stock)
	}
	if discount = strings.TrimSpace(discount); discount != "" {
		if input.Discount, err = decimal.NewFromString(discount); err != nil {
			return ProductInput{}, fmt.Errorf("%w: discount %q", ErrInvalidProduct, discount)
		}
	}

	if err := input.validate(); err != nil {
		return ProductInput{}, err
	}
	return input, nil
}

func (in ProductInput) validate() error {
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case in.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	case in.Discount.IsNegative() || in.Discount.GreaterThan(maxDiscount):
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidProduct)
	case !fitsMoneyScale(in.Price):
		return fmt.Errorf("%w: price has more than %d decimals", ErrInvalidProduct, model.MoneyScale)
	case !fitsMoneyScale(in.Discount):
		return fmt.Errorf("%w: discount has more than %d decimals", ErrInvalidProduct, model.MoneyScale)
	}
	return nil
}

func fitsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(model.MoneyScale))
}

// StoreService implements the catalog, purchase and admin operations.
type StoreService struct {
	products      repository.ProductRepository
	sales         repository.Repository
	tx            repository.Transactional
	adminPassword string
	outbox        bool
}

// NewStoreService creates a StoreService. When outbox is true every sale and product
// creation also writes an event for the outbox worker.
func NewStoreService(products repository.ProductRepository, sales repository.Repository, tx repository.Transactional, adminPassword string, outbox bool) *StoreService {
	return &StoreService{
		products:      products,
		sales:         sales,
		tx:            tx,
		adminPassword: adminPassword,
		outbox:        outbox,
	}
}

// ListProducts returns the whole catalog in id order.
func (s *StoreService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	resources, err := s.products.List(ctx, *repository.NewQuery())
	if err != nil {
		return nil, err
	}

	products := make([]*model.Product, 0, len(resources))
	for _, resource := range resources {
		product, ok := resource.(*model.Product)
		if !ok {
			return nil, repository.ErrInvalidType
		}
		products = append(products, product)
	}

	return products, nil
}

// ProductImage returns the stored image, or nothing when the product is unknown or has none.
func (s *StoreService) ProductImage(ctx context.Context, id int64) ([]byte, error) {
	image, err := s.products.FindImage(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return image, err
}

// Purchase sells qty units of a product and records the sale.
func (s *StoreService) Purchase(ctx context.Context, productID int64, qty int) (*model.Sale, error) {
	if qty < 1 {
		metrics.PurchasesRejected.WithLabelValues(metrics.ReasonInvalidQuantity).Inc()
		return nil, ErrInvalidQuantity
	}

	var newEvent repository.SaleEventFactory
	if s.outbox {
		newEvent = saleRecordedEvent
	}

	sale, err := s.tx.RecordSale(ctx, productID, qty, newEvent)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			metrics.PurchasesRejected.WithLabelValues(metrics.ReasonInsufficientStock).Inc()
			slog.Info("Purchase rejected", slog.Int64("product_id", productID), slog.Int("qty", qty), slog.Any("err", err))
		case errors.Is(err, repository.ErrNotFound):
			metrics.PurchasesRejected.WithLabelValues(metrics.ReasonNotFound).Inc()
		default:
			slog.Error("Failed to record sale", slog.Int64("product_id", productID), slog.Any("err", err))
		}
		return nil, err
	}

	metrics.SalesRecorded.Inc()
	metrics.Revenue.Add(sale.Total.InexactFloat64())
	slog.Info("Sale recorded",
		slog.Int64("sale_id", sale.ID),
		slog.Int64("product_id", sale.ProductID),
		slog.Int("qty", sale.Qty),
		slog.String("total", sale.Total.StringFixed(2)))

	return sale, nil
}

// CreateProduct adds a product when the admin password matches.
func (s *StoreService) CreateProduct(ctx context.Context, password string, input ProductInput) (*model.Product, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) != 1 {
		metrics.AdminRejections.WithLabelValues(metrics.ReasonWrongPassword).Inc()
		slog.Warn("Product creation with wrong admin password", slog.String("name", input.Name))
		return nil, ErrWrongPassword
	}

	if err := input.validate(); err != nil {
		metrics.AdminRejections.WithLabelValues(metrics.ReasonInvalidProduct).Inc()
		return nil, err
	}

	product := &model.Product{
		Name:     input.Name,
		Price:    input.Price,
		Stock:    input.Stock,
		Discount: input.Discount,
		Image:    input.Image,
	}

	var newEvent repository.ProductEventFactory
	if s.outbox {
		newEvent = productCreatedEvent
	}

	created, err := s.tx.CreateProductWithEvent(ctx, product, newEvent)
	if err != nil {
		var uniqueErr *repository.UniqueConstraintError
		if errors.As(err, &uniqueErr) {
			metrics.AdminRejections.WithLabelValues(metrics.ReasonDuplicateName).Inc()
		} else {
			slog.Error("Failed to create product", slog.String("name", input.Name), slog.Any("err", err))
		}
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	slog.Info("Product created", slog.Int64("product_id", created.ID), slog.String("name", created.Name))

	return created, nil
}

// RecentSales returns up to limit sales, newest first.
func (s *StoreService) RecentSales(ctx context.Context, limit int) ([]*model.Sale, error) {
	resources, err := s.sales.List(ctx, *repository.NewQuery().WithLimit(limit))
	if err != nil {
		return nil, err
	}

	sales := make([]*model.Sale, 0, len(resources))
	for _, resource := range resources {
		sale, ok := resource.(*model.Sale)
		if !ok {
			return nil, repository.ErrInvalidType
		}
		sales = append(sales, sale)
	}

	return sales, nil
}

func saleRecordedEvent(sale *model.Sale, product *model.Product) (*model.Event, error) {
	return reposql.CreateEvent(model.EventTypeSaleRecorded, sqs.SaleMessage{
		SaleID:         sale.ID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		Qty:            sale.Qty,
		Total:          sale.Total,
		RemainingStock: product.Stock,
		SoldAt:         sale.SoldAt,
	})
}

func productCreatedEvent(product *model.Product) (*model.Event, error) {
	return reposql.CreateEvent(model.EventTypeProductCreated, sqs.ProductMessage{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
		Discount:  product.Discount,
	})
}
