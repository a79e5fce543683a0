package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iyhunko/supermarket-pos/internal/model"
)

var (
	// ErrInvalidType is returned when a repository receives a resource of the wrong type.
	ErrInvalidType = errors.New("invalid resource type")

	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInsufficientStock is returned when a purchase asks for more units than are in stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Repository defines the interface for a generic repository that can manage resources.
type Repository interface {
	Create(ctx context.Context, resource Resource) (result Resource, err error)
	List(ctx context.Context, query Query) (result []Resource, err error)
	FindByID(ctx context.Context, id int64) (result Resource, err error) // find one
}

// ProductRepository adds image access to the generic product repository.
type ProductRepository interface {
	Repository
	FindImage(ctx context.Context, id int64) ([]byte, error)
}

// SaleEventFactory builds the outbox event for a sale about to be committed.
type SaleEventFactory func(sale *model.Sale, product *model.Product) (*model.Event, error)

// ProductEventFactory builds the outbox event for a product about to be committed.
type ProductEventFactory func(product *model.Product) (*model.Event, error)

// Transactional groups the writes that must commit together.
// A nil event factory means no outbox event is written.
type Transactional interface {
	RecordSale(ctx context.Context, productID int64, qty int, newEvent SaleEventFactory) (*model.Sale, error)
	CreateProductWithEvent(ctx context.Context, product *model.Product, newEvent ProductEventFactory) (*model.Product, error)
}

// EventStatusUpdater marks outbox events as processed or failed.
type EventStatusUpdater interface {
	UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error
}

// EventLister lists pending outbox events.
type EventLister interface {
	List(ctx context.Context, query Query) ([]Resource, error)
}

// Resource represents a generic resource that can be managed by the repository.
type Resource interface {
	InitMeta()
}

// UniqueConstraintError represents a database unique constraint violation error.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}
