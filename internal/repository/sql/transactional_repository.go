package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iyhunko/supermarket-pos/internal/model"
	"github.com/iyhunko/supermarket-pos/internal/repository"
)

// TransactionalRepository provides methods to work with multiple repositories in a single transaction
type TransactionalRepository struct {
	db *sql.DB
}

// NewTransactionalRepository creates a new TransactionalRepository
func NewTransactionalRepository(db *sql.DB) *TransactionalRepository {
	return &TransactionalRepository{db: db}
}

// txRepositories are the repositories bound to one transaction.
type txRepositories struct {
	products *ProductRepository
	sales    *SaleRepository
	events   *EventRepository
}

// withinTransaction runs fn in a transaction, rolling back when fn fails.
func (tr *TransactionalRepository) withinTransaction(ctx context.Context, fn func(repos txRepositories) error) error {
	tx, err := tr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	repos := txRepositories{
		products: &ProductRepository{db: tr.db, txn: tx},
		sales:    &SaleRepository{db: tr.db, txn: tx},
		events:   &EventRepository{db: tr.db, txn: tx},
	}

	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RecordSale sells qty units of a product: the row is locked, the stock is decremented
// only if enough units remain, and the sale (plus its outbox event when newEvent is not nil)
// is inserted in the same transaction. Returns repository.ErrNotFound or
// repository.ErrInsufficientStock without mutating anything.
func (tr *TransactionalRepository) RecordSale(ctx context.Context, productID int64, qty int, newEvent repository.SaleEventFactory) (*model.Sale, error) {
	var sale *model.Sale

	err := tr.withinTransaction(ctx, func(repos txRepositories) error {
		product, err := repos.products.findForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		if qty > product.Stock {
			return fmt.Errorf("product %d has %d units, %d requested: %w", productID, product.Stock, qty, repository.ErrInsufficientStock)
		}

		if err := repos.products.decrementStock(ctx, productID, qty); err != nil {
			return err
		}
		product.Stock -= qty

		created, err := repos.sales.Create(ctx, &model.Sale{
			ProductID:   product.ID,
			ProductName: product.Name,
			Qty:         qty,
			Total:       product.Total(qty),
		})
		if err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}

		createdSale, ok := created.(*model.Sale)
		if !ok {
			return repository.ErrInvalidType
		}

		if newEvent != nil {
			event, err := newEvent(createdSale, product)
			if err != nil {
				return fmt.Errorf("failed to build sale event: %w", err)
			}
			if _, err := repos.events.Create(ctx, event); err != nil {
				return fmt.Errorf("failed to create event: %w", err)
			}
		}

		sale = createdSale
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

// CreateProductWithEvent creates a product and, when newEvent is not nil, its outbox
// event in a single transaction.
func (tr *TransactionalRepository) CreateProductWithEvent(ctx context.Context, product *model.Product, newEvent repository.ProductEventFactory) (*model.Product, error) {
	var createdProduct *model.Product

	err := tr.withinTransaction(ctx, func(repos txRepositories) error {
		created, err := repos.products.Create(ctx, product)
		if err != nil {
			return err
		}

		var ok bool
		createdProduct, ok = created.(*model.Product)
		if !ok {
			return repository.ErrInvalidType
		}

		if newEvent != nil {
			event, err := newEvent(createdProduct)
			if err != nil {
				return fmt.Errorf("failed to build product event: %w", err)
			}
			if _, err := repos.events.Create(ctx, event); err != nil {
				return fmt.Errorf("failed to create event: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return createdProduct, nil
}
