package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iyhunko/supermarket-pos/internal/model"
	"github.com/iyhunko/supermarket-pos/internal/repository"
)

const productColumns = "id, name, price, stock, discount, image IS NOT NULL AS has_image, created_at"

// ProductRepository implements the ProductRepository interface for Product entities.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &ProductRepository{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *ProductRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// Create inserts a new product into the database. A duplicate name is reported
// as *repository.UniqueConstraintError.
func (r *ProductRepository) Create(ctx context.Context, resource repository.Resource) (repository.Resource, error) {
	product, ok := resource.(*model.Product)
	if !ok {
		return nil, fmt.Errorf("resource must be a *model.Product: %w", repository.ErrInvalidType)
	}

	product.InitMeta()

	query := `INSERT INTO products (name, price, stock, discount, image, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, product.Name, product.Price, product.Stock, product.Discount, nullableBytes(product.Image), product.CreatedAt).
		Scan(&product.ID)
	if err != nil {
		mapped := asUniqueConstraintError(err)
		var uniqueErr *repository.UniqueConstraintError
		if errors.As(mapped, &uniqueErr) {
			slog.Warn("product name already exists", slog.String("name", product.Name), slog.String("detail", uniqueErr.Detail))
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return product, nil
}

// List retrieves products in id order. Query.Limit caps the result when positive.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]repository.Resource, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products ORDER BY id")

	var args []interface{}
	if query.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $1")
		args = append(args, query.Limit)
	}

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []repository.Resource
	for rows.Next() {
		var product model.Product
		err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.Discount, &product.HasImage, &product.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// FindByID retrieves a single product by ID, without its image payload.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (repository.Resource, error) {
	product, err := r.findByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// findForUpdate locks the product row until the surrounding transaction ends.
func (r *ProductRepository) findForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	if r.txn == nil {
		return nil, errors.New("row lock requires a transaction")
	}
	return r.findByID(ctx, id, true)
}

func (r *ProductRepository) findByID(ctx context.Context, id int64, lock bool) (*model.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var result model.Product
	err = stmt.QueryRowContext(ctx, id).Scan(
		&result.ID, &result.Name, &result.Price, &result.Stock, &result.Discount, &result.HasImage, &result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &result, nil
}

// FindImage returns the stored image of a product. A product without image yields
// an empty slice; a missing product yields repository.ErrNotFound.
func (r *ProductRepository) FindImage(ctx context.Context, id int64) ([]byte, error) {
	query := `SELECT image FROM products WHERE id = $1`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var image []byte
	if err := stmt.QueryRowContext(ctx, id).Scan(&image); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product image: %w", err)
	}

	return image, nil
}

// decrementStock removes qty units only if enough remain.
func (r *ProductRepository) decrementStock(ctx context.Context, id int64, qty int) error {
	query := `UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, qty, id)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrInsufficientStock
	}

	return nil
}
