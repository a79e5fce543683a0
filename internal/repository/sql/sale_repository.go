package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iyhunko/supermarket-pos/internal/model"
	"github.com/iyhunko/supermarket-pos/internal/repository"
)

// SaleRepository implements the Repository interface for the append-only sales log.
type SaleRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewSaleRepository creates a new SaleRepository instance.
func NewSaleRepository(db *sql.DB) repository.Repository {
	return &SaleRepository{db: db}
}

func (r *SaleRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// Create appends a sale.
func (r *SaleRepository) Create(ctx context.Context, resource repository.Resource) (repository.Resource, error) {
	sale, ok := resource.(*model.Sale)
	if !ok {
		return nil, fmt.Errorf("resource must be a *model.Sale: %w", repository.ErrInvalidType)
	}

	if sale.SoldAt.IsZero() {
		sale.InitMeta()
	}

	query := `INSERT INTO sales (product_id, qty, total, sold_at)
	          VALUES ($1, $2, $3, $4) RETURNING id`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, sale.ProductID, sale.Qty, sale.Total, sale.SoldAt).Scan(&sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	return sale, nil
}

// List returns the newest sales first, optionally filtered by product.
func (r *SaleRepository) List(ctx context.Context, query repository.Query) ([]repository.Resource, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT s.id, s.product_id, COALESCE(p.name, ''), s.qty, s.total, s.sold_at
		FROM sales s LEFT JOIN products p ON p.id = s.product_id WHERE 1=1`)

	var args []interface{}
	argIndex := 1

	if value, ok := query.Values[repository.ProductIDField]; ok {
		productID, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid product filter %q: %w", value, err)
		}
		queryBuilder.WriteString(fmt.Sprintf(" AND s.product_id = $%d", argIndex))
		args = append(args, productID)
		argIndex++
	}

	queryBuilder.WriteString(" ORDER BY s.sold_at DESC, s.id DESC")

	limit := query.Limit
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argIndex))
	args = append(args, limit)

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []repository.Resource
	for rows.Next() {
		var sale model.Sale
		if err := rows.Scan(&sale.ID, &sale.ProductID, &sale.ProductName, &sale.Qty, &sale.Total, &sale.SoldAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, &sale)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sales, nil
}

// FindByID retrieves a single sale.
func (r *SaleRepository) FindByID(ctx context.Context, id int64) (repository.Resource, error) {
	query := `SELECT s.id, s.product_id, COALESCE(p.name, ''), s.qty, s.total, s.sold_at
		FROM sales s LEFT JOIN products p ON p.id = s.product_id WHERE s.id = $1`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var sale model.Sale
	err = stmt.QueryRowContext(ctx, id).Scan(&sale.ID, &sale.ProductID, &sale.ProductName, &sale.Qty, &sale.Total, &sale.SoldAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sale %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query sale: %w", err)
	}

	return &sale, nil
}
