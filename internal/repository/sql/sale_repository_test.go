package sql

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/iyhunko/supermarket-pos/internal/model"
	"github.com/iyhunko/supermarket-pos/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var saleRowColumns = []string{"id", "product_id", "name", "qty", "total", "sold_at"}

func TestSaleRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSaleRepository(db)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		sale := &model.Sale{
			ProductID: 1,
			Qty:       2,
			Total:     decimal.NewFromInt(20),
		}

		mock.ExpectPrepare("INSERT INTO sales").
			ExpectQuery().
			WithArgs(int64(1), 2, sale.Total, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		result, err := repo.Create(ctx, sale)
		require.NoError(t, err)

		created := result.(*model.Sale)
		assert.Equal(t, int64(11), created.ID)
		assert.False(t, created.SoldAt.IsZero())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps given timestamp", func(t *testing.T) {
		soldAt := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
		sale := &model.Sale{ProductID: 1, Qty: 1, Total: decimal.NewFromInt(10), SoldAt: soldAt}

		mock.ExpectPrepare("INSERT INTO sales").
			ExpectQuery().
			WithArgs(int64(1), 1, sale.Total, soldAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

		result, err := repo.Create(ctx, sale)
		require.NoError(t, err)
		assert.Equal(t, soldAt, result.(*model.Sale).SoldAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure", func(t *testing.T) {
		mock.ExpectPrepare("INSERT INTO sales").
			ExpectQuery().
			WillReturnError(sql.ErrConnDone)

		result, err := repo.Create(ctx, &model.Sale{ProductID: 1, Qty: 1})
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "failed to insert sale")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaleRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSaleRepository(db)
	ctx := context.Background()

	t.Run("latest sales with default limit", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(saleRowColumns).
			AddRow(int64(2), int64(1), "Milk", int64(3), "30", now).
			AddRow(int64(1), int64(1), "Milk", int64(2), "20", now.Add(-time.Minute))

		mock.ExpectPrepare("FROM sales s LEFT JOIN products p (.+) ORDER BY s.sold_at DESC, s.id DESC LIMIT \\$1").
			ExpectQuery().
			WithArgs(repository.DefaultListLimit).
			WillReturnRows(rows)

		result, err := repo.List(ctx, *repository.NewQuery())
		require.NoError(t, err)
		require.Len(t, result, 2)

		latest := result[0].(*model.Sale)
		assert.Equal(t, int64(2), latest.ID)
		assert.Equal(t, "Milk", latest.ProductName)
		assert.True(t, decimal.NewFromInt(30).Equal(latest.Total))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filtered by product", func(t *testing.T) {
		rows := sqlmock.NewRows(saleRowColumns).
			AddRow(int64(5), int64(9), "Eggs", int64(1), "3.20", time.Now())

		mock.ExpectPrepare("AND s.product_id = \\$1 ORDER BY (.+) LIMIT \\$2").
			ExpectQuery().
			WithArgs(int64(9), 5).
			WillReturnRows(rows)

		result, err := repo.List(ctx, *repository.NewQuery().WithProductID(9).WithLimit(5))
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, int64(9), result[0].(*model.Sale).ProductID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid product filter", func(t *testing.T) {
		result, err := repo.List(ctx, *repository.NewQuery().With(repository.ProductIDField, "milk"))
		require.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestSaleRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSaleRepository(db)
	ctx := context.Background()

	t.Run("successful find", func(t *testing.T) {
		mock.ExpectPrepare("FROM sales s (.+) WHERE s.id = \\$1").
			ExpectQuery().
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(saleRowColumns).AddRow(int64(3), int64(1), "Milk", int64(2), "20", time.Now()))

		result, err := repo.FindByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 2, result.(*model.Sale).Qty)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sale not found", func(t *testing.T) {
		mock.ExpectPrepare("FROM sales s (.+) WHERE s.id = \\$1").
			ExpectQuery().
			WithArgs(int64(4)).
			WillReturnError(sql.ErrNoRows)

		result, err := repo.FindByID(ctx, 4)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, result)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
