package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/safar/storefront/internal/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProduct(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM products p JOIN collections c`).
		WithArgs(int64(7)).
		WillReturnRows(productRow(sqlmock.NewRows(productColumnNames), 7, "Mug", "25.00", 4))

	product, err := GetProduct(context.Background(), db, 7)
	require.NoError(t, err)

	assert.Equal(t, "Mug", product.Title)
	assert.Equal(t, "Beauty", product.CollectionTitle)
	assert.True(t, product.UnitPrice.Equal(decimal.RequireFromString("25")))
	assert.True(t, product.PriceWithTax().Equal(decimal.RequireFromString("27.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM products p`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(productColumnNames))

	_, err := GetProduct(context.Background(), db, 404)
	assert.ErrorIs(t, err, database.ErrProductNotFound)
}

func TestCreateProductUnknownCollection(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO products`).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := CreateProduct(context.Background(), db, ProductInput{
		Title:        "Mug",
		Slug:         "mug",
		UnitPrice:    decimal.NewFromInt(10),
		Inventory:    3,
		CollectionID: 99,
	})
	assert.ErrorIs(t, err, database.ErrCollectionNotFound)
}

func TestListProductsUsesStrictPriceBounds(t *testing.T) {
	db, mock := newMockDB(t)
	low := decimal.NewFromInt(20)
	high := decimal.NewFromInt(30)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products p JOIN collections c ON c.id = p.collection_id WHERE p.unit_price > \$1 AND p.unit_price < \$2`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`WHERE p.unit_price > \$1 AND p.unit_price < \$2 ORDER BY p.unit_price, p.id LIMIT \$3 OFFSET \$4`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 10, 0).
		WillReturnRows(productRow(sqlmock.NewRows(productColumnNames), 3, "Lamp", "25.50", 12))

	page, err := ListProducts(context.Background(), db, ProductFilter{
		UnitPriceGT: &low,
		UnitPriceLT: &high,
		Ordering:    "unit_price",
	}, 1, 10)
	require.NoError(t, err)

	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsSearchEscapesPattern(t *testing.T) {
	db, mock := newMockDB(t)
	collectionID := int64(3)

	mock.ExpectQuery(`WHERE p.collection_id = \$1 AND \(p.title ILIKE \$2 OR p.description ILIKE \$2\)`).
		WithArgs(collectionID, `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY p.id LIMIT \$3 OFFSET \$4`).
		WithArgs(collectionID, `%50\%%`, 10, 10).
		WillReturnRows(sqlmock.NewRows(productColumnNames))

	page, err := ListProducts(context.Background(), db, ProductFilter{
		CollectionID: &collectionID,
		Search:       "50%",
	}, 2, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Page)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsSearchRequiresEveryTerm(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`WHERE \(p.title ILIKE \$1 OR p.description ILIKE \$1\) AND \(p.title ILIKE \$2 OR p.description ILIKE \$2\)`).
		WithArgs("%green%", "%tea%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY p.id LIMIT \$3 OFFSET \$4`).
		WithArgs("%green%", "%tea%", 10, 0).
		WillReturnRows(productRow(sqlmock.NewRows(productColumnNames), 1, "Green Tea", "4.00", 20))

	page, err := ListProducts(context.Background(), db, ProductFilter{Search: "  green   tea "}, 1, 10)
	require.NoError(t, err)

	assert.Len(t, page.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductInUseRollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM order_items`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := DeleteProduct(context.Background(), db, 5)
	assert.ErrorIs(t, err, database.ErrProductInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductRemovesGenericReferences(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`FROM order_items`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`DELETE FROM tagged_items`).
		WithArgs(int64(5), "store", "product").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM liked_items`).
		WithArgs(int64(5), "store", "product").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, DeleteProduct(context.Background(), db, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := DeleteProduct(context.Background(), db, 8)
	assert.ErrorIs(t, err, database.ErrProductNotFound)
}

func TestClearInventory(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE products SET inventory = 0`).
		WithArgs(pq.Array([]int64{1, 2, 3})).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := ClearInventory(context.Background(), db, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = ClearInventory(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
