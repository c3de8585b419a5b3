package api

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var collectionColumnNames = []string{"id", "title", "featured_product_id", "products_count"}

func TestListCollections(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`FROM collections c ORDER BY c.id`).
		WillReturnRows(sqlmock.NewRows(collectionColumnNames).
			AddRow(1, "Beauty", nil, 3).
			AddRow(2, "Grocery", 9, 0))

	w := doRequest(engine, http.MethodGet, "/collections/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"id":1,"title":"Beauty","products_count":3,"featured_product":null},
		{"id":2,"title":"Grocery","products_count":0,"featured_product":9}
	]`, w.Body.String())
}

func TestCreateCollectionIgnoresProductsCount(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`INSERT INTO collections`).
		WithArgs("Toys", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(`FROM collections c WHERE c.id = \$1`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(collectionColumnNames).AddRow(4, "Toys", nil, 0))

	w := doRequest(engine, http.MethodPost, "/collections/", `{"title":"Toys","products_count":50}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 0, decodeBody(t, w)["products_count"])
}

func TestCreateCollectionUnknownFeaturedProduct(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`INSERT INTO collections`).
		WillReturnError(&pq.Error{Code: "23503"})

	w := doRequest(engine, http.MethodPost, "/collections/", `{"title":"Toys","featured_product":77}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"featured_product":["Invalid pk \"77\" - object does not exist."]}`, w.Body.String())
}

func TestPatchCollectionClearsFeaturedProduct(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`FROM collections c WHERE c.id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(collectionColumnNames).AddRow(2, "Grocery", 9, 1))
	mock.ExpectExec(`UPDATE collections`).
		WithArgs("Grocery", nil, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM collections c WHERE c.id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(collectionColumnNames).AddRow(2, "Grocery", nil, 1))

	w := doRequest(engine, http.MethodPatch, "/collections/2/", `{"featured_product":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decodeBody(t, w)["featured_product"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPutCollectionKeepsOmittedFeaturedProduct(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`FROM collections c WHERE c.id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(collectionColumnNames).AddRow(2, "Grocery", 9, 1))
	mock.ExpectExec(`UPDATE collections`).
		WithArgs("Food", int64(9), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM collections c WHERE c.id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(collectionColumnNames).AddRow(2, "Food", 9, 1))

	w := doRequest(engine, http.MethodPut, "/collections/2/", `{"title":"Food"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 9, decodeBody(t, w)["featured_product"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCollectionWithProducts(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM collections WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(`FROM products WHERE collection_id`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	w := doRequest(engine, http.MethodDelete, "/collections/2/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t,
		`{"error":"Collection cannot be deleted because it includes one or more products."}`,
		w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingCollection(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	w := doRequest(engine, http.MethodDelete, "/collections/8/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
