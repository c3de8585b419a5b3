package api

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProductIncludesPriceWithTax(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`FROM products p`).
		WithArgs(int64(7)).
		WillReturnRows(productRows(product(7, "Mug", "25.00", 4)))

	w := doRequest(engine, http.MethodGet, "/products/7/", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "25.00", body["unit_price"])
	assert.Equal(t, "27.5", body["price_with_tax"])
	assert.EqualValues(t, 1, body["collection"])
	assert.NotContains(t, body, "collection_title")
}

func TestGetProductNotFound(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`FROM products p`).
		WithArgs(int64(404)).
		WillReturnRows(productRows())

	w := doRequest(engine, http.MethodGet, "/products/404/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Not found."}`, w.Body.String())

	w = doRequest(engine, http.MethodGet, "/products/abc/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProductsStrictPriceRange(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) .* WHERE p.unit_price > \$1 AND p.unit_price < \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`WHERE p.unit_price > \$1 AND p.unit_price < \$2 ORDER BY p.unit_price DESC`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 10, 0).
		WillReturnRows(productRows(product(3, "Lamp", "25.50", 12)))

	w := doRequest(engine, http.MethodGet, "/products/?unit_price__gt=20&unit_price__lt=30&ordering=-unit_price", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.Nil(t, body["next"])
	assert.Nil(t, body["previous"])
	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "28.05", results[0].(map[string]any)["price_with_tax"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsPageLinks(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`ORDER BY p.id LIMIT`).
		WithArgs("%tea%", 10, 10).
		WillReturnRows(productRows(product(11, "Tea", "4.00", 30)))

	w := doRequest(engine, http.MethodGet, "/products/?page=2&search=tea", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "http://example.com/products/?page=3&search=tea", body["next"])
	assert.Equal(t, "http://example.com/products/?search=tea", body["previous"])
}

func TestListProductsInvalidPage(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`ORDER BY p.id LIMIT`).
		WillReturnRows(productRows())

	w := doRequest(engine, http.MethodGet, "/products/?page=3", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Invalid page."}`, w.Body.String())

	w = doRequest(engine, http.MethodGet, "/products/?page=zero", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProductsRejectsMalformedFilters(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doRequest(engine, http.MethodGet, "/products/?unit_price__gt=cheap&collection_id=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"unit_price__gt":["Enter a number."],"collection_id":["Enter a number."]}`, w.Body.String())
}

func TestCreateProduct(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("Green Tea", "green-tea", "", sqlmock.AnyArg(), 0, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectQuery(`FROM products p`).
		WithArgs(int64(12)).
		WillReturnRows(productRows(product(12, "Green Tea", "4.50", 0)))

	w := doRequest(engine, http.MethodPost, "/products/",
		`{"title":"Green Tea","inventory":0,"unit_price":"4.50","collection":1,"price_with_tax":"999"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "4.95", body["price_with_tax"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductValidation(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doRequest(engine, http.MethodPost, "/products/", `{"title":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	for _, field := range []string{"title", "inventory", "unit_price", "collection"} {
		assert.Equal(t, []any{"This field is required."}, body[field], field)
	}

	w = doRequest(engine, http.MethodPost, "/products/",
		`{"title":"Tea","inventory":1,"unit_price":"12345.678","collection":1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "unit_price")

	w = doRequest(engine, http.MethodPost, "/products/",
		`{"title":"Tea","inventory":1,"unit_price":"1","collection":1,"colour":"red"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"colour":["This field is not allowed."]}`, w.Body.String())

	w = doRequest(engine, http.MethodPost, "/products/", `{"title":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "JSON parse error - ")

	w = doRequest(engine, http.MethodPost, "/products/",
		`{"title":"Tea","inventory":"many","unit_price":"1","collection":1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "inventory")
}

func TestCreateProductWithoutDerivableSlug(t *testing.T) {
	engine, mock := newTestServer(t)

	for _, title := range []string{"日本茶", "!!!"} {
		w := doRequest(engine, http.MethodPost, "/products/",
			`{"title":"`+title+`","inventory":1,"unit_price":"1.00","collection":1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, title)
		assert.JSONEq(t, `{"slug":["This field is required."]}`, w.Body.String())
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductInventoryOutOfRange(t *testing.T) {
	engine, mock := newTestServer(t)

	w := doRequest(engine, http.MethodPost, "/products/",
		`{"title":"Tea","inventory":3000000000,"unit_price":"1.00","collection":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"inventory":["Ensure this value is less than or equal to 2147483647."]}`, w.Body.String())

	mock.ExpectQuery(`FROM products p`).
		WithArgs(int64(3)).
		WillReturnRows(productRows(product(3, "Lamp", "25.50", 12)))

	w = doRequest(engine, http.MethodPatch, "/products/3/", `{"inventory":-3000000000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"inventory":["Ensure this value is greater than or equal to -2147483648."]}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductUnknownCollection(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`INSERT INTO products`).
		WillReturnError(&pq.Error{Code: "23503"})

	w := doRequest(engine, http.MethodPost, "/products/",
		`{"title":"Tea","slug":"tea","inventory":1,"unit_price":"1.00","collection":42}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"collection":["Invalid pk \"42\" - object does not exist."]}`, w.Body.String())
}

func TestPatchProductKeepsOtherFields(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`FROM products p`).
		WithArgs(int64(3)).
		WillReturnRows(productRows(product(3, "Lamp", "25.50", 12)))
	mock.ExpectExec(`UPDATE products`).
		WithArgs("Lamp", "lamp", "", sqlmock.AnyArg(), 12, int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM products p`).
		WithArgs(int64(3)).
		WillReturnRows(productRows(product(3, "Lamp", "30.00", 12)))

	w := doRequest(engine, http.MethodPatch, "/products/3/", `{"unit_price":"30"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "30.00", decodeBody(t, w)["unit_price"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductReferencedByOrderItem(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`FROM order_items`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	w := doRequest(engine, http.MethodDelete, "/products/5/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t,
		`{"error":"Product cannot be deleted because it is associated with an order item."}`,
		w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`FROM order_items`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`DELETE FROM tagged_items`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM liked_items`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM products`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doRequest(engine, http.MethodDelete, "/products/5/", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUnsupportedMethod(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doRequest(engine, http.MethodPost, "/products/5/", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"detail":"Method \"POST\" not allowed."}`, w.Body.String())

	w = doRequest(engine, http.MethodPost, "/products/5/reviews/3/", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = doRequest(engine, http.MethodDelete, "/products/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"detail":"Method \"DELETE\" not allowed."}`, w.Body.String())
}
