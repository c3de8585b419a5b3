package admin

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerColumnNames = []string{"id", "first_name", "last_name", "email", "phone", "birth_date", "membership"}

func TestListCustomersLinksToOrders(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers cu WHERE`).
		WithArgs("jo%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY orders_count DESC, cu.id DESC`).
		WithArgs("jo%", 10, 0).
		WillReturnRows(sqlmock.NewRows(append(customerColumnNames, "orders_count")).
			AddRow(5, "John", "Smith", "j@example.com", "", nil, "S", 2))

	w := doRequest(engine, http.MethodGet, "/admin/customers/?q=jo&o=-orders_count", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"count":1,"next":null,"previous":null,"results":[
		{"id":5,"first_name":"John","last_name":"Smith","membership":"S","orders_count":2,
		 "orders_url":"/admin/orders/?customer__id=5"}]}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCustomerValidation(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doRequest(engine, http.MethodPost, "/admin/customers/",
		`{"first_name":"Ann","last_name":"Lee","email":"not-an-email","phone":"1","birth_date":"15/03/1990","membership":"P"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{
		"email":["Enter a valid email address."],
		"birth_date":["Date has wrong format. Use one of these formats instead: YYYY-MM-DD."],
		"membership":["\"P\" is not a valid choice."]}`, w.Body.String())
}

func TestCreateCustomer(t *testing.T) {
	engine, mock := newTestServer(t)
	birthDate := time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO customers`).
		WithArgs("Ann", "Lee", "ann@example.com", "555", sqlmock.AnyArg(), "B").
		WillReturnRows(sqlmock.NewRows(customerColumnNames).
			AddRow(8, "Ann", "Lee", "ann@example.com", "555", birthDate, "B"))

	w := doRequest(engine, http.MethodPost, "/admin/customers/",
		`{"first_name":"Ann","last_name":"Lee","email":"ann@example.com","phone":"555","birth_date":"1990-03-15"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "1990-03-15", body["birth_date"])
	assert.Equal(t, "B", body["membership"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`INSERT INTO customers`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "customers_email_key"})

	w := doRequest(engine, http.MethodPost, "/admin/customers/",
		`{"first_name":"Ann","last_name":"Lee","email":"ann@example.com","phone":"555"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateMembership(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectExec(`UPDATE customers SET membership = \$1 WHERE id = \$2`).
		WithArgs("G", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM customers cu`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(customerColumnNames).
			AddRow(5, "John", "Smith", "j@example.com", "", nil, "G"))

	w := doRequest(engine, http.MethodPatch, "/admin/customers/5/", `{"membership":"G"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "G", body["membership"])
	assert.Nil(t, body["birth_date"])

	w = doRequest(engine, http.MethodPatch, "/admin/customers/5/", `{"membership":"X"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCustomerWithOrders(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectExec(`DELETE FROM customers`).
		WithArgs(int64(5)).
		WillReturnError(&pq.Error{Code: "23503"})

	w := doRequest(engine, http.MethodDelete, "/admin/customers/5/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Customer cannot be deleted because they have one or more orders."}`, w.Body.String())
}

func TestCreateAddressForMissingCustomer(t *testing.T) {
	engine, mock := newTestServer(t)

	mock.ExpectQuery(`INSERT INTO addresses`).
		WithArgs("1 Main St", "Springfield", int64(77)).
		WillReturnError(&pq.Error{Code: "23503"})

	w := doRequest(engine, http.MethodPost, "/admin/customers/77/addresses/", `{"street":"1 Main St","city":"Springfield"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
