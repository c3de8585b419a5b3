package api

import (
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var productColumnNames = []string{
	"id", "title", "slug", "description", "unit_price", "inventory", "last_update", "collection_id", "title",
}

func newTestServer(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	engine := NewEngine(zaptest.NewLogger(t))
	NewHandler(db).RegisterRoutes(engine)
	return engine, mock
}

func doRequest(engine http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func productRows(products ...[]driver.Value) *sqlmock.Rows {
	rows := sqlmock.NewRows(productColumnNames)
	for _, p := range products {
		rows.AddRow(p...)
	}
	return rows
}

func product(id int64, title, price string, inventory int) []driver.Value {
	return []driver.Value{id, title, strings.ToLower(title), "", price, inventory,
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), int64(1), "Beauty"}
}
