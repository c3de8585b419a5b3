package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var productColumnNames = []string{
	"id", "title", "slug", "description", "unit_price", "inventory", "last_update", "collection_id", "title",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func productRow(rows *sqlmock.Rows, id int64, title, price string, inventory int) *sqlmock.Rows {
	return rows.AddRow(id, title, "slug-"+title, "", price, inventory,
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), int64(1), "Beauty")
}
