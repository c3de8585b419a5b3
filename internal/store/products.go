package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `p.id, p.title, p.slug, p.description, p.unit_price, p.inventory, p.last_update, p.collection_id, c.title`

const productFrom = ` FROM products p JOIN collections c ON c.id = p.collection_id`

type ProductInput struct {
	Title        string
	Slug         string
	Description  string
	UnitPrice    decimal.Decimal
	Inventory    int
	CollectionID int64
}

// ProductFilter narrows ListProducts. Nil/zero fields are ignored.
type ProductFilter struct {
	CollectionID    *int64
	UnitPriceGT     *decimal.Decimal
	UnitPriceLT     *decimal.Decimal
	Search          string
	CollectionTitle string
	LowInventory    bool
	UpdatedSince    *time.Time
	Ordering        string
}

var productOrderings = map[string]string{
	"id":                "p.id",
	"-id":               "p.id DESC",
	"title":             "p.title, p.id",
	"-title":            "p.title DESC, p.id DESC",
	"unit_price":        "p.unit_price, p.id",
	"-unit_price":       "p.unit_price DESC, p.id DESC",
	"last_update":       "p.last_update, p.id",
	"-last_update":      "p.last_update DESC, p.id DESC",
	"inventory":         "p.inventory, p.id",
	"-inventory":        "p.inventory DESC, p.id DESC",
	"inventory_status":  "p.inventory, p.id",
	"-inventory_status": "p.inventory DESC, p.id DESC",
	"collection_title":  "c.title, p.id",
	"-collection_title": "c.title DESC, p.id DESC",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Slug,
		&product.Description,
		&product.UnitPrice,
		&product.Inventory,
		&product.LastUpdate,
		&product.CollectionID,
		&product.CollectionTitle,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func CreateProduct(ctx context.Context, q database.Querier, in ProductInput) (*models.Product, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO products (title, slug, description, unit_price, inventory, collection_id, last_update)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 RETURNING id`,
		in.Title, in.Slug, in.Description, in.UnitPrice, in.Inventory, in.CollectionID).Scan(&id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, database.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	return GetProduct(ctx, q, id)
}

func GetProduct(ctx context.Context, q database.Querier, id int64) (*models.Product, error) {
	row := q.QueryRowContext(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func UpdateProduct(ctx context.Context, q database.Querier, id int64, in ProductInput) (*models.Product, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE products
		 SET title = $1, slug = $2, description = $3, unit_price = $4, inventory = $5,
		     collection_id = $6, last_update = NOW()
		 WHERE id = $7`,
		in.Title, in.Slug, in.Description, in.UnitPrice, in.Inventory, in.CollectionID, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, database.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := expectOneRow(result, database.ErrProductNotFound); err != nil {
		return nil, err
	}

	return GetProduct(ctx, q, id)
}

// UpdateUnitPrice edits only the price column, as the admin list does.
func UpdateUnitPrice(ctx context.Context, q database.Querier, id int64, price decimal.Decimal) (*models.Product, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE products SET unit_price = $1, last_update = NOW() WHERE id = $2`,
		price, id)
	if err != nil {
		return nil, fmt.Errorf("update unit price: %w", err)
	}

	if err := expectOneRow(result, database.ErrProductNotFound); err != nil {
		return nil, err
	}

	return GetProduct(ctx, q, id)
}

// ClearInventory zeroes the inventory of the given products and returns how
// many rows changed.
func ClearInventory(ctx context.Context, q database.Querier, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := q.ExecContext(ctx,
		`UPDATE products SET inventory = 0, last_update = NOW() WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("clear inventory: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// DeleteProduct refuses to delete a product that any order item references.
// Tagged and liked items pointing at the product go with it.
func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("lock product: %w", err)
		}

		var ordered bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = $1)`, id).Scan(&ordered)
		if err != nil {
			return fmt.Errorf("check order items: %w", err)
		}
		if ordered {
			return database.ErrProductInUse
		}

		if err := deleteGenericReferences(ctx, tx, ContentTypeProduct, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
			if database.IsForeignKeyViolation(err) {
				return database.ErrProductInUse
			}
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	})
}

func ListProducts(ctx context.Context, q database.Querier, filter ProductFilter, page, pageSize int) (*OffsetPage, error) {
	page, pageSize, offset := pageBounds(page, pageSize)

	var where whereBuilder
	if filter.CollectionID != nil {
		where.add("p.collection_id = ?", *filter.CollectionID)
	}
	if filter.UnitPriceGT != nil {
		where.add("p.unit_price > ?", *filter.UnitPriceGT)
	}
	if filter.UnitPriceLT != nil {
		where.add("p.unit_price < ?", *filter.UnitPriceLT)
	}
	// Each whitespace-separated term must match title or description.
	for _, term := range strings.Fields(filter.Search) {
		where.add("(p.title ILIKE ? OR p.description ILIKE ?)", containsPattern(term))
	}
	if filter.CollectionTitle != "" {
		where.add("c.title ILIKE ?", containsPattern(filter.CollectionTitle))
	}
	if filter.LowInventory {
		where.add("p.inventory < ?", models.LowInventoryThreshold)
	}
	if filter.UpdatedSince != nil {
		where.add("p.last_update >= ?", *filter.UpdatedSince)
	}

	var total int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*)`+productFrom+where.sql(), where.args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	orderBy, ok := productOrderings[filter.Ordering]
	if !ok {
		orderBy = productOrderings["id"]
	}

	query := `SELECT ` + productColumns + productFrom + where.sql() +
		` ORDER BY ` + orderBy +
		` LIMIT ` + where.next(pageSize) + ` OFFSET ` + where.next(offset)

	rows, err := q.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(products, total, page, pageSize), nil
}

func productExists(ctx context.Context, q database.Querier, id int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return exists, nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
