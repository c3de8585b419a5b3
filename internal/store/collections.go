package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

const collectionSelect = `
	SELECT c.id, c.title, c.featured_product_id,
	       (SELECT COUNT(*) FROM products p WHERE p.collection_id = c.id) AS products_count
	FROM collections c`

type CollectionInput struct {
	Title             string
	FeaturedProductID *int64
}

var collectionOrderings = map[string]string{
	"id":              "c.id",
	"-id":             "c.id DESC",
	"title":           "c.title, c.id",
	"-title":          "c.title DESC, c.id DESC",
	"products_count":  "products_count, c.id",
	"-products_count": "products_count DESC, c.id DESC",
}

func IsCollectionOrdering(key string) bool {
	_, ok := collectionOrderings[key]
	return ok
}

func scanCollection(row rowScanner) (*models.Collection, error) {
	collection := &models.Collection{}
	var featured sql.NullInt64
	if err := row.Scan(&collection.ID, &collection.Title, &featured, &collection.ProductsCount); err != nil {
		return nil, err
	}
	if featured.Valid {
		collection.FeaturedProductID = &featured.Int64
	}
	return collection, nil
}

func CreateCollection(ctx context.Context, q database.Querier, in CollectionInput) (*models.Collection, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO collections (title, featured_product_id) VALUES ($1, $2) RETURNING id`,
		in.Title, nullableID(in.FeaturedProductID)).Scan(&id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return GetCollection(ctx, q, id)
}

// GetCollection returns the collection annotated with its product count.
func GetCollection(ctx context.Context, q database.Querier, id int64) (*models.Collection, error) {
	collection, err := scanCollection(q.QueryRowContext(ctx, collectionSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return collection, nil
}

func ListCollections(ctx context.Context, q database.Querier, search, ordering string) ([]models.Collection, error) {
	var where whereBuilder
	if search != "" {
		where.add("c.title ILIKE ?", containsPattern(search))
	}

	orderBy, ok := collectionOrderings[ordering]
	if !ok {
		orderBy = collectionOrderings["id"]
	}

	rows, err := q.QueryContext(ctx, collectionSelect+where.sql()+` ORDER BY `+orderBy, where.args...)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	collections := []models.Collection{}
	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, *collection)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return collections, nil
}

func UpdateCollection(ctx context.Context, q database.Querier, id int64, in CollectionInput) (*models.Collection, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE collections SET title = $1, featured_product_id = $2 WHERE id = $3`,
		in.Title, nullableID(in.FeaturedProductID), id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("update collection: %w", err)
	}

	if err := expectOneRow(result, database.ErrCollectionNotFound); err != nil {
		return nil, err
	}

	return GetCollection(ctx, q, id)
}

// DeleteCollection refuses to delete a collection that still owns products.
func DeleteCollection(ctx context.Context, db *sql.DB, id int64) error {
	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM collections WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return database.ErrCollectionNotFound
			}
			return fmt.Errorf("lock collection: %w", err)
		}

		var hasProducts bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE collection_id = $1)`, id).Scan(&hasProducts)
		if err != nil {
			return fmt.Errorf("check collection products: %w", err)
		}
		if hasProducts {
			return database.ErrCollectionNotEmpty
		}

		if err := deleteGenericReferences(ctx, tx, ContentTypeCollection, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id); err != nil {
			if database.IsForeignKeyViolation(err) {
				return database.ErrCollectionNotEmpty
			}
			return fmt.Errorf("delete collection: %w", err)
		}
		return nil
	})
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
