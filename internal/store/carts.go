package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

func CreateCart(ctx context.Context, q database.Querier) (*models.Cart, error) {
	cart := &models.Cart{ID: uuid.New(), Items: []models.CartItem{}}
	err := q.QueryRowContext(ctx,
		`INSERT INTO carts (id, created_at) VALUES ($1, NOW()) RETURNING created_at`,
		cart.ID).Scan(&cart.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// GetCart loads the cart with its items and each item's product in two
// queries.
func GetCart(ctx context.Context, q database.Querier, id uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{ID: id}
	err := q.QueryRowContext(ctx, `SELECT created_at FROM carts WHERE id = $1`, id).Scan(&cart.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT ci.id, ci.cart_id, ci.quantity, `+productColumns+`
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 JOIN collections c ON c.id = p.collection_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.id`, id)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		product := &models.Product{}
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.Quantity,
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
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.ProductID = product.ID
		item.Product = product
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return cart, nil
}

// MaxCartItemQuantity is the largest quantity a single cart line holds.
const MaxCartItemQuantity = 32767

// AddCartItem adds quantity of the product to the cart, increasing the
// existing line if the product is already in it. A merge that would exceed
// MaxCartItemQuantity leaves the line unchanged and returns
// database.ErrCartQuantityExceeded.
func AddCartItem(ctx context.Context, db *sql.DB, cartID uuid.UUID, productID int64, quantity int) (*models.CartItem, error) {
	item := &models.CartItem{CartID: cartID, ProductID: productID}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM carts WHERE id = $1)`, cartID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check cart exists: %w", err)
		}
		if !exists {
			return database.ErrCartNotFound
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO cart_items AS ci (cart_id, product_id, quantity) VALUES ($1, $2, $3)
			 ON CONFLICT (cart_id, product_id)
			 DO UPDATE SET quantity = ci.quantity + EXCLUDED.quantity
			 WHERE ci.quantity::INTEGER + EXCLUDED.quantity <= $4
			 RETURNING id, quantity`,
			cartID, productID, quantity, MaxCartItemQuantity).Scan(&item.ID, &item.Quantity)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return database.ErrCartQuantityExceeded
			}
			if database.IsForeignKeyViolation(err) {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("add cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	product, err := GetProduct(ctx, db, productID)
	if err != nil {
		return nil, err
	}
	item.Product = product
	return item, nil
}

func DeleteCartItem(ctx context.Context, q database.Querier, cartID uuid.UUID, itemID int64) error {
	result, err := q.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return expectOneRow(result, database.ErrCartItemNotFound)
}

func DeleteCart(ctx context.Context, q database.Querier, id uuid.UUID) error {
	result, err := q.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return expectOneRow(result, database.ErrCartNotFound)
}
