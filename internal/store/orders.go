package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Bounds on the number of line items an order is placed with.
const (
	MinOrderItems = 1
	MaxOrderItems = 10
)

type PlaceOrderRequest struct {
	CustomerID    int64
	PaymentStatus models.PaymentStatus
	Items         []OrderItemRequest
}

// OrderItemRequest describes one line. A nil UnitPrice snapshots the
// product's current price.
type OrderItemRequest struct {
	ProductID int64
	Quantity  int
	UnitPrice *decimal.Decimal
}

// PlaceOrder writes the order and all of its items in one transaction. If any
// item fails, including one that references a missing product, nothing is
// persisted.
func PlaceOrder(ctx context.Context, db *sql.DB, req PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, database.ErrEmptyOrder
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = models.PaymentStatusPending
	}

	var order *models.Order

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)",
			req.CustomerID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check customer exists: %w", err)
		}
		if !exists {
			return database.ErrCustomerNotFound
		}

		placed := &models.Order{CustomerID: req.CustomerID}
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (customer_id, payment_status, placed_at)
			 VALUES ($1, $2, NOW())
			 RETURNING id, placed_at, payment_status`,
			req.CustomerID, string(req.PaymentStatus)).Scan(&placed.ID, &placed.PlacedAt, &placed.PaymentStatus)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range req.Items {
			unitPrice, err := snapshotPrice(ctx, tx, item)
			if err != nil {
				return err
			}

			line := models.OrderItem{
				OrderID:   placed.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: unitPrice,
			}
			err = tx.QueryRowContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, unit_price)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id`,
				placed.ID, item.ProductID, item.Quantity, unitPrice).Scan(&line.ID)
			if err != nil {
				if database.IsForeignKeyViolation(err) {
					return database.ErrProductNotFound
				}
				return fmt.Errorf("create order item: %w", err)
			}
			placed.Items = append(placed.Items, line)
		}

		order = placed
		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

func snapshotPrice(ctx context.Context, tx *sql.Tx, item OrderItemRequest) (decimal.Decimal, error) {
	if item.UnitPrice != nil {
		return *item.UnitPrice, nil
	}

	var price decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT unit_price FROM products WHERE id = $1 FOR SHARE`,
		item.ProductID).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, database.ErrProductNotFound
		}
		return decimal.Zero, fmt.Errorf("read price of product %d: %w", item.ProductID, err)
	}
	return price, nil
}

func GetOrder(ctx context.Context, q database.Querier, id int64) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT id, placed_at, payment_status, customer_id
		FROM orders
		WHERE id = $1`

	err := q.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.PlacedAt,
		&order.PaymentStatus,
		&order.CustomerID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := q.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	order.Items = items

	return order, nil
}

// ListOrdersCursor returns orders newest first. customerID of zero lists
// every customer's orders.
func ListOrdersCursor(ctx context.Context, q database.Querier, customerID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	var where whereBuilder
	if customerID != 0 {
		where.add("customer_id = ?", customerID)
	}
	where.addRaw("(placed_at, id) < (" + where.next(cursorData.PlacedAt) + ", " + where.next(cursorData.ID) + ")")

	query := `
		SELECT id, placed_at, payment_status, customer_id
		FROM orders` + where.sql() + `
		ORDER BY placed_at DESC, id DESC
		LIMIT ` + where.next(limit+1)

	rows, err := q.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.PlacedAt,
			&order.PaymentStatus,
			&order.CustomerID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			PlacedAt: lastOrder.PlacedAt,
			ID:       lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func UpdatePaymentStatus(ctx context.Context, q database.Querier, id int64, status models.PaymentStatus) (*models.Order, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE orders SET payment_status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		if database.IsCheckViolation(err) {
			return nil, database.ErrInvalidChoice
		}
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	if err := expectOneRow(result, database.ErrOrderNotFound); err != nil {
		return nil, err
	}

	return GetOrder(ctx, q, id)
}
