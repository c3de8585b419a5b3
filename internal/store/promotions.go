package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

func CreatePromotion(ctx context.Context, q database.Querier, description string, discount float64) (*models.Promotion, error) {
	promotion := &models.Promotion{}
	err := q.QueryRowContext(ctx,
		`INSERT INTO promotions (description, discount) VALUES ($1, $2)
		 RETURNING id, description, discount`,
		description, discount).Scan(&promotion.ID, &promotion.Description, &promotion.Discount)
	if err != nil {
		return nil, fmt.Errorf("create promotion: %w", err)
	}
	return promotion, nil
}

func GetPromotion(ctx context.Context, q database.Querier, id int64) (*models.Promotion, error) {
	promotion := &models.Promotion{}
	err := q.QueryRowContext(ctx,
		`SELECT id, description, discount FROM promotions WHERE id = $1`, id).
		Scan(&promotion.ID, &promotion.Description, &promotion.Discount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	return promotion, nil
}

func ListPromotions(ctx context.Context, q database.Querier) ([]models.Promotion, error) {
	return queryPromotions(ctx, q, `SELECT id, description, discount FROM promotions ORDER BY id`)
}

func ListProductPromotions(ctx context.Context, q database.Querier, productID int64) ([]models.Promotion, error) {
	return queryPromotions(ctx, q,
		`SELECT pr.id, pr.description, pr.discount
		 FROM promotions pr
		 JOIN product_promotions pp ON pp.promotion_id = pr.id
		 WHERE pp.product_id = $1
		 ORDER BY pr.id`, productID)
}

// SetProductPromotions replaces the product's promotions with promotionIDs.
func SetProductPromotions(ctx context.Context, db *sql.DB, productID int64, promotionIDs []int64) error {
	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		exists, err := productExists(ctx, tx, productID)
		if err != nil {
			return err
		}
		if !exists {
			return database.ErrProductNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_promotions WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("clear product promotions: %w", err)
		}

		for _, promotionID := range promotionIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO product_promotions (product_id, promotion_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`,
				productID, promotionID)
			if err != nil {
				if database.IsForeignKeyViolation(err) {
					return database.ErrPromotionNotFound
				}
				return fmt.Errorf("add product promotion: %w", err)
			}
		}
		return nil
	})
}

func queryPromotions(ctx context.Context, q database.Querier, query string, args ...any) ([]models.Promotion, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	promotions := []models.Promotion{}
	for rows.Next() {
		var promotion models.Promotion
		if err := rows.Scan(&promotion.ID, &promotion.Description, &promotion.Discount); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		promotions = append(promotions, promotion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return promotions, nil
}
