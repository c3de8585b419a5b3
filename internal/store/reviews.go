package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

const reviewColumns = `id, product_id, name, description, date`

type ReviewInput struct {
	Name        string
	Description string
}

func scanReview(row rowScanner) (*models.Review, error) {
	review := &models.Review{}
	if err := row.Scan(&review.ID, &review.ProductID, &review.Name, &review.Description, &review.Date); err != nil {
		return nil, err
	}
	return review, nil
}

// ListReviews returns the reviews of one product. A missing product is an
// error rather than an empty list.
func ListReviews(ctx context.Context, q database.Querier, productID int64) ([]models.Review, error) {
	exists, err := productExists(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, database.ErrProductNotFound
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE product_id = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return reviews, nil
}

// GetReview returns the review only if it belongs to productID.
func GetReview(ctx context.Context, q database.Querier, productID, id int64) (*models.Review, error) {
	review, err := scanReview(q.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1 AND product_id = $2`, id, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

func GetReviewByID(ctx context.Context, q database.Querier, id int64) (*models.Review, error) {
	review, err := scanReview(q.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// CreateReview attaches the review to productID; callers take the id from
// the route, never from the payload.
func CreateReview(ctx context.Context, q database.Querier, productID int64, in ReviewInput) (*models.Review, error) {
	review, err := scanReview(q.QueryRowContext(ctx,
		`INSERT INTO reviews (product_id, name, description, date)
		 VALUES ($1, $2, $3, CURRENT_DATE)
		 RETURNING `+reviewColumns,
		productID, in.Name, in.Description))
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

func UpdateReview(ctx context.Context, q database.Querier, productID, id int64, in ReviewInput) (*models.Review, error) {
	review, err := scanReview(q.QueryRowContext(ctx,
		`UPDATE reviews SET name = $1, description = $2
		 WHERE id = $3 AND product_id = $4
		 RETURNING `+reviewColumns,
		in.Name, in.Description, id, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrReviewNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

func DeleteReview(ctx context.Context, q database.Querier, productID, id int64) error {
	result, err := q.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1 AND product_id = $2`, id, productID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return expectOneRow(result, database.ErrReviewNotFound)
}
