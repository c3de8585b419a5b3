package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

func LikeObject(ctx context.Context, q database.Querier, userID int64, contentType string, objectID int64) (*models.LikedItem, error) {
	ct, err := GetContentType(ctx, q, contentType)
	if err != nil {
		return nil, err
	}

	obj, err := ResolveObject(ctx, q, ct, objectID)
	if err != nil {
		return nil, err
	}

	item := &models.LikedItem{UserID: userID, ContentType: ct, ObjectID: objectID, ContentObject: obj}
	err = q.QueryRowContext(ctx,
		`INSERT INTO liked_items (user_id, content_type_id, object_id) VALUES ($1, $2, $3) RETURNING id`,
		userID, ct.ID, objectID).Scan(&item.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("like object: %w", err)
	}
	return item, nil
}

// ListLikes returns the user's liked items with their targets resolved. A
// target that no longer exists leaves ContentObject nil.
func ListLikes(ctx context.Context, q database.Querier, userID int64) ([]models.LikedItem, error) {
	if _, err := GetUser(ctx, q, userID); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT li.id, li.user_id, li.object_id, ct.id, ct.app_label, ct.model
		 FROM liked_items li
		 JOIN content_types ct ON ct.id = li.content_type_id
		 WHERE li.user_id = $1
		 ORDER BY li.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}

	items := []models.LikedItem{}
	for rows.Next() {
		var item models.LikedItem
		err := rows.Scan(&item.ID, &item.UserID, &item.ObjectID,
			&item.ContentType.ID, &item.ContentType.AppLabel, &item.ContentType.Model)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan liked item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("rows error: %w", err)
	}
	// Close before resolving so a single-connection querier is free again.
	rows.Close()

	for i := range items {
		obj, err := ResolveObject(ctx, q, items[i].ContentType, items[i].ObjectID)
		if err != nil {
			if errors.Is(err, database.ErrObjectNotFound) || errors.Is(err, database.ErrUnknownContentType) {
				continue
			}
			return nil, err
		}
		items[i].ContentObject = obj
	}

	return items, nil
}

func DeleteLike(ctx context.Context, q database.Querier, userID, id int64) error {
	result, err := q.ExecContext(ctx,
		`DELETE FROM liked_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return expectOneRow(result, database.ErrLikedItemNotFound)
}
