package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

func CreateTag(ctx context.Context, q database.Querier, label string) (*models.Tag, error) {
	tag := &models.Tag{}
	err := q.QueryRowContext(ctx,
		`INSERT INTO tags (label) VALUES ($1) RETURNING id, label`, label).Scan(&tag.ID, &tag.Label)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func GetTag(ctx context.Context, q database.Querier, id int64) (*models.Tag, error) {
	tag := &models.Tag{}
	err := q.QueryRowContext(ctx, `SELECT id, label FROM tags WHERE id = $1`, id).Scan(&tag.ID, &tag.Label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrTagNotFound
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// ListTags returns tags whose label contains search, alphabetically.
func ListTags(ctx context.Context, q database.Querier, search string) ([]models.Tag, error) {
	var where whereBuilder
	if search != "" {
		where.add("label ILIKE ?", containsPattern(search))
	}

	rows, err := q.QueryContext(ctx, `SELECT id, label FROM tags`+where.sql()+` ORDER BY label, id`, where.args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Label); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tags, nil
}

// GetTagsFor returns the tagged items pointing at (contentType, objectID),
// each joined with its tag. ContentObject is left unresolved.
func GetTagsFor(ctx context.Context, q database.Querier, contentType string, objectID int64) ([]models.TaggedItem, error) {
	ct, err := GetContentType(ctx, q, contentType)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT ti.id, ti.object_id, t.id, t.label
		 FROM tagged_items ti
		 JOIN tags t ON t.id = ti.tag_id
		 WHERE ti.content_type_id = $1 AND ti.object_id = $2
		 ORDER BY ti.id`,
		ct.ID, objectID)
	if err != nil {
		return nil, fmt.Errorf("get tags for %s %d: %w", contentType, objectID, err)
	}
	defer rows.Close()

	items := []models.TaggedItem{}
	for rows.Next() {
		item := models.TaggedItem{ContentType: ct}
		if err := rows.Scan(&item.ID, &item.ObjectID, &item.Tag.ID, &item.Tag.Label); err != nil {
			return nil, fmt.Errorf("scan tagged item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

// TagObject applies tagID to the object after checking the object exists.
func TagObject(ctx context.Context, q database.Querier, tagID int64, contentType string, objectID int64) (*models.TaggedItem, error) {
	ct, err := GetContentType(ctx, q, contentType)
	if err != nil {
		return nil, err
	}

	obj, err := ResolveObject(ctx, q, ct, objectID)
	if err != nil {
		return nil, err
	}

	tag, err := GetTag(ctx, q, tagID)
	if err != nil {
		return nil, err
	}

	item := &models.TaggedItem{Tag: *tag, ContentType: ct, ObjectID: objectID, ContentObject: obj}
	err = q.QueryRowContext(ctx,
		`INSERT INTO tagged_items (tag_id, content_type_id, object_id) VALUES ($1, $2, $3) RETURNING id`,
		tagID, ct.ID, objectID).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("tag object: %w", err)
	}
	return item, nil
}

// ReplaceTags makes tagIDs the complete tag set of the object.
func ReplaceTags(ctx context.Context, db *sql.DB, contentType string, objectID int64, tagIDs []int64) ([]models.TaggedItem, error) {
	var items []models.TaggedItem

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		ct, err := GetContentType(ctx, tx, contentType)
		if err != nil {
			return err
		}

		if _, err := ResolveObject(ctx, tx, ct, objectID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM tagged_items WHERE content_type_id = $1 AND object_id = $2`,
			ct.ID, objectID)
		if err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}

		if len(tagIDs) > 0 {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO tagged_items (tag_id, content_type_id, object_id)
				 SELECT DISTINCT t, $2::INTEGER, $3::BIGINT FROM UNNEST($1::BIGINT[]) AS t`,
				pq.Array(tagIDs), ct.ID, objectID)
			if err != nil {
				if database.IsForeignKeyViolation(err) {
					return database.ErrTagNotFound
				}
				return fmt.Errorf("insert tags: %w", err)
			}
		}

		items, err = GetTagsFor(ctx, tx, contentType, objectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
