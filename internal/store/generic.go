package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

// Content type keys seeded by the initial migration.
const (
	ContentTypeUser       = "auth.user"
	ContentTypeCollection = "store.collection"
	ContentTypeProduct    = "store.product"
	ContentTypePromotion  = "store.promotion"
	ContentTypeCustomer   = "store.customer"
	ContentTypeOrder      = "store.order"
	ContentTypeReview     = "store.review"
	ContentTypeTag        = "tags.tag"
)

// objectLoader fetches the concrete row behind a generic (type, id) pair.
// Object ids are assumed to be positive integers, so non-integer keyed tables
// such as carts cannot be targets.
type objectLoader func(ctx context.Context, q database.Querier, id int64) (any, error)

var contentObjectLoaders = map[string]objectLoader{
	ContentTypeUser: func(ctx context.Context, q database.Querier, id int64) (any, error) {
		return GetUser(ctx, q, id)
	},
	ContentTypeCollection: func(ctx context.Context, q database.Querier, id int64) (any, error) {
		return GetCollection(ctx, q, id)
	},
	ContentTypeProduct: func(ctx context.Context, q database.Querier, id int64) (any, error) {
		return GetProduct(ctx, q, id)
	},
	ContentTypePromotion: func(ctx context.Context, q database.Querier, id int64) (any, error) {
		return GetPromotion(ctx, q, id)
	},
	ContentTypeCustomer: func(ctx context.Context, q database.Querier, id int64) (any, error) {
		return GetCustomer(ctx, q, id)
	},
	ContentTypeOrder: func(ctx context.Context, q database.Querier, id int64) (any, error) {
		return GetOrder(ctx, q, id)
	},
	ContentTypeReview: func(ctx context.Context, q database.Querier, id int64) (any, error) {
		return GetReviewByID(ctx, q, id)
	},
	ContentTypeTag: func(ctx context.Context, q database.Querier, id int64) (any, error) {
		return GetTag(ctx, q, id)
	},
}

var notFoundErrors = []error{
	database.ErrUserNotFound,
	database.ErrCollectionNotFound,
	database.ErrProductNotFound,
	database.ErrPromotionNotFound,
	database.ErrCustomerNotFound,
	database.ErrOrderNotFound,
	database.ErrReviewNotFound,
	database.ErrTagNotFound,
}

func GetContentType(ctx context.Context, q database.Querier, key string) (models.ContentType, error) {
	appLabel, model, err := models.ParseContentTypeKey(key)
	if err != nil {
		return models.ContentType{}, database.ErrUnknownContentType
	}
	if _, ok := contentObjectLoaders[appLabel+"."+model]; !ok {
		return models.ContentType{}, database.ErrUnknownContentType
	}

	ct := models.ContentType{}
	err = q.QueryRowContext(ctx,
		`SELECT id, app_label, model FROM content_types WHERE app_label = $1 AND model = $2`,
		appLabel, model).Scan(&ct.ID, &ct.AppLabel, &ct.Model)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ContentType{}, database.ErrUnknownContentType
		}
		return models.ContentType{}, fmt.Errorf("get content type: %w", err)
	}

	return ct, nil
}

// ResolveObject loads the entity a generic relation points at. A dangling
// reference yields database.ErrObjectNotFound.
func ResolveObject(ctx context.Context, q database.Querier, ct models.ContentType, id int64) (any, error) {
	load, ok := contentObjectLoaders[ct.Key()]
	if !ok {
		return nil, database.ErrUnknownContentType
	}
	if id <= 0 {
		return nil, database.ErrObjectNotFound
	}

	obj, err := load(ctx, q, id)
	if err != nil {
		for _, notFound := range notFoundErrors {
			if errors.Is(err, notFound) {
				return nil, database.ErrObjectNotFound
			}
		}
		return nil, fmt.Errorf("resolve %s %d: %w", ct.Key(), id, err)
	}

	return obj, nil
}

func deleteGenericReferences(ctx context.Context, q database.Querier, key string, id int64) error {
	appLabel, model, err := models.ParseContentTypeKey(key)
	if err != nil {
		return err
	}

	for _, table := range []string{"tagged_items", "liked_items"} {
		_, err := q.ExecContext(ctx,
			`DELETE FROM `+table+`
			 WHERE object_id = $1
			   AND content_type_id = (SELECT id FROM content_types WHERE app_label = $2 AND model = $3)`,
			id, appLabel, model)
		if err != nil {
			return fmt.Errorf("delete %s for %s %d: %w", table, key, id, err)
		}
	}

	return nil
}
