package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Read-only fields are declared as json.RawMessage so that clients echoing a
// full representation back are not rejected as sending unknown fields.

type ProductResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Inventory    int    `json:"inventory"`
	UnitPrice    string `json:"unit_price"`
	Description  string `json:"description"`
	Collection   int64  `json:"collection"`
	PriceWithTax string `json:"price_with_tax"`
}

func SerializeProduct(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Inventory:    p.Inventory,
		UnitPrice:    formatPrice(p.UnitPrice),
		Description:  p.Description,
		Collection:   p.CollectionID,
		PriceWithTax: p.PriceWithTax().String(),
	}
}

func serializeProducts(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, SerializeProduct(&products[i]))
	}
	return out
}

// formatPrice renders a NUMERIC(6,2) value with both decimal places.
func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(models.PriceDecimalPlaces)
}

type productRequest struct {
	ID           json.RawMessage  `json:"id"`
	Title        string           `json:"title" binding:"required,max=255"`
	Slug         string           `json:"slug" binding:"omitempty,max=255,slug"`
	Inventory    *int             `json:"inventory" binding:"required,min=-2147483648,max=2147483647"`
	UnitPrice    *decimal.Decimal `json:"unit_price" binding:"required,money"`
	Description  string           `json:"description"`
	Collection   *int64           `json:"collection" binding:"required"`
	PriceWithTax json.RawMessage  `json:"price_with_tax"`
}

type productPatchRequest struct {
	ID           json.RawMessage  `json:"id"`
	Title        *string          `json:"title" binding:"omitempty,min=1,max=255"`
	Slug         *string          `json:"slug" binding:"omitempty,min=1,max=255,slug"`
	Inventory    *int             `json:"inventory" binding:"omitempty,min=-2147483648,max=2147483647"`
	UnitPrice    *decimal.Decimal `json:"unit_price" binding:"omitempty,money"`
	Description  *string          `json:"description"`
	Collection   *int64           `json:"collection"`
	PriceWithTax json.RawMessage  `json:"price_with_tax"`
}

type CollectionResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	ProductsCount   int    `json:"products_count"`
	FeaturedProduct *int64 `json:"featured_product"`
}

func serializeCollection(c *models.Collection) CollectionResponse {
	return CollectionResponse{
		ID:              c.ID,
		Title:           c.Title,
		ProductsCount:   c.ProductsCount,
		FeaturedProduct: c.FeaturedProductID,
	}
}

type collectionRequest struct {
	ID              json.RawMessage `json:"id"`
	Title           string          `json:"title" binding:"required,max=255"`
	FeaturedProduct optionalID      `json:"featured_product"`
	ProductsCount   json.RawMessage `json:"products_count"`
}

type collectionPatchRequest struct {
	ID              json.RawMessage `json:"id"`
	Title           *string         `json:"title" binding:"omitempty,min=1,max=255"`
	FeaturedProduct optionalID      `json:"featured_product"`
	ProductsCount   json.RawMessage `json:"products_count"`
}

// optionalID tells an absent id apart from an explicit null.
type optionalID struct {
	Set   bool
	Value *int64
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type ReviewResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Product     int64  `json:"product"`
}

func serializeReview(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:          r.ID,
		Date:        r.Date.Format(dateLayout),
		Name:        r.Name,
		Description: r.Description,
		Product:     r.ProductID,
	}
}

type reviewRequest struct {
	ID          json.RawMessage `json:"id"`
	Date        json.RawMessage `json:"date"`
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description" binding:"required"`
	Product     json.RawMessage `json:"product"`
}

type reviewPatchRequest struct {
	ID          json.RawMessage `json:"id"`
	Date        json.RawMessage `json:"date"`
	Name        *string         `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string         `json:"description" binding:"omitempty,min=1"`
	Product     json.RawMessage `json:"product"`
}

type simpleProduct struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
}

type CartItemResponse struct {
	ID         int64         `json:"id"`
	Product    simpleProduct `json:"product"`
	Quantity   int           `json:"quantity"`
	TotalPrice string        `json:"total_price"`
}

type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	CreatedAt  time.Time          `json:"created_at"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice string             `json:"total_price"`
}

func serializeCartItem(item *models.CartItem) CartItemResponse {
	out := CartItemResponse{
		ID:         item.ID,
		Product:    simpleProduct{ID: item.ProductID},
		Quantity:   item.Quantity,
		TotalPrice: formatPrice(item.TotalPrice()),
	}
	if item.Product != nil {
		out.Product.Title = item.Product.Title
		out.Product.UnitPrice = formatPrice(item.Product.UnitPrice)
	}
	return out
}

func serializeCart(cart *models.Cart) CartResponse {
	out := CartResponse{
		ID:         cart.ID,
		CreatedAt:  cart.CreatedAt,
		Items:      make([]CartItemResponse, 0, len(cart.Items)),
		TotalPrice: formatPrice(cart.TotalPrice()),
	}
	for i := range cart.Items {
		out.Items = append(out.Items, serializeCartItem(&cart.Items[i]))
	}
	return out
}

type cartRequest struct {
	ID         json.RawMessage `json:"id"`
	CreatedAt  json.RawMessage `json:"created_at"`
	Items      json.RawMessage `json:"items"`
	TotalPrice json.RawMessage `json:"total_price"`
}

type cartItemRequest struct {
	ID         json.RawMessage `json:"id"`
	Product    *int64          `json:"product" binding:"required"`
	Quantity   *int            `json:"quantity" binding:"required,min=1,max=32767"`
	TotalPrice json.RawMessage `json:"total_price"`
}

type userRequest struct {
	ID        json.RawMessage `json:"id"`
	Username  string          `json:"username" binding:"required,max=150"`
	Email     string          `json:"email" binding:"omitempty,email,max=254"`
	FirstName string          `json:"first_name" binding:"max=150"`
	LastName  string          `json:"last_name" binding:"max=150"`
}

type tagRequest struct {
	ID    json.RawMessage `json:"id"`
	Label string          `json:"label" binding:"required,max=255"`
}

type likeRequest struct {
	ID            json.RawMessage `json:"id"`
	ContentType   string          `json:"content_type" binding:"required"`
	ObjectID      *int64          `json:"object_id" binding:"required,gt=0"`
	ContentObject json.RawMessage `json:"content_object"`
}

type ContentTypeResponse struct {
	ID       int64  `json:"id"`
	AppLabel string `json:"app_label"`
	Model    string `json:"model"`
}

type LikedItemResponse struct {
	ID            int64               `json:"id"`
	ContentType   ContentTypeResponse `json:"content_type"`
	ObjectID      int64               `json:"object_id"`
	ContentObject any                 `json:"content_object"`
}

type TaggedItemResponse struct {
	ID          int64               `json:"id"`
	Tag         models.Tag          `json:"tag"`
	ContentType ContentTypeResponse `json:"content_type"`
	ObjectID    int64               `json:"object_id"`
}

func serializeContentType(ct models.ContentType) ContentTypeResponse {
	return ContentTypeResponse{ID: ct.ID, AppLabel: ct.AppLabel, Model: ct.Model}
}

func serializeLike(item *models.LikedItem) LikedItemResponse {
	return LikedItemResponse{
		ID:            item.ID,
		ContentType:   serializeContentType(item.ContentType),
		ObjectID:      item.ObjectID,
		ContentObject: SerializeObject(item.ContentObject),
	}
}

// SerializeTaggedItems renders tagged items without their target objects.
func SerializeTaggedItems(items []models.TaggedItem) []TaggedItemResponse {
	out := make([]TaggedItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, TaggedItemResponse{
			ID:          item.ID,
			Tag:         item.Tag,
			ContentType: serializeContentType(item.ContentType),
			ObjectID:    item.ObjectID,
		})
	}
	return out
}

// SerializeObject renders a resolved generic target with the same shape its
// own endpoint uses. Unresolved targets stay nil.
func SerializeObject(obj any) any {
	switch v := obj.(type) {
	case nil:
		return nil
	case *models.Product:
		return SerializeProduct(v)
	case *models.Collection:
		return serializeCollection(v)
	case *models.Review:
		return serializeReview(v)
	default:
		return v
	}
}
