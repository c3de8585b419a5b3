package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

const customerColumns = `cu.id, cu.first_name, cu.last_name, cu.email, cu.phone, cu.birth_date, cu.membership`

type CustomerInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	BirthDate  *time.Time
	Membership models.Membership
}

// CustomerSummary is a customer annotated with how many orders they placed.
type CustomerSummary struct {
	models.Customer
	OrdersCount int `json:"orders_count"`
}

func scanCustomer(row rowScanner, extra ...any) (*models.Customer, error) {
	customer := &models.Customer{}
	var birthDate sql.NullTime
	var membership string
	dest := append([]any{
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&birthDate,
		&membership,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if birthDate.Valid {
		customer.BirthDate = &birthDate.Time
	}
	customer.Membership = models.Membership(membership)
	return customer, nil
}

func CreateCustomer(ctx context.Context, q database.Querier, in CustomerInput) (*models.Customer, error) {
	if in.Membership == "" {
		in.Membership = models.MembershipBronze
	}

	row := q.QueryRowContext(ctx,
		`INSERT INTO customers AS cu (first_name, last_name, email, phone, birth_date, membership)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+customerColumns,
		in.FirstName, in.LastName, in.Email, in.Phone, nullableTime(in.BirthDate), string(in.Membership))

	customer, err := scanCustomer(row)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, q database.Querier, id int64) (*models.Customer, error) {
	customer, err := scanCustomer(q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers cu WHERE cu.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return customer, nil
}

var customerOrderings = map[string]string{
	"":              "cu.first_name, cu.last_name, cu.id",
	"first_name":    "cu.first_name, cu.last_name, cu.id",
	"-first_name":   "cu.first_name DESC, cu.last_name DESC, cu.id DESC",
	"last_name":     "cu.last_name, cu.first_name, cu.id",
	"-last_name":    "cu.last_name DESC, cu.first_name DESC, cu.id DESC",
	"orders_count":  "orders_count, cu.id",
	"-orders_count": "orders_count DESC, cu.id DESC",
}

func IsCustomerOrdering(key string) bool {
	_, ok := customerOrderings[key]
	return ok
}

// ListCustomers pages through customers ordered by name. search matches the
// start of the first or last name, case-insensitively.
func ListCustomers(ctx context.Context, q database.Querier, search, ordering string, page, pageSize int) (*OffsetPage, error) {
	page, pageSize, offset := pageBounds(page, pageSize)

	var where whereBuilder
	if search != "" {
		where.add("(cu.first_name ILIKE ? OR cu.last_name ILIKE ?)", prefixPattern(search))
	}

	var total int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers cu`+where.sql(), where.args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	orderBy, ok := customerOrderings[ordering]
	if !ok {
		orderBy = customerOrderings[""]
	}

	query := `SELECT ` + customerColumns + `,
	       (SELECT COUNT(*) FROM orders o WHERE o.customer_id = cu.id) AS orders_count
	FROM customers cu` + where.sql() +
		` ORDER BY ` + orderBy +
		` LIMIT ` + where.next(pageSize) + ` OFFSET ` + where.next(offset)

	rows, err := q.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []CustomerSummary{}
	for rows.Next() {
		var ordersCount int
		customer, err := scanCustomer(rows, &ordersCount)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, CustomerSummary{Customer: *customer, OrdersCount: ordersCount})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(customers, total, page, pageSize), nil
}

func UpdateMembership(ctx context.Context, q database.Querier, id int64, membership models.Membership) (*models.Customer, error) {
	result, err := q.ExecContext(ctx, `UPDATE customers SET membership = $1 WHERE id = $2`, string(membership), id)
	if err != nil {
		if database.IsCheckViolation(err) {
			return nil, database.ErrInvalidChoice
		}
		return nil, fmt.Errorf("update membership: %w", err)
	}

	if err := expectOneRow(result, database.ErrCustomerNotFound); err != nil {
		return nil, err
	}

	return GetCustomer(ctx, q, id)
}

// DeleteCustomer is blocked while the customer has orders; addresses cascade.
func DeleteCustomer(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return database.ErrCustomerHasOrders
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	return expectOneRow(result, database.ErrCustomerNotFound)
}

func CreateAddress(ctx context.Context, q database.Querier, customerID int64, street, city string) (*models.Address, error) {
	address := &models.Address{}
	err := q.QueryRowContext(ctx,
		`INSERT INTO addresses (street, city, customer_id) VALUES ($1, $2, $3)
		 RETURNING id, street, city, customer_id`,
		street, city, customerID).Scan(&address.ID, &address.Street, &address.City, &address.CustomerID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, database.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("create address: %w", err)
	}
	return address, nil
}

func ListAddresses(ctx context.Context, q database.Querier, customerID int64) ([]models.Address, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, street, city, customer_id FROM addresses WHERE customer_id = $1 ORDER BY id`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		var address models.Address
		if err := rows.Scan(&address.ID, &address.Street, &address.City, &address.CustomerID); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, address)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return addresses, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
