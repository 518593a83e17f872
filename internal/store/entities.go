package store

import (
	"context"
	"database/sql"

	"github.com/roach88/auditlens/internal/audit"
)

// User is a row of the Users reference table; actors in audit records.
type User struct {
	ID       int64  `yaml:"user_id"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Role     string `yaml:"role"`
}

// Customer is a current-state Customers row.
type Customer struct {
	ID    int64  `yaml:"customer_id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
}

// Product is a current-state Products row.
type Product struct {
	ID            int64       `yaml:"product_id"`
	Name          string      `yaml:"name"`
	Price         audit.Money `yaml:"price"`
	StockQuantity int64       `yaml:"stock_quantity"`
	Category      string      `yaml:"category"`
}

// Order is a current-state Orders row.
type Order struct {
	ID          int64       `yaml:"order_id"`
	CustomerID  int64       `yaml:"customer_id"`
	Status      string      `yaml:"status"`
	TotalAmount audit.Money `yaml:"total_amount"`
}

// Payment is a current-state Payments row.
type Payment struct {
	ID            int64       `yaml:"payment_id"`
	OrderID       int64       `yaml:"order_id"`
	Amount        audit.Money `yaml:"amount"`
	PaymentStatus string      `yaml:"payment_status"`
}

// PutUser inserts or replaces a user.
func (s *Store) PutUser(ctx context.Context, u User) error {
	return s.exec(ctx, "put user", `
		INSERT INTO Users (user_id, username, email, role)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username, email = excluded.email, role = excluded.role
	`, u.ID, u.Username, nullIfEmpty(u.Email), u.Role)
}

// PutCustomer inserts or replaces a customer.
func (s *Store) PutCustomer(ctx context.Context, c Customer) error {
	return s.exec(ctx, "put customer", `
		INSERT INTO Customers (customer_id, name, email, phone)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (customer_id) DO UPDATE SET
			name = excluded.name, email = excluded.email, phone = excluded.phone
	`, c.ID, c.Name, nullIfEmpty(c.Email), nullIfEmpty(c.Phone))
}

// PutProduct inserts or replaces a product.
func (s *Store) PutProduct(ctx context.Context, p Product) error {
	return s.exec(ctx, "put product", `
		INSERT INTO Products (product_id, name, price, stock_quantity, category)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (product_id) DO UPDATE SET
			name = excluded.name, price = excluded.price,
			stock_quantity = excluded.stock_quantity, category = excluded.category
	`, p.ID, p.Name, p.Price, p.StockQuantity, nullIfEmpty(p.Category))
}

// PutOrder inserts or replaces an order. The customer must exist.
func (s *Store) PutOrder(ctx context.Context, o Order) error {
	return s.exec(ctx, "put order", `
		INSERT INTO Orders (order_id, customer_id, status, total_amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (order_id) DO UPDATE SET
			customer_id = excluded.customer_id, status = excluded.status,
			total_amount = excluded.total_amount
	`, o.ID, o.CustomerID, o.Status, o.TotalAmount)
}

// PutPayment inserts or replaces a payment. The order must exist.
func (s *Store) PutPayment(ctx context.Context, p Payment) error {
	return s.exec(ctx, "put payment", `
		INSERT INTO Payments (payment_id, order_id, amount, payment_status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (payment_id) DO UPDATE SET
			order_id = excluded.order_id, amount = excluded.amount,
			payment_status = excluded.payment_status
	`, p.ID, p.OrderID, p.Amount, p.PaymentStatus)
}

// DeleteEntity removes a current-state row. Its audit history is kept.
func (s *Store) DeleteEntity(ctx context.Context, kind audit.Kind, id int64) error {
	if _, err := audit.ParseKind(string(kind)); err != nil {
		return &StoreError{Code: CodeQueryFailure, Op: "delete entity", Err: err}
	}
	return s.exec(ctx, "delete entity",
		"DELETE FROM "+kind.EntityTable()+" WHERE "+kind.IDColumn()+" = ?", id)
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) error {
	if s.closed.Load() {
		return &StoreError{Code: CodeUnavailable, Op: op, Err: ErrClosed}
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(query), args...); err != nil {
		return Classify(op, err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
