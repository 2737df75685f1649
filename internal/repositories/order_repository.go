package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velora-labs/velora-backend/internal/models"
	"github.com/velora-labs/velora-backend/internal/utils"
)

// ErrEmptyCart is reported when checkout finds no items in the cart.
var ErrEmptyCart = errors.New("cart is empty")

type OrderRepository interface {
	CreateOrderFromCart(ctx context.Context, cartID uuid.UUID, order *models.Order) error
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// CreateOrderFromCart converts the cart's items into an order in one
// transaction: it snapshots each item at the product's current price,
// computes the total from those snapshots, and clears the cart. Stock is not
// touched here, the cart already holds the reservation.
func (r *orderRepository) CreateOrderFromCart(ctx context.Context, cartID uuid.UUID, order *models.Order) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(dbCtx, `
		SELECT ci.product_id, ci.quantity, p.price, p.name
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`,
		cartID,
	)
	if err != nil {
		return fmt.Errorf("load cart items: %w", err)
	}

	items := []models.OrderItem{}
	total := decimal.Zero

	for rows.Next() {

		var item models.OrderItem
		var productName string

		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price, &productName); err != nil {
			rows.Close()
			return fmt.Errorf("scan cart item: %w", err)
		}

		// the confirmation email reads the name off the item, so carry it
		// without a second product lookup
		item.Product = &models.Product{ID: item.ProductID, Name: productName}

		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))

		items = append(items, item)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return err
	}

	if len(items) == 0 {
		return ErrEmptyCart
	}

	order.TotalPrice = total

	err = tx.QueryRowContext(dbCtx, `
		INSERT INTO orders (user_id, total_price, status, full_name, address, phone_number, email, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at`,
		order.UserID, order.TotalPrice, order.Status, order.FullName, order.Address, order.PhoneNumber, order.Email, order.PaymentMethod,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range items {

		items[i].OrderID = order.ID

		err := tx.QueryRowContext(dbCtx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].Price,
		).Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(dbCtx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if _, err := tx.ExecContext(dbCtx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}

	order.Items = items

	return tx.Commit()
}

func (r *orderRepository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{}

	query := `
		SELECT id, user_id, total_price, status, full_name, address, phone_number, email, payment_method, created_at
		FROM orders
		WHERE id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, orderID).
		Scan(&order.ID, &order.UserID, &order.TotalPrice, &order.Status, &order.FullName,
			&order.Address, &order.PhoneNumber, &order.Email, &order.PaymentMethod, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	if order.Items, err = r.loadItems(dbCtx, order.ID); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `
		SELECT id, user_id, total_price, status, full_name, address, phone_number, email, payment_method, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(dbCtx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {

		var order models.Order

		err := rows.Scan(&order.ID, &order.UserID, &order.TotalPrice, &order.Status, &order.FullName,
			&order.Address, &order.PhoneNumber, &order.Email, &order.PaymentMethod, &order.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		if orders[i].Items, err = r.loadItems(dbCtx, orders[i].ID); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `UPDATE orders SET status = $1 WHERE id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
		       p.id, p.category_id, p.name, p.description, p.price, p.stock, p.image_url, p.created_at, p.updated_at
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	defer rows.Close()

	items := []models.OrderItem{}

	for rows.Next() {

		var item models.OrderItem

		product := &models.Product{}

		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
			&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price, &product.Stock, &product.ImageURL, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		item.Product = product

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
