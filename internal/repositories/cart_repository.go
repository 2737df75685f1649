package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/velora-labs/velora-backend/internal/models"
	"github.com/velora-labs/velora-backend/internal/utils"
)

var (
	// ErrInsufficientStock is reported when a conditional stock update
	// matches no row, i.e. the product cannot cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
)

type CartRepository interface {
	CreateCart(ctx context.Context, cart *models.Cart) error
	GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetCartByID(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	UpdateItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

func (r *cartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	return r.DB.QueryRowContext(dbCtx, query, cart.UserID).
		Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	cart := &models.Cart{}

	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if cart.Items, err = r.loadItems(dbCtx, cart.ID); err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *cartRepository) GetCartByID(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	cart := &models.Cart{}

	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, cartID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if cart.Items, err = r.loadItems(dbCtx, cart.ID); err != nil {
		return nil, err
	}

	return cart, nil
}

// AddItem reserves stock for the added quantity and upserts the cart item in
// one transaction. The stock check and decrement are a single conditional
// UPDATE, so concurrent additions can never reserve more than is available.
func (r *cartRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(dbCtx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return fmt.Errorf("check product: %w", err)
	}

	if !exists {
		return ErrProductNotFound
	}

	result, err := tx.ExecContext(dbCtx, `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1`,
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrInsufficientStock
	}

	_, err = tx.ExecContext(dbCtx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cartID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	if err := r.touchCart(dbCtx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveItem deletes the cart item and returns its full quantity to the
// product's stock, atomically.
func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var quantity int

	err = tx.QueryRowContext(dbCtx, `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
		RETURNING quantity`,
		cartID, productID,
	).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartItemNotFound
	}

	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	_, err = tx.ExecContext(dbCtx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2`,
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}

	if err := r.touchCart(dbCtx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateItemQuantity sets the item quantity to an absolute value and moves
// the signed difference between the product stock and the reservation. A
// quantity of zero removes the item. The item row is locked for the duration
// of the transaction so the old quantity cannot change under us.
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var oldQuantity int

	err = tx.QueryRowContext(dbCtx, `
		SELECT quantity FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
		FOR UPDATE`,
		cartID, productID,
	).Scan(&oldQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartItemNotFound
	}

	if err != nil {
		return fmt.Errorf("lock cart item: %w", err)
	}

	if quantity == 0 {

		if _, err := tx.ExecContext(dbCtx, `
			DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
			cartID, productID,
		); err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}

		if _, err := tx.ExecContext(dbCtx, `
			UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2`,
			oldQuantity, productID,
		); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}

		if err := r.touchCart(dbCtx, tx, cartID); err != nil {
			return err
		}

		return tx.Commit()
	}

	diff := quantity - oldQuantity

	switch {
	case diff > 0:

		result, err := tx.ExecContext(dbCtx, `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1`,
			diff, productID,
		)
		if err != nil {
			return fmt.Errorf("reserve stock: %w", err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrInsufficientStock
		}

	case diff < 0:

		if _, err := tx.ExecContext(dbCtx, `
			UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2`,
			-diff, productID,
		); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
	}

	if _, err := tx.ExecContext(dbCtx, `
		UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND product_id = $3`,
		quantity, cartID, productID,
	); err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}

	if err := r.touchCart(dbCtx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *cartRepository) loadItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {

	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
		       p.id, p.category_id, p.name, p.description, p.price, p.stock, p.image_url, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	rows, err := r.DB.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	defer rows.Close()

	items := []models.CartItem{}

	for rows.Next() {

		var item models.CartItem

		product := &models.Product{}

		err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price, &product.Stock, &product.ImageURL, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		item.Product = product

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepository) touchCart(ctx context.Context, tx *sql.Tx, cartID uuid.UUID) error {

	if _, err := tx.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}

	return nil
}
