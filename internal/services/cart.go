package service

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velora-labs/velora-backend/internal/errors"
	"github.com/velora-labs/velora-backend/internal/models"
	repository "github.com/velora-labs/velora-backend/internal/repositories"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, req *models.RemoveItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error)
}

type cartService struct {
	repo repository.CartRepository
}

func NewCartService(repo repository.CartRepository) CartService {
	return &cartService{repo: repo}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.repo.GetCartByUserID(ctx, userID)

	if stderrors.Is(err, sql.ErrNoRows) {

		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}

		if err := s.repo.CreateCart(ctx, cart); err != nil {
			return nil, errors.DatabaseError("Failed to create cart").WithError(err)
		}

		return cart, nil
	}

	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	cart.TotalPrice = calculateTotal(cart.Items)

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		return nil, mapCartError(err, "Failed to add item to cart")
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, req *models.RemoveItemRequest) (*models.Cart, error) {

	cart, err := s.repo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NotFoundError("Cart not found").WithError(err)
	}

	if err := s.repo.RemoveItem(ctx, cart.ID, req.ProductID); err != nil {
		return nil, mapCartError(err, "Failed to remove item from cart")
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error) {

	cart, err := s.repo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NotFoundError("Cart not found").WithError(err)
	}

	if err := s.repo.UpdateItemQuantity(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		return nil, mapCartError(err, "Failed to update item quantity")
	}

	return s.GetCart(ctx, userID)
}

func mapCartError(err error, fallback string) error {

	switch {
	case stderrors.Is(err, repository.ErrProductNotFound):
		return errors.NotFoundError("Product not found").WithError(err)
	case stderrors.Is(err, repository.ErrCartItemNotFound):
		return errors.NotFoundError("Item not found in the cart").WithError(err)
	case stderrors.Is(err, repository.ErrInsufficientStock):
		return errors.InsufficientStockError("Not enough stock for the requested quantity").WithError(err)
	default:
		return errors.DatabaseError(fallback).WithError(err)
	}
}

func calculateTotal(items []models.CartItem) decimal.Decimal {

	total := decimal.Zero

	for _, item := range items {
		if item.Product != nil {
			total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	return total
}
