package service

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/velora-labs/velora-backend/internal/api/middleware"
	"github.com/velora-labs/velora-backend/internal/errors"
	"github.com/velora-labs/velora-backend/internal/metrics"
	"github.com/velora-labs/velora-backend/internal/models"
	repository "github.com/velora-labs/velora-backend/internal/repositories"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, userID, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	repo          repository.OrderRepository
	cartRepo      repository.CartRepository
	notifications NotificationService
}

func NewOrderService(repo repository.OrderRepository, cartRepo repository.CartRepository, notifications NotificationService) OrderService {
	return &orderService{repo: repo, cartRepo: cartRepo, notifications: notifications}
}

// PlaceOrder turns the caller's cart into an order. The cart must belong to
// the caller; a cart owned by someone else is indistinguishable from a
// missing one.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest) (*models.Order, error) {

	logger := middleware.LoggerFromContext(ctx)

	cart, err := s.cartRepo.GetCartByID(ctx, req.CartID)
	if err != nil || cart.UserID != userID {
		return nil, errors.NotFoundError("Cart not found").WithError(err)
	}

	if len(cart.Items) == 0 {
		return nil, errors.BadRequestError("Cart is empty")
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.DefaultPaymentMethod
	}

	order := &models.Order{
		UserID:        userID,
		Status:        models.OrderStatusPending,
		FullName:      req.DeliveryInfo.FullName,
		Address:       req.DeliveryInfo.Address,
		PhoneNumber:   req.DeliveryInfo.PhoneNumber,
		Email:         req.DeliveryInfo.Email,
		PaymentMethod: paymentMethod,
	}

	if err := s.repo.CreateOrderFromCart(ctx, cart.ID, order); err != nil {

		if stderrors.Is(err, repository.ErrEmptyCart) {
			return nil, errors.BadRequestError("Cart is empty")
		}

		return nil, errors.DatabaseError("Failed to place order").WithError(err)
	}

	metrics.OrderPlaced()

	// confirmation is best effort, a failed email never rolls back the order
	if err := s.notifications.SendOrderConfirmation(ctx, order); err != nil {
		logger.Warn("Order confirmation email failed",
			slog.String("orderId", order.ID.String()), slog.Any("error", err))
	}

	return order, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	if order.UserID != userID {
		return nil, errors.ForbiddenError("Order belongs to another user")
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int, error) {

	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}

	orders, total, err := s.repo.ListOrdersByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, userID, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	if order.UserID != userID {
		return nil, errors.ForbiddenError("Order belongs to another user")
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, errors.DatabaseError("Failed to update order status").WithError(err)
	}

	order.Status = status

	return order, nil
}
