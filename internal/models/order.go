package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

const DefaultPaymentMethod = "Cash on Delivery"

type DeliveryInfo struct {
	FullName    string `json:"full_name" validate:"required"`
	Address     string `json:"address" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

// OrderItem is a snapshot of a cart item at purchase time. Price is the
// product's unit price when the order was placed and never changes afterwards.
type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   *Product        `json:"product,omitempty"`
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        OrderStatus     `json:"status"`
	FullName      string          `json:"full_name"`
	Address       string          `json:"address"`
	PhoneNumber   string          `json:"phone_number"`
	Email         string          `json:"email"`
	PaymentMethod string          `json:"payment_method"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PlaceOrderRequest struct {
	CartID        uuid.UUID    `json:"cart_id" validate:"required"`
	DeliveryInfo  DeliveryInfo `json:"delivery_info" validate:"required"`
	PaymentMethod string       `json:"payment_method,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=Pending Processing Shipped Delivered Cancelled"`
}
