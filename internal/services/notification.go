package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velora-labs/velora-backend/internal/models"
	repository "github.com/velora-labs/velora-backend/internal/repositories"
	"github.com/velora-labs/velora-backend/pkg/sendGrid"
)

type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
	GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error)
}

type notificationService struct {
	repo         repository.NotificationRepository
	emailService sendGrid.EmailService
}

func NewNotificationService(repo repository.NotificationRepository, emailService sendGrid.EmailService) NotificationService {
	return &notificationService{repo: repo, emailService: emailService}
}

// SendOrderConfirmation records the confirmation attempt, sends the email
// and stores the outcome on the notification row.
func (n *notificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {

	subject := fmt.Sprintf("Order confirmation #%s", order.ID)
	content := buildOrderConfirmationBody(order)

	notification := &models.Notification{
		ID:        uuid.New(),
		Type:      models.NotificationTypeEmail,
		Recipient: order.Email,
		Subject:   subject,
		Content:   content,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification record: %w", err)
	}

	email := &models.Email{
		To:      order.Email,
		Subject: subject,
		Content: content,
	}

	if err := n.emailService.Send(ctx, email); err != nil {

		_ = n.repo.UpdateNotificationStatus(ctx, notification.ID, models.StatusFailed, err.Error())

		return fmt.Errorf("failed to send email: %w", err)
	}

	if err := n.repo.UpdateNotificationStatus(ctx, notification.ID, models.StatusSent, ""); err != nil {
		return fmt.Errorf("notification sent successfully but failed to update notification status: %w", err)
	}

	return nil
}

// GetNotification implements NotificationService.
func (n *notificationService) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {

	return n.repo.GetNotificationById(ctx, id)
}

func buildOrderConfirmationBody(order *models.Order) string {

	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\n", order.FullName)
	fmt.Fprintf(&b, "Thank you for your order! Here is your summary:\n\n")

	for _, item := range order.Items {

		name := item.ProductID.String()
		if item.Product != nil {
			name = item.Product.Name
		}

		fmt.Fprintf(&b, "- %s x%d at %s each\n", name, item.Quantity, item.Price.StringFixed(2))
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", order.TotalPrice.StringFixed(2))
	fmt.Fprintf(&b, "Payment method: %s\n", order.PaymentMethod)
	fmt.Fprintf(&b, "Delivery address: %s\n", order.Address)

	return b.String()
}
