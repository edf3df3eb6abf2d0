package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/config"
	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/payment"
	"github.com/spec-kit/bookstore-service/internal/repository"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// CheckoutClient is the payment-processor surface PurchaseService needs.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, p payment.CheckoutParams) (*payment.CheckoutSession, error)
}

// PurchaseService creates checkout sessions and records completed payments
// delivered by the processor's webhook.
type PurchaseService struct {
	books      repository.BookRepository
	purchases  repository.PurchaseRepository
	checkout   CheckoutClient
	cfg        config.PaymentConfig
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewPurchaseService builds the service.
func NewPurchaseService(
	books repository.BookRepository,
	purchases repository.PurchaseRepository,
	checkout CheckoutClient,
	cfg config.PaymentConfig,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		books:      books,
		purchases:  purchases,
		checkout:   checkout,
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Checkout creates a hosted checkout session for the book and returns its
// redirect URL. Book and user identifiers travel as session metadata and come
// back on the completion webhook.
func (s *PurchaseService) Checkout(ctx context.Context, userID, bookID string) (string, error) {
	if bookID == "" {
		return "", apperrors.NewValidationError("bookId is required", nil)
	}

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("book", map[string]any{"id": bookID})
		}
		return "", apperrors.MapError(err)
	}

	owned, err := s.purchases.Exists(ctx, userID, bookID)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if owned {
		return "", apperrors.NewConflict("book already purchased", map[string]any{"book_id": bookID})
	}

	session, err := s.checkout.CreateCheckoutSession(ctx, payment.CheckoutParams{
		BookID:     book.ID,
		UserID:     userID,
		BookTitle:  book.Title,
		Amount:     book.Price,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return session.URL, nil
}

// HandleWebhook verifies and processes one webhook delivery. Only
// checkout.session.completed mutates state; other event types are
// acknowledged and dropped. Replayed deliveries are absorbed by the
// purchases unique constraint.
func (s *PurchaseService) HandleWebhook(ctx context.Context, payloadBytes []byte, signatureHeader string) error {
	if s.cfg.WebhookSecret != "" {
		if err := payment.VerifySignature(payloadBytes, signatureHeader, s.cfg.WebhookSecret, payment.DefaultSignatureTolerance); err != nil {
			return apperrors.NewUnauthorized("invalid webhook signature")
		}
	}

	event, err := payment.ParseEvent(payloadBytes)
	if err != nil {
		return apperrors.NewValidationError("malformed webhook payload", nil)
	}

	if event.Type != payment.EventCheckoutCompleted {
		s.logger.Debug("ignoring webhook event", zap.String("type", event.Type))
		return nil
	}

	bookID := event.Data.Object.Metadata["bookId"]
	userID := event.Data.Object.Metadata["userId"]
	if bookID == "" || userID == "" {
		s.logger.Warn("checkout completed without purchase metadata", zap.String("event_id", event.ID))
		return nil
	}

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return apperrors.MapError(err)
	}

	purchase := &domain.Purchase{
		UserID:          userID,
		BookID:          bookID,
		Amount:          book.Price,
		PaymentIntentID: event.Data.Object.PaymentIntent,
	}
	created, err := s.purchases.Create(ctx, purchase)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !created {
		s.logger.Info("purchase already recorded", zap.String("user_id", userID), zap.String("book_id", bookID))
		return nil
	}

	s.publish(ctx, events.EventPurchaseCompleted, events.PurchaseCompletedPayload{
		UserID:          userID,
		BookID:          bookID,
		Amount:          book.Price,
		PaymentIntentID: event.Data.Object.PaymentIntent,
	})
	return nil
}

// ListForUser returns the caller's purchases.
func (s *PurchaseService) ListForUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	purchases, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return purchases, nil
}

func (s *PurchaseService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
