package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered    EventType = "user_registered"
	EventPurchaseCompleted EventType = "purchase_completed"
	EventBookCreated       EventType = "book_created"
	EventBookDeleted       EventType = "book_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// PurchaseCompletedPayload payload.
type PurchaseCompletedPayload struct {
	UserID          string  `json:"user_id"`
	BookID          string  `json:"book_id"`
	Amount          float64 `json:"amount"`
	PaymentIntentID string  `json:"payment_intent_id"`
}

// BookCreatedPayload payload.
type BookCreatedPayload struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
}

// BookDeletedPayload payload.
type BookDeletedPayload struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
}
