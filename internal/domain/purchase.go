package domain

import "time"

// Purchase records one completed checkout. The (UserID, BookID) pair is
// unique: replaying a webhook never produces a second row.
type Purchase struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	BookID          string    `json:"book_id"`
	Amount          float64   `json:"amount"`
	PaymentIntentID string    `json:"payment_intent_id"`
	CreatedAt       time.Time `json:"created_at"`
}
