package repository

import (
	"context"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// PurchaseRepository defines persistence access for completed purchases.
type PurchaseRepository interface {
	// Create records a purchase. Re-delivered webhooks hit the
	// (user_id, book_id) unique constraint and are silently absorbed;
	// Create reports whether a new row was written.
	Create(ctx context.Context, purchase *domain.Purchase) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error)
	Exists(ctx context.Context, userID, bookID string) (bool, error)
}

type purchaseRepository struct {
	db DB
}

// NewPurchaseRepository returns a Postgres-backed implementation.
func NewPurchaseRepository(db DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) (bool, error) {
	const query = `
        INSERT INTO purchases (user_id, book_id, amount, payment_intent_id)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, book_id) DO NOTHING`

	cmd, err := r.db.Exec(ctx, query,
		purchase.UserID,
		purchase.BookID,
		purchase.Amount,
		purchase.PaymentIntentID,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	const query = `
        SELECT id, user_id, book_id, amount, payment_intent_id, created_at
        FROM purchases WHERE user_id=$1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0)
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.BookID,
			&p.Amount,
			&p.PaymentIntentID,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (r *purchaseRepository) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM purchases WHERE user_id=$1 AND book_id=$2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, bookID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
