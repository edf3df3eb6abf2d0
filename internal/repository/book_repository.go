package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// BookRepository defines persistence access for catalog entries.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	Update(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id string) (*domain.Book, error)
	List(ctx context.Context) ([]domain.Book, error)
	Delete(ctx context.Context, id string) error
}

type bookRepository struct {
	db DB
}

// NewBookRepository returns a Postgres-backed implementation.
func NewBookRepository(db DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	const query = `
        INSERT INTO books (title, author, description, price, category, cover_image_url, pdf_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		book.Title,
		book.Author,
		book.Description,
		book.Price,
		book.Category,
		book.CoverImageURL,
		book.PDFURL,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	const query = `
        UPDATE books
        SET title=$1, author=$2, description=$3, price=$4, category=$5,
            cover_image_url=$6, pdf_url=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`

	return r.db.QueryRow(ctx, query,
		book.Title,
		book.Author,
		book.Description,
		book.Price,
		book.Category,
		book.CoverImageURL,
		book.PDFURL,
		book.ID,
	).Scan(&book.UpdatedAt)
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	const query = `
        SELECT id, title, author, description, price, category, cover_image_url, pdf_url, created_at, updated_at
        FROM books WHERE id=$1`

	var book domain.Book
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.Price,
		&book.Category,
		&book.CoverImageURL,
		&book.PDFURL,
		&book.CreatedAt,
		&book.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context) ([]domain.Book, error) {
	const query = `
        SELECT id, title, author, description, price, category, cover_image_url, pdf_url, created_at, updated_at
        FROM books ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]domain.Book, 0)
	for rows.Next() {
		var book domain.Book
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Description,
			&book.Price,
			&book.Category,
			&book.CoverImageURL,
			&book.PDFURL,
			&book.CreatedAt,
			&book.UpdatedAt,
		); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM books WHERE id=$1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
