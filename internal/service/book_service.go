package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/media"
	"github.com/spec-kit/bookstore-service/internal/repository"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// BookService manages the catalog and the media assets hanging off it.
type BookService struct {
	books      repository.BookRepository
	media      media.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewBookService builds the service.
func NewBookService(books repository.BookRepository, store media.Store, dispatcher events.Dispatcher, logger *zap.Logger) *BookService {
	return &BookService{books: books, media: store, dispatcher: dispatcher, logger: logger}
}

// List returns the catalog, newest first.
func (s *BookService) List(ctx context.Context) ([]domain.Book, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return books, nil
}

// Create adds a catalog entry.
func (s *BookService) Create(ctx context.Context, book *domain.Book) error {
	if book.Title == "" || book.Author == "" || book.PDFURL == "" {
		return apperrors.NewValidationError("title, author, and pdf url are required", nil)
	}
	if err := s.books.Create(ctx, book); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventBookCreated, events.BookCreatedPayload{BookID: book.ID, Title: book.Title})
	return nil
}

// Update replaces a catalog entry's fields.
func (s *BookService) Update(ctx context.Context, book *domain.Book) error {
	if err := s.books.Update(ctx, book); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("book", map[string]any{"id": book.ID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// GetByID returns one catalog entry.
func (s *BookService) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("book", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return book, nil
}

// Delete removes a catalog entry and, best effort, its media assets. The
// database delete decides the outcome; media cleanup failures are only
// logged.
func (s *BookService) Delete(ctx context.Context, id string) error {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("book", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}

	if err := s.books.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("book", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}

	s.cleanupAsset(ctx, book.CoverImageURL)
	s.cleanupAsset(ctx, book.PDFURL)

	s.publish(ctx, events.EventBookDeleted, events.BookDeletedPayload{BookID: book.ID, Title: book.Title})
	return nil
}

func (s *BookService) cleanupAsset(ctx context.Context, rawURL string) {
	if rawURL == "" || s.media == nil {
		return
	}
	key := s.media.KeyFromURL(rawURL)
	if key == "" {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete media asset", zap.String("key", key), zap.Error(err))
	}
}

func (s *BookService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
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
