package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/service"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// BooksHandler exposes catalog CRUD. Mutations are admin-only, enforced by
// route middleware.
type BooksHandler struct {
	books *service.BookService
}

// NewBooksHandler constructs handler.
func NewBooksHandler(bookService *service.BookService) *BooksHandler {
	return &BooksHandler{books: bookService}
}

// List handles GET /api/books.
func (h *BooksHandler) List(c *fiber.Ctx) error {
	books, err := h.books.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(books)
}

// Create handles POST /api/books.
func (h *BooksHandler) Create(c *fiber.Ctx) error {
	var req dto.BookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	book := bookFromRequest(req)
	if err := h.books.Create(c.UserContext(), book); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(book)
}

// Update handles PUT /api/books/:id.
func (h *BooksHandler) Update(c *fiber.Ctx) error {
	var req dto.BookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	book := bookFromRequest(req)
	book.ID = c.Params("id")
	if err := h.books.Update(c.UserContext(), book); err != nil {
		return err
	}
	return c.JSON(book)
}

// Delete handles DELETE /api/books/:id.
func (h *BooksHandler) Delete(c *fiber.Ctx) error {
	if err := h.books.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "book deleted"})
}

func bookFromRequest(req dto.BookRequest) *domain.Book {
	return &domain.Book{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		CoverImageURL: req.CoverImageURL,
		PDFURL:        req.PDFURL,
	}
}
