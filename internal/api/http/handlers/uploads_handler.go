package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/media"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

const (
	coverFolder = "book-covers"
	pdfFolder   = "books"
)

// UploadsHandler proxies multipart uploads to the media store.
type UploadsHandler struct {
	store media.Store
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(store media.Store) *UploadsHandler {
	return &UploadsHandler{store: store}
}

// Cover handles POST /api/upload/cover.
func (h *UploadsHandler) Cover(c *fiber.Ctx) error {
	return h.upload(c, coverFolder)
}

// PDF handles POST /api/upload/pdf.
func (h *UploadsHandler) PDF(c *fiber.Ctx) error {
	return h.upload(c, pdfFolder)
}

func (h *UploadsHandler) upload(c *fiber.Ctx, folder string) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("no file provided", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	asset, err := h.store.Upload(
		c.UserContext(),
		folder,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(asset)
}
