package domain

import "time"

// Book is one catalog entry. CoverImageURL and PDFURL point at the external
// media host; the database stores only the URLs.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	CoverImageURL string    `json:"cover_image_url"`
	PDFURL        string    `json:"pdf_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
