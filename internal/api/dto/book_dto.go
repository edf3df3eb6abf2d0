package dto

// BookRequest payload for catalog create/update.
type BookRequest struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	CoverImageURL string  `json:"coverImageUrl"`
	PDFURL        string  `json:"pdfUrl"`
}

// CheckoutRequest starts a purchase.
type CheckoutRequest struct {
	BookID string `json:"bookId"`
}

// CheckoutResponse carries the hosted checkout redirect.
type CheckoutResponse struct {
	URL string `json:"url"`
}
