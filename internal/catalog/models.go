package catalog

import "time"

type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Quantity  int       `json:"quantity"`
	Stock     int       `json:"stock"`
	Supplier  string    `json:"supplier"`
	Image     string    `json:"image,omitempty"` // opaque upload reference
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProduct carries the caller-supplied fields; stock starts at Quantity.
type NewProduct struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
	Supplier string `json:"supplier"`
	Image    string `json:"image"`
}

// ProductUpdate never touches stock. Stock only moves through ReserveStock.
type ProductUpdate struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
	Supplier string `json:"supplier"`
	Image    string `json:"image"`
}
