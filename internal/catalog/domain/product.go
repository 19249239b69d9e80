package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers (19.99), not strings ("19.99").
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is the root of the product aggregate. It is written once, together
// with its lots and media, and never modified afterwards.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"createdAt"`
	Lots        []StockLot      `json:"stock"`
	Media       []MediaAsset    `json:"media"`
}

type StockLot struct {
	ID        string `json:"id"`
	ProductID string `json:"-"`
	Quantity  int    `json:"quantity"`
}

type MediaAsset struct {
	ID        string `json:"id"`
	ProductID string `json:"-"`
	Type      string `json:"type"`
	URL       string `json:"url"`
}

// ProductListing is one row of the catalog listing: a product with the sum of
// its lot quantities and the number of lots.
type ProductListing struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Lots        int             `json:"lots"`
	CreatedAt   time.Time       `json:"createdAt"`
}
