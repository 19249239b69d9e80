package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrValidation matches every *ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type StockLotRequest struct {
	Quantity int `json:"quantity"`
}

type MediaAssetRequest struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type CreateProductRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.NullDecimal `json:"price"`
	Stock       []StockLotRequest   `json:"stock"`
	Media       []MediaAssetRequest `json:"media"`
}

// Validate checks the whole request. The first invalid field rejects it,
// so nothing of an invalid request is ever written.
func (r *CreateProductRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)

	if r.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if r.Description == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if !r.Price.Valid {
		return &ValidationError{Field: "price", Reason: "is required"}
	}
	if r.Price.Decimal.IsNegative() {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if !r.Price.Decimal.Equal(r.Price.Decimal.Round(2)) {
		return &ValidationError{Field: "price", Reason: "must have at most two decimal places"}
	}

	for i, lot := range r.Stock {
		if lot.Quantity < 0 {
			return &ValidationError{Field: fmt.Sprintf("stock[%d].quantity", i), Reason: "must not be negative"}
		}
	}

	for i := range r.Media {
		m := &r.Media[i]
		m.Type = strings.TrimSpace(m.Type)
		m.URL = strings.TrimSpace(m.URL)
		if m.Type == "" {
			return &ValidationError{Field: fmt.Sprintf("media[%d].type", i), Reason: "is required"}
		}
		if m.URL == "" {
			return &ValidationError{Field: fmt.Sprintf("media[%d].url", i), Reason: "is required"}
		}
		u, err := url.Parse(m.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ValidationError{Field: fmt.Sprintf("media[%d].url", i), Reason: "must be an absolute http(s) URL"}
		}
	}
	return nil
}

// NewProduct builds the aggregate described by a validated request.
func (r CreateProductRequest) NewProduct() *Product {
	p := &Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price.Decimal,
		Lots:        make([]StockLot, 0, len(r.Stock)),
		Media:       make([]MediaAsset, 0, len(r.Media)),
	}
	for _, lot := range r.Stock {
		p.Lots = append(p.Lots, StockLot{Quantity: lot.Quantity})
	}
	for _, m := range r.Media {
		p.Media = append(p.Media, MediaAsset{Type: m.Type, URL: m.URL})
	}
	return p
}
