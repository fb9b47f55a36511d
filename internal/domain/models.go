package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the stored timestamp format. Fixed width and UTC so that
// string comparison orders rows chronologically on every driver.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

func Timestamp(t time.Time) string { return t.UTC().Format(TimeLayout) }

type Product struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	Price         decimal.Decimal `db:"price" json:"price"`
	ImageURL      string          `db:"image_url" json:"imageUrl"`
	Category      string          `db:"category" json:"category"`
	StockQuantity int             `db:"stock_quantity" json:"stockQuantity"`
	IsActive      bool            `db:"is_active" json:"isActive"`
	CreatedAt     string          `db:"created_at" json:"createdAt"`
	UpdatedAt     string          `db:"updated_at" json:"updatedAt"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

// CartLine is one (product, quantity) pair of a server-side cart joined with
// the live catalog row.
type CartLine struct {
	ProductID     string          `db:"product_id" json:"productId"`
	Name          string          `db:"name" json:"name"`
	Price         decimal.Decimal `db:"price" json:"price"`
	ImageURL      string          `db:"image_url" json:"imageUrl"`
	Quantity      int             `db:"quantity" json:"quantity"`
	StockQuantity int             `db:"stock_quantity" json:"stockQuantity"`
	IsActive      bool            `db:"is_active" json:"-"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Items     []CartLine      `json:"items"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}
