package services

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is the flat GST applied to every order subtotal.
var TaxRate = decimal.RequireFromString("0.18")

// ShippingFee is zero: all orders ship free.
var ShippingFee = decimal.Zero

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives tax, shipping and total from a subtotal. Tax is
// rounded half-up to paise.
func ComputeTotals(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: ShippingFee,
		Total:    subtotal.Add(tax).Add(ShippingFee),
	}
}

func lineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

const orderSuffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber builds the display label "GC" + unix millis + five base-36
// characters. It is not a key; collisions are caught by the unique index.
func NewOrderNumber(now time.Time) string {
	var b strings.Builder
	b.WriteString("GC")
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	max := big.NewInt(int64(len(orderSuffixAlphabet)))
	for i := 0; i < 5; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			n = big.NewInt(now.UnixNano() % int64(len(orderSuffixAlphabet)))
		}
		b.WriteByte(orderSuffixAlphabet[n.Int64()])
	}
	return b.String()
}

// ParsePrice reads a loosely formatted amount such as "₹1,299.50" or
// "Rs. 199" by keeping digits and dots. Unparsable input yields zero.
func ParsePrice(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if i := strings.Index(clean, "."); i >= 0 {
		// a second decimal point ends the number
		if j := strings.Index(clean[i+1:], "."); j >= 0 {
			clean = clean[:i+1+j]
		}
	}
	if strings.HasPrefix(clean, ".") {
		clean = "0" + clean
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(clean, "."))
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}
