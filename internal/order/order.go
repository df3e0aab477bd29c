package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("order not found")
	ErrEmptyCart = errors.New("cart is empty")
	// ErrTransactionFailed means the atomic checkout commit could not
	// complete. No partial state was persisted, so retrying is safe.
	ErrTransactionFailed = errors.New("order transaction failed")
	ErrInvalidPayment    = errors.New("unsupported payment method")
	ErrMissingAddress    = errors.New("shipping address is required")
)

// Order statuses. Transitions past Pending belong to fulfillment, which
// lives outside this service.
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
)

// PaymentMethods enumerates the accepted payment_method values.
var PaymentMethods = []string{"credit_card", "paypal", "cod"}

// Line is an order line with the unit price snapshotted at checkout time.
// The price is copied from the catalog, never referenced: later catalog
// price changes do not touch committed orders.
type Line struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal is quantity × snapshot price.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID              int             `json:"id"`
	UserID          int             `json:"-"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	OrderDate       time.Time       `json:"order_date"`
	// ItemCount annotates order listings; Lines are only populated on
	// the single-order detail view.
	ItemCount int    `json:"item_count,omitempty"`
	Lines     []Line `json:"items,omitempty"`
}
