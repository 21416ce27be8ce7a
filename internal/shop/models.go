// Package shop implements the service catalogue, promo discounts and order
// intake with its messaging hand-off.
package shop

import "time"

const (
	OrdersCollection   = "orders"
	ProductsCollection = "products"
	PromosCollection   = "promos"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known order status. Transitions are
// admin-driven, any state to any state; there is no enforced ordering.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Product price is a display string ("10 000 FCFA", "Sur commande"); the
// numeric amount is derived by ParsePrice where needed.
type Product struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Desc         string    `json:"desc"`
	Price        string    `json:"price"`
	Category     string    `json:"category"`
	Images       []string  `json:"images,omitempty"`
	IsSourceCode bool      `json:"isSourceCode"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Order struct {
	ID              string    `json:"id,omitempty"`
	ProductName     string    `json:"productName"`
	Price           string    `json:"price"`
	Quantity        int       `json:"quantity"`
	CustomerMessage string    `json:"customerMessage,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	Status          Status    `json:"status"`
}

// PromoConfig is a time-boxed flat-percentage discount code. Active means
// IsActive and EndDate still in the future.
type PromoConfig struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Code      string    `json:"code"`
	Discount  int       `json:"discount"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p PromoConfig) ActiveAt(now time.Time) bool {
	return p.IsActive && now.Before(p.EndDate)
}
