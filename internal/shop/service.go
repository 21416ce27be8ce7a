package shop

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pixalium/backend/internal/store"
)

// RecordStore is the slice of the record store the shop needs.
type RecordStore interface {
	Create(ctx context.Context, collection string, v any) (string, error)
	GetAll(ctx context.Context, collection string) ([]store.Record, error)
	Patch(ctx context.Context, path string, fields map[string]any) error
}

var ErrProductNotFound = errors.New("product not found")

type Service struct {
	Store          RecordStore
	WhatsAppNumber string
	// DownloadPath is the redemption entry point source-code products are
	// handed off to instead of WhatsApp.
	DownloadPath string
}

// PlaceOrderRequest carries checkout intent. DiscountPercent/DiscountCode are
// the session's applied discount, already validated against the active promo.
type PlaceOrderRequest struct {
	ProductID       string
	Quantity        int
	CustomerMessage string
	DiscountPercent int
	DiscountCode    string
}

// HandOff is what the client does next. Exactly one of WhatsAppURL or
// DownloadPath is set.
type HandOff struct {
	OrderID      string `json:"orderId,omitempty"`
	FinalPrice   string `json:"finalPrice"`
	WhatsAppURL  string `json:"whatsappUrl,omitempty"`
	DownloadPath string `json:"downloadPath,omitempty"`
}

// PlaceOrder creates a pending order for the product and returns the
// user-facing hand-off. The order write is fire-and-forget relative to the
// hand-off: persistence failures are logged, not surfaced, and the flow
// proceeds either way.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (HandOff, error) {
	product, err := s.productByID(ctx, req.ProductID)
	if err != nil {
		return HandOff{}, err
	}

	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}

	finalPrice := product.Price
	if req.DiscountPercent > 0 {
		finalPrice = ApplyDiscount(product.Price, req.DiscountPercent)
	}

	order := Order{
		ProductName:     product.Name,
		Price:           finalPrice,
		Quantity:        qty,
		CustomerMessage: req.CustomerMessage,
		CreatedAt:       time.Now().UTC(),
		Status:          StatusPending,
	}
	orderID, err := s.Store.Create(ctx, OrdersCollection, order)
	if err != nil {
		log.Error().Err(err).Str("product", product.Name).Msg("order not persisted, continuing hand-off")
	}

	if product.IsSourceCode {
		return HandOff{OrderID: orderID, FinalPrice: finalPrice, DownloadPath: s.DownloadPath}, nil
	}

	msg := OrderMessage(product.Name, product.Price, finalPrice, qty, req.DiscountPercent, req.DiscountCode)
	return HandOff{
		OrderID:     orderID,
		FinalPrice:  finalPrice,
		WhatsAppURL: WhatsAppLink(s.WhatsAppNumber, msg),
	}, nil
}

// ActivePromoNow loads the promos collection and picks the active one.
func (s *Service) ActivePromoNow(ctx context.Context) (PromoConfig, bool, error) {
	promos, err := s.Promos(ctx)
	if err != nil {
		return PromoConfig{}, false, err
	}
	p, ok := ActivePromo(promos, time.Now())
	return p, ok, nil
}

func (s *Service) Promos(ctx context.Context) ([]PromoConfig, error) {
	recs, err := s.Store.GetAll(ctx, PromosCollection)
	if err != nil {
		return nil, err
	}
	out := make([]PromoConfig, 0, len(recs))
	for _, rec := range recs {
		p, err := store.Decode[PromoConfig](rec)
		if err != nil {
			log.Warn().Err(err).Str("id", rec.ID).Msg("skipping malformed promo")
			continue
		}
		p.ID = rec.ID
		out = append(out, p)
	}
	return out, nil
}

// UpdateOrderStatus is admin-driven; any known status may replace any other.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status Status) error {
	if !status.Valid() {
		return errors.New("unknown order status: " + string(status))
	}
	return s.Store.Patch(ctx, OrdersCollection+"/"+orderID, map[string]any{"status": status})
}

func (s *Service) productByID(ctx context.Context, id string) (Product, error) {
	recs, err := s.Store.GetAll(ctx, ProductsCollection)
	if err != nil {
		return Product{}, err
	}
	for _, rec := range recs {
		if rec.ID != id {
			continue
		}
		p, err := store.Decode[Product](rec)
		if err != nil {
			return Product{}, err
		}
		p.ID = rec.ID
		return p, nil
	}
	return Product{}, ErrProductNotFound
}
