package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pixalium/backend/internal/shop"
	"github.com/pixalium/backend/internal/store"
)

type ShopHandler struct {
	Store *store.Store
	Svc   *shop.Service
}

func (h *ShopHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/promo", h.activePromo)
	r.Post("/promo/validate", h.validateDiscount)
	r.Post("/orders", h.placeOrder)
}

func (h *ShopHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.GetAll(r.Context(), shop.ProductsCollection)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusOK, store.Flatten(recs))
}

func (h *ShopHandler) activePromo(w http.ResponseWriter, r *http.Request) {
	promo, ok, err := h.Svc.ActivePromoNow(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, promo)
}

type validateDiscountReq struct {
	Code string `json:"code"`
}

// validateDiscount checks a submitted code against the currently active
// promo. Acceptance is session-scoped on the client; nothing is persisted.
func (h *ShopHandler) validateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	promo, ok, err := h.Svc.ActivePromoNow(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"valid":   false,
			"message": "Aucun code promotionnel actif ou code invalide.",
		})
		return
	}
	percent, matched := shop.MatchDiscount(req.Code, promo, time.Now())
	if !matched {
		writeJSON(w, http.StatusOK, map[string]any{
			"valid":   false,
			"message": "Code invalide ou expiré.",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    true,
		"code":     promo.Code,
		"discount": percent,
	})
}

type placeOrderReq struct {
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	CustomerMessage string `json:"customerMessage"`
	DiscountCode    string `json:"discountCode"`
}

func (h *ShopHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing productId")
		return
	}

	// The discount is re-validated server-side at order time; a stale or
	// bogus code simply applies nothing.
	percent := 0
	if req.DiscountCode != "" {
		if promo, ok, err := h.Svc.ActivePromoNow(r.Context()); err == nil && ok {
			if p, matched := shop.MatchDiscount(req.DiscountCode, promo, time.Now()); matched {
				percent = p
			}
		}
	}

	handoff, err := h.Svc.PlaceOrder(r.Context(), shop.PlaceOrderRequest{
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		CustomerMessage: req.CustomerMessage,
		DiscountPercent: percent,
		DiscountCode:    req.DiscountCode,
	})
	if err != nil {
		if errors.Is(err, shop.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusAccepted, handoff)
}
