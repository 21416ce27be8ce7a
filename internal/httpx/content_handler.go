package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pixalium/backend/internal/content"
	"github.com/pixalium/backend/internal/store"
)

type ContentHandler struct {
	Store *store.Store
	Svc   *content.Service
}

func (h *ContentHandler) Register(r *chi.Mux) {
	r.Get("/portfolio", h.listPortfolio)
	r.Get("/testimonials", h.listTestimonials)
	r.Post("/contact", h.submitContact)
	r.Post("/testimonials", h.submitTestimonial)
	r.Post("/newsletter/subscribe", h.subscribe)
}

func (h *ContentHandler) listPortfolio(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.GetAll(r.Context(), content.PortfolioCollection)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusOK, store.Flatten(recs))
}

// listTestimonials is the public listing: approved entries only.
func (h *ContentHandler) listTestimonials(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Svc.ApprovedTestimonials(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (h *ContentHandler) submitContact(w http.ResponseWriter, r *http.Request) {
	var msg content.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.Svc.SubmitContact(r.Context(), msg)
	if err != nil {
		writeSubmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *ContentHandler) submitTestimonial(w http.ResponseWriter, r *http.Request) {
	var t content.Testimonial
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.Svc.SubmitTestimonial(r.Context(), t)
	if err != nil {
		writeSubmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type subscribeReq struct {
	Email string `json:"email"`
}

func (h *ContentHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.Svc.SubscribeNewsletter(r.Context(), req.Email)
	if err != nil {
		writeSubmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
