package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pixalium/backend/internal/auth"
	"github.com/pixalium/backend/internal/content"
	"github.com/pixalium/backend/internal/downloads"
	"github.com/pixalium/backend/internal/newsletter"
	"github.com/pixalium/backend/internal/shop"
	"github.com/pixalium/backend/internal/storage"
	"github.com/pixalium/backend/internal/store"
)

// AdminHandler is the console backend: thin CRUD over the record store plus
// the code-issuing, promo and newsletter actions.
type AdminHandler struct {
	Store       *store.Store
	Sessions    *auth.Sessions
	Registry    *downloads.Registry
	Broadcaster *newsletter.Broadcaster
	Storage     *storage.Store
	Shop        *shop.Service
	Content     *content.Service
	Live        *LiveHandler
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Post("/admin/login", h.login)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.Sessions.Middleware)
		r.Post("/logout", h.logout)

		r.Get("/records/{collection}", h.listRecords)
		r.Delete("/records/{collection}/{id}", h.deleteRecord)
		r.Patch("/records/{collection}/{id}", h.patchRecord)

		r.Post("/products", h.createProduct)
		r.Post("/portfolio", h.createPortfolio)
		r.Post("/orders/{id}/status", h.updateOrderStatus)
		r.Post("/contacts/{id}/read", h.markContactRead)
		r.Post("/testimonials/{id}/approve", h.approveTestimonial)

		r.Post("/promos", h.createPromo)
		r.Post("/promos/{id}/toggle", h.togglePromo)

		r.Post("/codes", h.issueCode)
		r.Post("/newsletter/send", h.sendNewsletter)
		r.Post("/upload", h.upload)

		if h.Live != nil {
			h.Live.RegisterAdmin(r)
		}
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	token, err := h.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AdminHandler) logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("Authorization")
	if len(token) > 7 {
		token = token[7:] // strip "Bearer "
	}
	if err := h.Sessions.Logout(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) listRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.GetAll(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusOK, store.Flatten(recs))
}

// deleteRecord is idempotent: deleting an already-deleted record succeeds.
func (h *AdminHandler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "collection") + "/" + chi.URLParam(r, "id")
	if err := h.Store.Delete(r.Context(), path); err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) patchRecord(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	delete(fields, "id")
	path := chi.URLParam(r, "collection") + "/" + chi.URLParam(r, "id")
	if err := h.Store.Patch(r.Context(), path, fields); err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p shop.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Name == "" || p.Price == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	p.ID = ""
	p.CreatedAt = time.Now().UTC()
	id, err := h.Store.Create(r.Context(), shop.ProductsCollection, p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *AdminHandler) createPortfolio(w http.ResponseWriter, r *http.Request) {
	var p content.PortfolioProject
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Title == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	p.ID = ""
	p.CreatedAt = time.Now().UTC()
	id, err := h.Store.Create(r.Context(), content.PortfolioCollection, p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type statusReq struct {
	Status shop.Status `json:"status"`
}

func (h *AdminHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Shop.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		if !req.Status.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) markContactRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Content.MarkContactRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type approveReq struct {
	Approved bool `json:"approved"`
}

func (h *AdminHandler) approveTestimonial(w http.ResponseWriter, r *http.Request) {
	var req approveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Content.SetTestimonialApproved(r.Context(), chi.URLParam(r, "id"), req.Approved); err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type promoReq struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Code     string    `json:"code"`
	Discount int       `json:"discount"`
	EndDate  time.Time `json:"endDate"`
	IsActive bool      `json:"isActive"`
}

// createPromo writes the promo under a millisecond-timestamp key through the
// merge/create patch path, keeping the key scheme existing records use.
func (h *AdminHandler) createPromo(w http.ResponseWriter, r *http.Request) {
	var req promoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	id := strconv.FormatInt(time.Now().UnixMilli(), 10)
	err := h.Store.Patch(r.Context(), shop.PromosCollection+"/"+id, map[string]any{
		"title":     req.Title,
		"subtitle":  req.Subtitle,
		"code":      req.Code,
		"discount":  req.Discount,
		"endDate":   req.EndDate,
		"isActive":  req.IsActive,
		"createdAt": time.Now().UTC(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *AdminHandler) togglePromo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	promos, err := h.Shop.Promos(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	for _, p := range promos {
		if p.ID != id {
			continue
		}
		err := h.Store.Patch(r.Context(), shop.PromosCollection+"/"+id, map[string]any{"isActive": !p.IsActive})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "une erreur est survenue")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"isActive": !p.IsActive})
		return
	}
	writeError(w, http.StatusNotFound, "promo not found")
}

type issueCodeReq struct {
	FileName  string     `json:"fileName"`
	FilePath  string     `json:"filePath"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (h *AdminHandler) issueCode(w http.ResponseWriter, r *http.Request) {
	var req issueCodeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileName == "" || req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	dc, err := h.Registry.Issue(r.Context(), req.FileName, req.FilePath, req.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusCreated, dc)
}

type sendNewsletterReq struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

func (h *AdminHandler) sendNewsletter(w http.ResponseWriter, r *http.Request) {
	var req sendNewsletterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	recipients, err := h.Content.Subscribers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	issueID, err := h.Broadcaster.Broadcast(r.Context(), req.Subject, req.Content, recipients)
	if err != nil {
		if errors.Is(err, newsletter.ErrNothingToSend) {
			writeError(w, http.StatusBadRequest, "missing subject, content or subscribers")
			return
		}
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"issueId":    issueID,
		"recipients": len(recipients),
	})
}

// upload stores a multipart file in object storage and returns its public
// URL for use as a product image, portfolio asset or download target.
func (h *AdminHandler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	folder := r.FormValue("folder")
	url, err := h.Storage.Save(folder, header.Filename, file)
	if err != nil {
		log.Error().Err(err).Str("name", header.Filename).Msg("upload failed")
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
