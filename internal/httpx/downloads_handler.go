package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pixalium/backend/internal/downloads"
)

type DownloadsHandler struct {
	Redeemer *downloads.Redeemer
}

func (h *DownloadsHandler) Register(r *chi.Mux) {
	r.Post("/download/redeem", h.redeem)
}

type redeemReq struct {
	Code string `json:"code"`
}

// redeem runs the redemption flow. Success answers with the file itself
// (streamed or proxied, Content-Disposition attachment) or a redirect to the
// file URL; the X-Code-Spent header reminds the client the code is now
// permanently burned either way.
func (h *DownloadsHandler) redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	delivery, err := h.Redeemer.Redeem(r.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, downloads.ErrMissingCode):
			writeError(w, http.StatusBadRequest, "Veuillez entrer un code de téléchargement")
		case errors.Is(err, downloads.ErrNotFound):
			writeError(w, http.StatusNotFound, "Code invalide ou déjà utilisé")
		case errors.Is(err, downloads.ErrExpired):
			writeError(w, http.StatusGone, "Ce code a expiré")
		default:
			log.Error().Err(err).Msg("redemption failed")
			writeError(w, http.StatusInternalServerError, "Une erreur est survenue lors du téléchargement")
		}
		return
	}

	w.Header().Set("X-Code-Spent", "true")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": delivery.FileName}))

	switch delivery.Mode {
	case downloads.ModeFile:
		http.ServeFile(w, r, delivery.LocalPath)
	case downloads.ModeProxy:
		defer delivery.Body.Close()
		if delivery.ContentType != "" {
			w.Header().Set("Content-Type", delivery.ContentType)
		}
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, delivery.Body); err != nil {
			// The code is already consumed; nothing can be rolled back here.
			log.Error().Err(err).Str("file", delivery.FileName).Msg("proxy stream aborted")
		}
	case downloads.ModeRedirect:
		http.Redirect(w, r, delivery.URL, http.StatusTemporaryRedirect)
	}
}
