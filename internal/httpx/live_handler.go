package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pixalium/backend/internal/store"
)

// LiveHandler streams collection snapshots over SSE: the full current list
// immediately on connect, then again after every change. Each connection is
// an independent subscription.
type LiveHandler struct {
	Store *store.Store
	// Public names the collections visitors may watch; the optional filter
	// trims records before they go on the wire.
	Public map[string]func([]map[string]any) []map[string]any
}

func (h *LiveHandler) Register(r *chi.Mux) {
	r.Get("/live/{collection}", h.stream)
}

// RegisterAdmin exposes every collection, unfiltered, behind the admin gate.
func (h *LiveHandler) RegisterAdmin(r chi.Router) {
	r.Get("/live/{collection}", h.streamAll)
}

func (h *LiveHandler) stream(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	filter, ok := h.Public[collection]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}
	h.serve(w, r, collection, filter)
}

func (h *LiveHandler) streamAll(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "collection"), nil)
}

func (h *LiveHandler) serve(w http.ResponseWriter, r *http.Request, collection string, filter func([]map[string]any) []map[string]any) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Snapshots from the subscription goroutine are funneled through a
	// channel so only this handler goroutine touches the ResponseWriter.
	snapshots := make(chan []map[string]any, 4)
	unsubscribe, err := h.Store.Subscribe(r.Context(), collection, func(recs []store.Record) {
		flat := store.Flatten(recs)
		if filter != nil {
			flat = filter(flat)
		}
		select {
		case snapshots <- flat:
		default:
			// Drop under backpressure; the next change resends the full list.
		}
	})
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("subscribe failed")
		writeError(w, http.StatusInternalServerError, "une erreur est survenue")
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-snapshots:
			data, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(data); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// ApprovedOnly keeps records whose "approved" field is true, for the public
// testimonials feed.
func ApprovedOnly(recs []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(recs))
	for _, m := range recs {
		if ok, _ := m["approved"].(bool); ok {
			out = append(out, m)
		}
	}
	return out
}
