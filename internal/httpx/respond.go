package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pixalium/backend/internal/content"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeSubmissionError maps validation errors to a per-field 422 and
// everything else to a generic 500; transport failures are never detailed to
// visitors.
func writeSubmissionError(w http.ResponseWriter, err error) {
	var ve *content.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": ve.Reason,
			"field": ve.Field,
		})
		return
	}
	writeError(w, http.StatusInternalServerError, "une erreur est survenue, veuillez réessayer")
}
