package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ankitjha412/clone/internal/detector"
)

// detectRequest is the body of POST /api/v1/detect.
type detectRequest struct {
	URL string `json:"url"`
}

// statusResponse is the body of GET /api/v1/status.
type statusResponse struct {
	ReferenceDomains int    `json:"reference_domains"`
	CachedLookups    int    `json:"cached_lookups"`
	LookupProvider   string `json:"lookup_provider"`
}

// handleDetect runs one clone-detection request. Client-input problems are
// 400s with a descriptive message; lookup failures never surface as errors
// because the engine folds them into the verdict.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	verdict, err := s.engine.Detect(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, detector.ErrMissingURL):
			respondWithError(w, http.StatusBadRequest, "missing url")
		case errors.Is(err, detector.ErrInvalidFormat):
			respondWithError(w, http.StatusBadRequest, "invalid url format")
		default:
			s.logger.Error("detect failed", "error", err,
				"request_id", RequestIDFromContext(r.Context()))
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, verdict)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, statusResponse{
		ReferenceDomains: s.refs.Len(),
		CachedLookups:    s.cache.Len(),
		LookupProvider:   s.cache.ProviderName(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondWithError sends a JSON error response.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response with the given status code and payload.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
