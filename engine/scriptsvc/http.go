package scriptsvc

import (
	"net/http"

	"github.com/goccy/go-json"
)

// maxBodyBytes bounds request bodies accepted by the HTTP handlers.
const maxBodyBytes = 1 << 20

// Routes returns the HTTP API:
//
//	POST /api/scripts/properties  PropertiesRequest -> Response{Fragments}
//	POST /api/scripts/has         HasRequest        -> Response{Fragment}
//	GET  /api/health
func (s *Service) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scripts/properties", s.handleProperties)
	mux.HandleFunc("POST /api/scripts/has", s.handleHas)
	mux.HandleFunc("GET /api/health", handleHealth)
	return mux
}

func (s *Service) handleProperties(w http.ResponseWriter, r *http.Request) {
	var req PropertiesRequest
	if !decodeBody(w, r, &req) {
		s.metrics.failure(CodeMalformedRequest)
		return
	}
	frags, err := s.Properties(r.Context(), req)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse(err))
		return
	}
	writeJSON(w, http.StatusOK, Response{Fragments: frags})
}

func (s *Service) handleHas(w http.ResponseWriter, r *http.Request) {
	var req HasRequest
	if !decodeBody(w, r, &req) {
		s.metrics.failure(CodeMalformedRequest)
		return
	}
	frag, err := s.Has(r.Context(), req)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse(err))
		return
	}
	writeJSON(w, http.StatusOK, Response{Fragment: frag})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: "invalid request body", Code: CodeMalformedRequest})
		return false
	}
	return true
}

func statusFor(err error) int {
	switch errorCode(err) {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnexpectedEntityType:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
