package gateway

import (
	"errors"
	"net/http"

	"llm-suggest-proxy/internal/envelope"
	apierrors "llm-suggest-proxy/internal/errors"
	"llm-suggest-proxy/internal/event"
)

// HandleSuggest serves one invocation over plain HTTP.
func (s *Service) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, apierrors.Marshal("method not allowed", nil))
		return
	}

	req, err := event.FromHTTP(r, s.cfg.MaxBodyBytes)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, event.ErrBodyTooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apierrors.Marshal("request body too large", nil))
			return
		}
		writeJSON(w, http.StatusBadRequest, apierrors.Marshal("failed to read request body", nil))
		return
	}

	WriteEnvelope(w, s.Handle(r.Context(), req))
}

// WriteEnvelope renders an envelope as an HTTP response.
func WriteEnvelope(w http.ResponseWriter, env envelope.Envelope) {
	for k, v := range env.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(env.StatusCode)
	_, _ = w.Write([]byte(env.Body))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
