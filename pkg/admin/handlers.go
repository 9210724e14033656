package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lsd-consulting/lsd-interceptors-go/pkg/sequence"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   int64  `json:"uptime"`
	Messages int    `json:"messages"`
}

// MessagesResponse is returned by GET /messages.
type MessagesResponse struct {
	Messages []sequence.Message `json:"messages"`
	Count    int                `json:"count"`
	Total    int                `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// handleHealth handles GET /healthz.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Uptime:   int64(a.Uptime().Seconds()),
		Messages: a.store.Count(),
	})
}

// handleListMessages handles GET /messages.
func (a *API) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	msgs := a.store.List(limit)
	if msgs == nil {
		msgs = []sequence.Message{}
	}
	writeJSON(w, http.StatusOK, MessagesResponse{
		Messages: msgs,
		Count:    len(msgs),
		Total:    a.store.Count(),
	})
}

// handleClearMessages handles DELETE /messages.
func (a *API) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	a.store.Clear()
	a.log.Info("stored messages cleared")
	w.WriteHeader(http.StatusNoContent)
}

// handleDiagram handles GET /diagram.puml.
func (a *API) handleDiagram(w http.ResponseWriter, r *http.Request) {
	title := a.title
	if t := r.URL.Query().Get("title"); t != "" {
		title = t
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(sequence.PlantUML(title, a.store.List(0))))
}
