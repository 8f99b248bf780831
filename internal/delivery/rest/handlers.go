// Path: internal/delivery/rest/handlers.go
package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"commit-tracker/internal/domain"
)

// dataService defines the interface required by the handlers from the core service.
// This keeps the delivery layer decoupled from the full service implementation.
type dataService interface {
	History(ctx context.Context) (domain.History, error)
	GetRecord(ctx context.Context, date string) (*domain.DailyRecord, error)
}

// dayView is the JSON shape of one stored day.
type dayView struct {
	domain.DailyRecord
	Ratio float64 `json:"ratio_pct"`
}

func newDayView(rec domain.DailyRecord) dayView {
	return dayView{DailyRecord: rec, Ratio: rec.Ratio()}
}

// HistoryHandlers holds dependencies for history-related HTTP handlers.
type HistoryHandlers struct {
	service dataService
}

// NewHistoryHandlers creates a new handler struct.
func NewHistoryHandlers(s dataService) *HistoryHandlers {
	return &HistoryHandlers{service: s}
}

// ListHistory handles the request for every stored day, ascending by date.
// Path: /history
func (h *HistoryHandlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context())
	if err != nil {
		slog.Error("load history", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	days := make([]dayView, 0, len(history))
	for _, rec := range history.Records() {
		days = append(days, newDayView(rec))
	}
	writeJSON(w, days)
}

// GetDay handles the request for a single day.
// Path: /history/{date}
func (h *HistoryHandlers) GetDay(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimPrefix(r.URL.Path, "/history/")
	if _, err := domain.ParseDate(date); err != nil {
		http.Error(w, "Invalid date format. Expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	rec, err := h.service.GetRecord(r.Context(), date)
	if err != nil {
		slog.Error("load record", "date", date, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if rec == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, newDayView(*rec))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}
