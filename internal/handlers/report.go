package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-repairs/internal/httpx"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/services"
	"go.uber.org/zap"
)

type ReportHandler struct {
	svc *services.ReportService
	now func() time.Time
	log *zap.Logger
}

func NewReportHandler(svc *services.ReportService, now func() time.Time, log *zap.Logger) *ReportHandler {
	if now == nil {
		now = time.Now
	}
	return &ReportHandler{svc: svc, now: now, log: logging.OrNop(log).Named("http.reports")}
}

// Monthly handles GET /reports/monthly?year=&month=, defaulting to the current month.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	now := h.now().UTC()
	year, month := now.Year(), now.Month()
	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_year", nil)
			return
		}
		year = y
	}
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_month", nil)
			return
		}
		month = time.Month(m)
	}
	rep, err := h.svc.Monthly(r.Context(), actor, time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}
