package handlers

import (
	"net/http"

	"github.com/diewo77/go-repairs/internal/httpx"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CostLogHandler struct {
	svc *services.CostLogService
	log *zap.Logger
}

func NewCostLogHandler(svc *services.CostLogService, log *zap.Logger) *CostLogHandler {
	return &CostLogHandler{svc: svc, log: logging.OrNop(log).Named("http.logs")}
}

type costLogRequest struct {
	Cost                  decimal.Decimal `json:"cost"`
	IssueDescription      string          `json:"issue_description"`
	ResolutionDescription string          `json:"resolution_description"`
}

func (req costLogRequest) input() services.CostLogInput {
	return services.CostLogInput{
		Cost:                  req.Cost,
		IssueDescription:      req.IssueDescription,
		ResolutionDescription: req.ResolutionDescription,
	}
}

// Add handles POST /repairs/{id}/logs.
func (h *CostLogHandler) Add(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	repairID, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	var req costLogRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	entry, err := h.svc.Add(r.Context(), actor, repairID, req.input())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

// Update handles POST /logs/{id}.
func (h *CostLogHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	id, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	var req costLogRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	entry, err := h.svc.Update(r.Context(), actor, id, req.input())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// Delete handles POST /logs/{id}/delete.
func (h *CostLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	id, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
