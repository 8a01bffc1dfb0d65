package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-repairs/internal/httpx"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/services"
	"go.uber.org/zap"
)

type ReceiptHandler struct {
	svc *services.ReceiptService
	log *zap.Logger
}

func NewReceiptHandler(svc *services.ReceiptService, log *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{svc: svc, log: logging.OrNop(log).Named("http.receipts")}
}

// Issue answers 201 when the receipt was created and 200 when it already existed.
func (h *ReceiptHandler) Issue(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	repairID, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	receipt, created, err := h.svc.Issue(r.Context(), actor, repairID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, receipt)
}

func (h *ReceiptHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	repairID, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	receipt, err := h.svc.Get(r.Context(), actor, repairID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, receipt)
}

func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	receipts, err := h.svc.List(r.Context(), actor, year)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"receipts": receipts})
}
