package handlers

import (
	"net/http"

	"github.com/diewo77/go-repairs/internal/httpx"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	svc *services.PaymentService
	log *zap.Logger
}

func NewPaymentHandler(svc *services.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, log: logging.OrNop(log).Named("http.payments")}
}

type paymentRequest struct {
	Amount         decimal.Decimal      `json:"amount"`
	Method         models.PaymentMethod `json:"method"`
	MobileProvider string               `json:"mobile_provider"`
	MobileNumber   string               `json:"mobile_number"`
	Notes          string               `json:"notes"`
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	repairID, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	payments, err := h.svc.List(r.Context(), actor, repairID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	repairID, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	res, err := h.svc.Record(r.Context(), actor, repairID, services.PaymentInput{
		Amount:         req.Amount,
		Method:         req.Method,
		MobileProvider: req.MobileProvider,
		MobileNumber:   req.MobileNumber,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}
