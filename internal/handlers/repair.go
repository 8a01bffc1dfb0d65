package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-repairs/internal/httpx"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/services"
	"go.uber.org/zap"
)

// RepairHandler exposes the repair lifecycle.
type RepairHandler struct {
	svc *services.RepairService
	log *zap.Logger
}

func NewRepairHandler(svc *services.RepairService, log *zap.Logger) *RepairHandler {
	return &RepairHandler{svc: svc, log: logging.OrNop(log).Named("http.repairs")}
}

type createRepairRequest struct {
	GadgetID     uint                `json:"gadget_id"`
	TechnicianID *uint               `json:"technician_id"`
	Status       models.RepairStatus `json:"status"`
	Notify       bool                `json:"notify"`
}

type updateRepairRequest struct {
	TechnicianID *uint               `json:"technician_id"`
	Status       models.RepairStatus `json:"status"`
}

type reassignRequest struct {
	TechnicianID uint `json:"technician_id"`
}

type statusRequest struct {
	Status models.RepairStatus `json:"status"`
}

func (h *RepairHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := services.RepairFilter{Status: models.RepairStatus(q.Get("status"))}
	if v, err := strconv.ParseUint(q.Get("technician_id"), 10, 64); err == nil {
		f.TechnicianID = uint(v)
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	repairs, err := h.svc.List(r.Context(), actor, f)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"repairs": repairs})
}

func (h *RepairHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	var req createRepairRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	v, err := h.svc.Create(r.Context(), actor, services.CreateRepairInput{
		GadgetID:         req.GadgetID,
		TechnicianID:     req.TechnicianID,
		Status:           req.Status,
		NotifyTechnician: req.Notify,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}

func (h *RepairHandler) View(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	id, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *RepairHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	id, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	var req updateRepairRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	v, err := h.svc.UpdateStatusAndTechnician(r.Context(), actor, id, services.UpdateRepairInput{
		TechnicianID: req.TechnicianID,
		Status:       req.Status,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *RepairHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	id, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	var req reassignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	v, err := h.svc.Reassign(r.Context(), actor, id, req.TechnicianID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

// Transition is the technician's status change.
func (h *RepairHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	id, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	v, err := h.svc.TransitionTo(r.Context(), actor, id, req.Status)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}
