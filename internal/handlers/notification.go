package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-repairs/internal/httpx"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/services"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	svc *services.NotificationService
	log *zap.Logger
}

func NewNotificationHandler(svc *services.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: logging.OrNop(log).Named("http.notifications")}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	unread := q.Get("unread") == "1" || q.Get("unread") == "true"
	limit, _ := strconv.Atoi(q.Get("limit"))
	list, err := h.svc.List(r.Context(), actor, unread, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	n, err := h.svc.UnreadCount(r.Context(), actor)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"unread": n})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	id, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(r.Context(), actor, id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr403(w, r)
	if !ok {
		return
	}
	n, err := h.svc.MarkAllRead(r.Context(), actor)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"updated": n})
}
