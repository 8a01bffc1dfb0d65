package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/httpx"
	"github.com/diewo77/go-repairs/internal/services"
	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP responses.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		verr *services.ValidationError
		nerr *services.NotFullyPaidError
	)
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", verr.Violations)
	case errors.As(err, &nerr):
		httpx.JSONError(w, http.StatusPaymentRequired, "not_fully_paid", map[string]string{
			"outstanding": nerr.Outstanding.StringFixed(2),
		})
	case errors.Is(err, httpx.ErrBadBody):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrNoOp):
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "no_op"})
	case errors.Is(err, services.ErrAlreadySettled):
		httpx.JSONError(w, http.StatusConflict, "already_settled", err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		httpx.JSONError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, gate.ErrUnauthorized):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	default:
		log.Error("request failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// actorOr403 returns the actor loaded by the authorization middleware.
func actorOr403(w http.ResponseWriter, r *http.Request) (gate.Actor, bool) {
	a, ok := gate.ActorFromContext(r.Context())
	if !ok || !a.Valid() {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return gate.Actor{}, false
	}
	return a, true
}

func pathIDOr400(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
	}
	return id, ok
}
