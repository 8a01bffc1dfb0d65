package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/httpx"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminProfileHandler manages profiles and their permissions.
type AdminProfileHandler struct {
	DB            *gorm.DB
	CacheResolver *gate.CachedResolver[uint] // To invalidate cache on changes
	log           *zap.Logger
}

func NewAdminProfileHandler(db *gorm.DB, cacheResolver *gate.CachedResolver[uint], log *zap.Logger) *AdminProfileHandler {
	return &AdminProfileHandler{DB: db, CacheResolver: cacheResolver, log: logging.OrNop(log).Named("http.admin")}
}

// List returns every profile with its permissions.
func (h *AdminProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	var profiles []models.Profile
	if err := h.DB.WithContext(r.Context()).Preload("Permissions").Order("name").Find(&profiles).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

type permissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// SavePermissions replaces the permissions of a profile. Every code must
// name an existing permission.
func (h *AdminProfileHandler) SavePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	var req permissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	var profile models.Profile
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&profile, id).Error; err != nil {
			return err
		}
		perms := make([]models.Permission, 0, len(req.Permissions))
		unknown := map[string]string{}
		for _, code := range req.Permissions {
			resource, action := gate.Permission(strings.TrimSpace(code)).Parse()
			if resource == "" || action == "" {
				unknown[code] = "malformed"
				continue
			}
			var perm models.Permission
			if err := tx.Where("resource_type = ? AND action = ?", resource, string(action)).First(&perm).Error; err != nil {
				unknown[code] = "unknown"
				continue
			}
			perms = append(perms, perm)
		}
		if len(unknown) > 0 {
			return &unknownPermissionsError{codes: unknown}
		}
		if err := tx.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return err
		}
		profile.Permissions = perms
		return nil
	})
	var uerr *unknownPermissionsError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
		return
	case errors.As(err, &uerr):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", uerr.codes)
		return
	case err != nil:
		writeError(w, h.log, err)
		return
	}

	// Any user may hold this profile.
	if h.CacheResolver != nil {
		h.CacheResolver.InvalidateAll()
	}
	h.log.Info("profile permissions saved", zap.Uint("profile_id", profile.ID), zap.Int("count", len(profile.Permissions)))
	httpx.JSON(w, http.StatusOK, profile)
}

type unknownPermissionsError struct {
	codes map[string]string
}

func (e *unknownPermissionsError) Error() string { return "unknown permissions" }
