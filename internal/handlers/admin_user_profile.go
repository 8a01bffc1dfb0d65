package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/httpx"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminUserProfileHandler lists users and assigns them to profiles.
type AdminUserProfileHandler struct {
	DB            *gorm.DB
	CacheResolver *gate.CachedResolver[uint] // To invalidate cache on changes
	log           *zap.Logger
}

// NewAdminUserProfileHandler creates a new admin user profile handler.
func NewAdminUserProfileHandler(db *gorm.DB, cacheResolver *gate.CachedResolver[uint], log *zap.Logger) *AdminUserProfileHandler {
	return &AdminUserProfileHandler{DB: db, CacheResolver: cacheResolver, log: logging.OrNop(log).Named("http.admin")}
}

// List returns all users with their profile, and the assignable profiles.
func (h *AdminUserProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	db := h.DB.WithContext(r.Context())
	var users []models.User
	if err := db.Preload("Profile").Order("id").Find(&users).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	var profiles []models.Profile
	if err := db.Order("name").Find(&profiles).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"users":    users,
		"profiles": profiles,
	})
}

type assignProfileRequest struct {
	// ProfileID nil or 0 removes the user's profile.
	ProfileID *uint `json:"profile_id"`
}

// AssignProfile handles POST /admin/users/{id}/profile.
func (h *AdminUserProfileHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathIDOr400(w, r)
	if !ok {
		return
	}
	var req assignProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if req.ProfileID != nil && *req.ProfileID == 0 {
		req.ProfileID = nil
	}

	db := h.DB.WithContext(r.Context())
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
			return
		}
		writeError(w, h.log, err)
		return
	}
	if req.ProfileID != nil {
		var profile models.Profile
		if err := db.First(&profile, *req.ProfileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
				return
			}
			writeError(w, h.log, err)
			return
		}
	}

	if err := db.Model(&user).Update("profile_id", req.ProfileID).Error; err != nil {
		writeError(w, h.log, err)
		return
	}
	if h.CacheResolver != nil {
		h.CacheResolver.Invalidate(userID)
	}
	h.log.Info("profile assigned", zap.Uint("user_id", userID), zap.Uintp("profile_id", req.ProfileID))
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":    userID,
		"profile_id": req.ProfileID,
	})
}
