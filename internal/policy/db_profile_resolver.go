package policy

import (
	"context"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/models"
	"gorm.io/gorm"
)

// DBProfileResolver fetches user profiles from the database.
// It implements gate.ProfileResolver for uint user IDs.
type DBProfileResolver struct {
	DB *gorm.DB
}

// NewDBProfileResolver creates a new database-backed profile resolver.
func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{DB: db}
}

// Resolve looks up the user's profile, preloading permissions.
// Inactive users and users without a profile resolve to nil.
func (r *DBProfileResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Profile.Permissions").First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	if !user.Active || user.Profile == nil {
		return nil, nil
	}
	return &dbProfileAdapter{profile: user.Profile}, nil
}

// UsersWith returns the ids of active users whose profile grants perm,
// wildcards included.
func (r *DBProfileResolver) UsersWith(ctx context.Context, perm gate.Permission) ([]uint, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).
		Preload("Profile.Permissions").
		Where("active = ? AND profile_id IS NOT NULL", true).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	var ids []uint
	for i := range users {
		if users[i].Profile == nil {
			continue
		}
		if (&dbProfileAdapter{profile: users[i].Profile}).HasPermission(perm) {
			ids = append(ids, users[i].ID)
		}
	}
	return ids, nil
}

// dbProfileAdapter wraps a models.Profile to implement gate.Profile.
type dbProfileAdapter struct {
	profile *models.Profile
}

func (a *dbProfileAdapter) ID() uint     { return a.profile.ID }
func (a *dbProfileAdapter) Name() string { return a.profile.Name }

// HasPermission supports "*:*" and "resource:*" wildcards.
func (a *dbProfileAdapter) HasPermission(perm gate.Permission) bool {
	for _, p := range a.profile.Permissions {
		if gate.Permission(p.Code()).Matches(perm) {
			return true
		}
	}
	return false
}

func (a *dbProfileAdapter) Permissions() []gate.Permission {
	result := make([]gate.Permission, len(a.profile.Permissions))
	for i, p := range a.profile.Permissions {
		result[i] = gate.Permission(p.Code())
	}
	return result
}
