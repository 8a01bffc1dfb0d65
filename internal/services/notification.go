package services

import (
	"context"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/policy"
	"gorm.io/gorm"
)

// NotificationService is the per-user notification inbox.
type NotificationService struct {
	base
}

// NewNotificationService creates the inbox service.
func NewNotificationService(d Deps) *NotificationService {
	return &NotificationService{base: newBase(d, "inbox")}
}

// visible scopes a query to the notifications the actor may see:
// technician-only actors see Assigned notifications only.
func visible(q *gorm.DB, actor gate.Actor) *gorm.DB {
	q = q.Where("recipient_id = ?", actor.UserID)
	if policy.IsTechnicianOnly(actor) {
		q = q.Where("type = ?", models.NotificationAssigned)
	}
	return q
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor gate.Actor, unreadOnly bool, limit int) ([]models.Notification, error) {
	if !actor.Valid() {
		return nil, gate.ErrUnauthorized
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := visible(s.session(ctx).Model(&models.Notification{}), actor)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount counts the actor's visible unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, actor gate.Actor) (int64, error) {
	if !actor.Valid() {
		return 0, gate.ErrUnauthorized
	}
	var n int64
	err := visible(s.session(ctx).Model(&models.Notification{}), actor).
		Where("is_read = ?", false).
		Count(&n).Error
	return n, err
}

// MarkRead flags one of the actor's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor gate.Actor, id uint) error {
	if !actor.Valid() {
		return gate.ErrUnauthorized
	}
	res := visible(s.session(ctx).Model(&models.Notification{}), actor).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("notification", id)
	}
	return nil
}

// MarkAllRead flags every visible unread notification and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor gate.Actor) (int64, error) {
	if !actor.Valid() {
		return 0, gate.ErrUnauthorized
	}
	res := visible(s.session(ctx).Model(&models.Notification{}), actor).
		Where("is_read = ?", false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
