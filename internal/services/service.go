// Package services holds the repair lifecycle and financial reconciliation
// core. Every mutating operation runs in one database transaction holding a
// row lock on the repair; notifications are dispatched after commit.
package services

import (
	"context"
	"time"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/notify"
	"github.com/diewo77/go-repairs/internal/policy"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notifier receives lifecycle events once the triggering transaction committed.
type Notifier interface {
	Dispatch(ctx context.Context, events ...notify.Event)
}

// Deps are the collaborators shared by every service.
type Deps struct {
	DB       *gorm.DB
	Gate     *gate.ActorGate
	Notifier Notifier
	Clock    func() time.Time
	Logger   *zap.Logger
}

type base struct {
	db     *gorm.DB
	gate   *gate.ActorGate
	notify Notifier
	now    func() time.Time
	log    *zap.Logger
}

func newBase(d Deps, name string) base {
	b := base{
		db:     d.DB,
		gate:   d.Gate,
		notify: d.Notifier,
		now:    d.Clock,
		log:    logging.OrNop(d.Logger).Named(name),
	}
	if b.gate == nil {
		b.gate = policy.NewRepairGate()
	}
	if b.now == nil {
		b.now = func() time.Time { return time.Now().UTC() }
	}
	return b
}

func (b base) session(ctx context.Context) *gorm.DB {
	return b.db.Session(&gorm.Session{Context: ctx, NowFunc: b.now})
}

// inTx runs fn in a transaction stamped by the service clock.
func (b base) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return b.session(ctx).Transaction(fn)
}

func (b base) dispatch(ctx context.Context, events ...notify.Event) {
	if b.notify == nil || len(events) == 0 {
		return
	}
	b.notify.Dispatch(ctx, events...)
}

func (b base) authorize(ctx context.Context, actor gate.Actor, action gate.Action, resourceType string, resource any) error {
	return b.gate.Authorize(ctx, actor, action, resourceType, resource)
}

// lockRepair loads a repair with SELECT ... FOR UPDATE together with its
// cost logs and payments, so the ledger seen by the caller cannot change
// until the transaction ends.
func lockRepair(tx *gorm.DB, id uint) (*models.RepairTransaction, error) {
	var r models.RepairTransaction
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, id).Error; err != nil {
		return nil, lookupErr(err, "repair", id)
	}
	if err := loadChildren(tx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func loadChildren(tx *gorm.DB, r *models.RepairTransaction) error {
	if err := tx.Where("repair_id = ?", r.ID).Order("id").Find(&r.CostLogs).Error; err != nil {
		return err
	}
	return tx.Where("repair_id = ?", r.ID).Order("id").Find(&r.Payments).Error
}

// updateRepair writes columns of one repair without touching its loaded associations.
func updateRepair(tx *gorm.DB, id uint, fields map[string]any) error {
	return tx.Model(&models.RepairTransaction{}).Where("id = ?", id).Updates(fields).Error
}
