package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/policy"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReceiptService issues the single receipt of a fully paid repair.
type ReceiptService struct {
	base
}

// NewReceiptService creates the receipt issuer.
func NewReceiptService(d Deps) *ReceiptService {
	return &ReceiptService{base: newBase(d, "receipts")}
}

// Issue returns the repair's receipt, creating it on first call. created
// reports whether this call created it.
func (s *ReceiptService) Issue(ctx context.Context, actor gate.Actor, repairID uint) (receipt *models.Receipt, created bool, err error) {
	if err := s.authorize(ctx, actor, gate.ActionCreate, policy.ResourceReceipt, nil); err != nil {
		return nil, false, err
	}
	err = s.inTx(ctx, func(tx *gorm.DB) error {
		repair, err := lockRepair(tx, repairID)
		if err != nil {
			return err
		}
		if !repair.IsCompleted() {
			return fmt.Errorf("%w: receipts are only issued for completed repairs", ErrInvalidTransition)
		}

		var existing models.Receipt
		err = tx.Where("repair_id = ?", repair.ID).First(&existing).Error
		if err == nil {
			receipt = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		l := repair.Ledger()
		if !l.IsFullyPaid {
			return &NotFullyPaidError{Outstanding: l.Outstanding()}
		}

		now := s.now()
		seq, err := nextReceiptSequence(tx, now.Year())
		if err != nil {
			return err
		}
		receipt = &models.Receipt{
			RepairID:      repair.ID,
			ReceiptNumber: models.FormatReceiptNumber(now.Year(), seq),
			Year:          now.Year(),
			AmountPaid:    l.TotalPaid,
			IssuedAt:      now,
		}
		created = true
		return tx.Create(receipt).Error
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Info("receipt issued",
			zap.Uint("repair_id", repairID),
			zap.String("number", receipt.ReceiptNumber),
			zap.String("amount_paid", receipt.AmountPaid.String()))
	}
	return receipt, created, nil
}

// nextReceiptSequence reserves the next number of year inside tx. The
// sequence row is locked until tx ends; it starts from the number of
// receipts already issued that year.
func nextReceiptSequence(tx *gorm.DB, year int) (int, error) {
	var seq models.ReceiptSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("year = ?", year).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var issued int64
		if err := tx.Model(&models.Receipt{}).Where("year = ?", year).Count(&issued).Error; err != nil {
			return 0, err
		}
		seed := models.ReceiptSequence{Year: year, LastValue: int(issued)}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return 0, err
		}
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("year = ?", year).First(&seq).Error
	}
	if err != nil {
		return 0, fmt.Errorf("receipt sequence %d: %w", year, err)
	}
	next := seq.LastValue + 1
	if err := tx.Model(&models.ReceiptSequence{}).Where("year = ?", year).Update("last_value", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// Get returns the receipt of a repair.
func (s *ReceiptService) Get(ctx context.Context, actor gate.Actor, repairID uint) (*models.Receipt, error) {
	if err := s.authorize(ctx, actor, gate.ActionView, policy.ResourceReceipt, nil); err != nil {
		return nil, err
	}
	var r models.Receipt
	if err := s.session(ctx).Where("repair_id = ?", repairID).First(&r).Error; err != nil {
		return nil, lookupErr(err, "receipt for repair", repairID)
	}
	return &r, nil
}

// List returns receipts newest first, optionally restricted to one year.
func (s *ReceiptService) List(ctx context.Context, actor gate.Actor, year int) ([]models.Receipt, error) {
	if err := s.authorize(ctx, actor, gate.ActionView, policy.ResourceReceipt, nil); err != nil {
		return nil, err
	}
	q := s.session(ctx).Order("issued_at DESC, id DESC")
	if year != 0 {
		q = q.Where("year = ?", year)
	}
	var out []models.Receipt
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
