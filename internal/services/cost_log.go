package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/policy"
	"github.com/diewo77/go-repairs/internal/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CostLogService manages the itemised diagnosis and price entries of a repair.
type CostLogService struct {
	base
}

// NewCostLogService creates the cost log manager.
func NewCostLogService(d Deps) *CostLogService {
	return &CostLogService{base: newBase(d, "cost_logs")}
}

// CostLogInput is the editable part of a cost log.
type CostLogInput struct {
	Cost                  decimal.Decimal
	IssueDescription      string
	ResolutionDescription string
}

func (in CostLogInput) validate() error {
	v := validation.Violations{}
	validation.PositiveDecimal("cost", in.Cost, v)
	validation.MaxDecimals("cost", in.Cost, models.MoneyPlaces, v)
	validation.Required("issue_description", in.IssueDescription, v)
	return invalid(v)
}

// Add attaches a cost log. Completed repairs accept no new entries.
func (s *CostLogService) Add(ctx context.Context, actor gate.Actor, repairID uint, in CostLogInput) (*models.CostLog, error) {
	var log models.CostLog
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repair, err := lockRepair(tx, repairID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, actor, gate.ActionCreate, policy.ResourceRepairLog, repair); err != nil {
			return err
		}
		if !repair.CanEdit() {
			return fmt.Errorf("%w: cannot add cost logs to a completed repair", ErrInvalidTransition)
		}
		if err := in.validate(); err != nil {
			return err
		}
		log = models.CostLog{
			RepairID:              repair.ID,
			Cost:                  in.Cost,
			IssueDescription:      in.IssueDescription,
			ResolutionDescription: in.ResolutionDescription,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}
		return updateRepair(tx, repair.ID, map[string]any{"updated_at": s.now()})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("cost log added", zap.Uint("repair_id", repairID), zap.Uint("log_id", log.ID), zap.String("cost", log.Cost.String()))
	return &log, nil
}

// lockLogRepair resolves a cost log and locks its repair.
func lockLogRepair(tx *gorm.DB, logID uint) (*models.CostLog, *models.RepairTransaction, error) {
	var log models.CostLog
	if err := tx.First(&log, logID).Error; err != nil {
		return nil, nil, lookupErr(err, "cost log", logID)
	}
	repair, err := lockRepair(tx, log.RepairID)
	if err != nil {
		return nil, nil, err
	}
	return &log, repair, nil
}

// Update overwrites a cost log in place while its repair is not completed.
func (s *CostLogService) Update(ctx context.Context, actor gate.Actor, logID uint, in CostLogInput) (*models.CostLog, error) {
	var log *models.CostLog
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var (
			repair *models.RepairTransaction
			err    error
		)
		log, repair, err = lockLogRepair(tx, logID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, actor, gate.ActionUpdate, policy.ResourceRepairLog, repair); err != nil {
			return err
		}
		if !repair.CanEdit() {
			return fmt.Errorf("%w: cannot edit cost logs of a completed repair", ErrInvalidTransition)
		}
		if err := in.validate(); err != nil {
			return err
		}
		if err := tx.Model(log).Updates(map[string]any{
			"cost":                   in.Cost,
			"issue_description":      in.IssueDescription,
			"resolution_description": in.ResolutionDescription,
		}).Error; err != nil {
			return err
		}
		log.Cost = in.Cost
		log.IssueDescription = in.IssueDescription
		log.ResolutionDescription = in.ResolutionDescription
		return updateRepair(tx, repair.ID, map[string]any{"updated_at": s.now()})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("cost log updated", zap.Uint("log_id", logID), zap.Uint("by", actor.UserID))
	return log, nil
}

// Delete removes a cost log. It needs repair_log:delete, which only elevated
// profiles hold, and the repair must not be completed.
func (s *CostLogService) Delete(ctx context.Context, actor gate.Actor, logID uint) error {
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		log, repair, err := lockLogRepair(tx, logID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, actor, gate.ActionDelete, policy.ResourceRepairLog, repair); err != nil {
			return err
		}
		if !repair.CanEdit() {
			return fmt.Errorf("%w: cannot delete cost logs of a completed repair", ErrInvalidTransition)
		}
		if err := tx.Delete(log).Error; err != nil {
			return err
		}
		return updateRepair(tx, repair.ID, map[string]any{"updated_at": s.now()})
	})
	if err != nil {
		return err
	}
	s.log.Info("cost log deleted", zap.Uint("log_id", logID), zap.Uint("by", actor.UserID))
	return nil
}
