package services

import (
	"context"
	"time"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/ledger"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/policy"
	"github.com/shopspring/decimal"
)

// ReportService aggregates ledgers for the dashboard. It only reads.
type ReportService struct {
	base
}

// NewReportService creates the reporting aggregator.
func NewReportService(d Deps) *ReportService {
	return &ReportService{base: newBase(d, "reports")}
}

// MonthlyReport summarises one calendar month.
type MonthlyReport struct {
	Year        int             `json:"year"`
	Month       time.Month      `json:"month"`
	Received    int64           `json:"received"`
	Fixed       int64           `json:"fixed"`
	Revenue     decimal.Decimal `json:"revenue"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Unpaid      int64           `json:"unpaid"`
}

// Monthly reports on the month containing ref:
//   - Received counts repairs brought in during the month.
//   - Fixed counts completed repairs last updated during the month.
//   - Revenue sums payments made during the month on completed repairs.
//   - Outstanding sums what is still owed on all completed repairs; Unpaid counts them.
func (s *ReportService) Monthly(ctx context.Context, actor gate.Actor, ref time.Time) (*MonthlyReport, error) {
	if err := s.authorize(ctx, actor, gate.ActionView, policy.ResourceReport, nil); err != nil {
		return nil, err
	}
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	end := start.AddDate(0, 1, 0)
	start, end = start.UTC(), end.UTC()

	db := s.session(ctx)
	rep := &MonthlyReport{Year: ref.Year(), Month: ref.Month()}

	if err := db.Model(&models.RepairTransaction{}).
		Where("brought_in_date >= ? AND brought_in_date < ?", start, end).
		Count(&rep.Received).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.RepairTransaction{}).
		Where("status = ? AND updated_at >= ? AND updated_at < ?", models.RepairStatusCompleted, start, end).
		Count(&rep.Fixed).Error; err != nil {
		return nil, err
	}

	var payments []models.Payment
	if err := db.Model(&models.Payment{}).
		Select("payments.id, payments.amount").
		Joins("JOIN repair_transactions ON repair_transactions.id = payments.repair_id").
		Where("repair_transactions.status = ?", models.RepairStatusCompleted).
		Where("payments.created_at >= ? AND payments.created_at < ?", start, end).
		Find(&payments).Error; err != nil {
		return nil, err
	}
	amounts := make([]ledger.Amount, len(payments))
	for i, p := range payments {
		amounts[i] = p.Amount
	}
	rep.Revenue = decimal.Sum(decimal.Zero, amounts...)

	var completed []models.RepairTransaction
	if err := db.Preload("CostLogs").Preload("Payments").
		Where("status = ?", models.RepairStatusCompleted).
		Find(&completed).Error; err != nil {
		return nil, err
	}
	rep.Outstanding = decimal.Zero
	for i := range completed {
		due := completed[i].Ledger().Outstanding()
		if due.IsPositive() {
			rep.Outstanding = rep.Outstanding.Add(due)
			rep.Unpaid++
		}
	}
	return rep, nil
}
