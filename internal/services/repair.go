package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/ledger"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/notify"
	"github.com/diewo77/go-repairs/internal/policy"
	"github.com/diewo77/go-repairs/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	codeLength   = 10
	codeAttempts = 5
)

// RepairService is the lifecycle controller of repair transactions.
type RepairService struct {
	base
	newCode func() string
}

// NewRepairService creates the lifecycle controller.
func NewRepairService(d Deps) *RepairService {
	return &RepairService{base: newBase(d, "repairs"), newCode: randomCode}
}

func randomCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:codeLength]
}

// RepairView is a repair together with its derived ledger.
type RepairView struct {
	Repair *models.RepairTransaction `json:"repair"`
	Ledger ledger.Ledger             `json:"ledger"`
}

func viewOf(r *models.RepairTransaction) *RepairView {
	return &RepairView{Repair: r, Ledger: r.Ledger()}
}

// CreateRepairInput books a gadget in. A nil TechnicianID leaves the repair
// unassigned. NotifyTechnician makes the caller's choice to alert the
// technician explicit.
type CreateRepairInput struct {
	GadgetID         uint
	TechnicianID     *uint
	Status           models.RepairStatus
	NotifyTechnician bool
}

// Create opens a repair for a gadget.
func (s *RepairService) Create(ctx context.Context, actor gate.Actor, in CreateRepairInput) (*RepairView, error) {
	if err := s.authorize(ctx, actor, gate.ActionCreate, policy.ResourceRepair, nil); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.RepairStatusPending
	}
	v := validation.Violations{}
	validation.RequiredID("gadget_id", in.GadgetID, v)
	if !in.Status.Valid() {
		v["status"] = "invalid_choice"
	}
	if err := invalid(v); err != nil {
		return nil, err
	}
	if in.Status == models.RepairStatusCompleted {
		return nil, fmt.Errorf("%w: a repair cannot be created as completed", ErrInvalidTransition)
	}

	var repair models.RepairTransaction
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var gadget models.Gadget
		if err := tx.First(&gadget, in.GadgetID).Error; err != nil {
			return lookupErr(err, "gadget", in.GadgetID)
		}
		if in.TechnicianID != nil {
			if err := checkTechnician(ctx, tx, *in.TechnicianID); err != nil {
				return err
			}
		}
		var active int64
		if err := tx.Model(&models.RepairTransaction{}).
			Where("gadget_id = ? AND status IN ?", in.GadgetID, models.OpenStatuses()).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return &ValidationError{Violations: validation.Violations{"gadget_id": "active_repair_exists"}}
		}

		code, err := s.uniqueCode(tx)
		if err != nil {
			return err
		}
		repair = models.RepairTransaction{
			Code:          code,
			Status:        in.Status,
			GadgetID:      in.GadgetID,
			TechnicianID:  in.TechnicianID,
			BroughtInDate: s.now(),
		}
		return tx.Create(&repair).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("repair created", zap.Uint("repair_id", repair.ID), zap.String("code", repair.Code), zap.Uint("by", actor.UserID))
	if in.NotifyTechnician && in.TechnicianID != nil {
		s.dispatch(ctx, notify.Assigned(&repair, *in.TechnicianID))
	}
	return viewOf(&repair), nil
}

func (s *RepairService) uniqueCode(tx *gorm.DB) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := s.newCode()
		var n int64
		if err := tx.Model(&models.RepairTransaction{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 && code != "" {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique repair code")
}

// checkTechnician verifies the user exists and may work on repairs.
func checkTechnician(ctx context.Context, tx *gorm.DB, id uint) error {
	if id == 0 {
		return &ValidationError{Violations: validation.Violations{"technician_id": "required"}}
	}
	profile, err := policy.NewDBProfileResolver(tx).Resolve(ctx, id)
	if err != nil {
		return lookupErr(err, "technician", id)
	}
	if profile == nil || !profile.HasPermission(policy.PermTechnician) {
		return &ValidationError{Violations: validation.Violations{"technician_id": "not_a_technician"}}
	}
	return nil
}

// UpdateRepairInput is the staff edit of a repair.
type UpdateRepairInput struct {
	TechnicianID *uint
	Status       models.RepairStatus
}

// UpdateStatusAndTechnician overwrites status and technician together.
// Completed repairs are frozen.
func (s *RepairService) UpdateStatusAndTechnician(ctx context.Context, actor gate.Actor, id uint, in UpdateRepairInput) (*RepairView, error) {
	var (
		repair      *models.RepairTransaction
		assignedNew bool
		completed   bool
	)
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		repair, err = lockRepair(tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, actor, gate.ActionUpdate, policy.ResourceRepair, repair); err != nil {
			return err
		}
		if !repair.CanEdit() {
			return fmt.Errorf("%w: cannot update a completed repair", ErrInvalidTransition)
		}
		if !in.Status.Valid() {
			return &ValidationError{Violations: validation.Violations{"status": "invalid_choice"}}
		}
		if in.TechnicianID != nil {
			if err := checkTechnician(ctx, tx, *in.TechnicianID); err != nil {
				return err
			}
		}

		previous := repair.AssignedTechnician()
		if err := updateRepair(tx, repair.ID, map[string]any{
			"status":        in.Status,
			"technician_id": in.TechnicianID,
			"updated_at":    s.now(),
		}); err != nil {
			return err
		}
		repair.Status = in.Status
		repair.TechnicianID = in.TechnicianID
		assignedNew = in.TechnicianID != nil && *in.TechnicianID != previous
		completed = in.Status == models.RepairStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("repair updated", zap.Uint("repair_id", repair.ID), zap.String("status", string(repair.Status)), zap.Uint("by", actor.UserID))
	var events []notify.Event
	if assignedNew {
		events = append(events, notify.Assigned(repair, *repair.TechnicianID))
	}
	if completed {
		events = append(events, completionEvents(repair)...)
	}
	s.dispatch(ctx, events...)
	return viewOf(repair), nil
}

// Reassign swaps the technician and keeps the status. Reassigning to the
// current technician returns ErrNoOp.
func (s *RepairService) Reassign(ctx context.Context, actor gate.Actor, id, technicianID uint) (*RepairView, error) {
	var repair *models.RepairTransaction
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		repair, err = lockRepair(tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, actor, gate.ActionAssign, policy.ResourceRepair, repair); err != nil {
			return err
		}
		if !repair.CanEdit() {
			return fmt.Errorf("%w: cannot reassign a completed repair", ErrInvalidTransition)
		}
		if technicianID != 0 && repair.AssignedTechnician() == technicianID {
			return fmt.Errorf("%w: technician is already assigned to this repair", ErrNoOp)
		}
		if err := checkTechnician(ctx, tx, technicianID); err != nil {
			return err
		}
		if err := updateRepair(tx, repair.ID, map[string]any{
			"technician_id": technicianID,
			"updated_at":    s.now(),
		}); err != nil {
			return err
		}
		repair.TechnicianID = &technicianID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("repair reassigned", zap.Uint("repair_id", repair.ID), zap.Uint("technician_id", technicianID), zap.Uint("by", actor.UserID))
	s.dispatch(ctx, notify.Assigned(repair, technicianID))
	return viewOf(repair), nil
}

// TransitionTo is the technician self-service status change. Completing a
// repair notifies staff, and also raises PaymentPending when nothing has
// been paid.
func (s *RepairService) TransitionTo(ctx context.Context, actor gate.Actor, id uint, status models.RepairStatus) (*RepairView, error) {
	if !status.Valid() {
		return nil, &ValidationError{Violations: validation.Violations{"status": "invalid_choice"}}
	}
	var repair *models.RepairTransaction
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		repair, err = lockRepair(tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, actor, gate.ActionWork, policy.ResourceRepair, repair); err != nil {
			return err
		}
		if repair.IsCompleted() {
			return fmt.Errorf("%w: repair is already completed", ErrInvalidTransition)
		}
		if err := updateRepair(tx, repair.ID, map[string]any{
			"status":     status,
			"updated_at": s.now(),
		}); err != nil {
			return err
		}
		repair.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("repair status changed", zap.Uint("repair_id", repair.ID), zap.String("status", string(status)), zap.Uint("by", actor.UserID))
	if status == models.RepairStatusCompleted {
		s.dispatch(ctx, completionEvents(repair)...)
	}
	return viewOf(repair), nil
}

func completionEvents(r *models.RepairTransaction) []notify.Event {
	l := r.Ledger()
	events := []notify.Event{notify.Completed(r, policy.PermStaff)}
	if l.Unpaid() {
		events = append(events, notify.PaymentPending(r, policy.PermStaff, l.TotalDue))
	}
	return events
}

// Get returns a repair with its ledger.
func (s *RepairService) Get(ctx context.Context, actor gate.Actor, id uint) (*RepairView, error) {
	var r models.RepairTransaction
	err := s.session(ctx).
		Preload("Gadget.Customer").
		Preload("Technician").
		Preload("CostLogs", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Receipt").
		First(&r, id).Error
	if err != nil {
		return nil, lookupErr(err, "repair", id)
	}
	if err := s.authorize(ctx, actor, gate.ActionView, policy.ResourceRepair, &r); err != nil {
		return nil, err
	}
	return viewOf(&r), nil
}

// RepairFilter narrows List.
type RepairFilter struct {
	Status       models.RepairStatus
	TechnicianID uint
	Limit        int
	Offset       int
}

// List returns repairs newest first. Technician-only actors only see the
// repairs assigned to them.
func (s *RepairService) List(ctx context.Context, actor gate.Actor, f RepairFilter) ([]RepairView, error) {
	if err := s.authorize(ctx, actor, gate.ActionList, policy.ResourceRepair, nil); err != nil {
		return nil, err
	}
	if policy.IsTechnicianOnly(actor) {
		f.TechnicianID = actor.UserID
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	q := s.session(ctx).
		Preload("Gadget").
		Preload("CostLogs").
		Preload("Payments").
		Order("brought_in_date DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TechnicianID != 0 {
		q = q.Where("technician_id = ?", f.TechnicianID)
	}
	var repairs []models.RepairTransaction
	if err := q.Find(&repairs).Error; err != nil {
		return nil, err
	}
	out := make([]RepairView, len(repairs))
	for i := range repairs {
		out[i] = *viewOf(&repairs[i])
	}
	return out, nil
}
