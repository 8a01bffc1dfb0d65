package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/ledger"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/notify"
	"github.com/diewo77/go-repairs/internal/policy"
	"github.com/diewo77/go-repairs/internal/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService appends payments to completed repairs.
type PaymentService struct {
	base
}

// NewPaymentService creates the payment recorder.
func NewPaymentService(d Deps) *PaymentService {
	return &PaymentService{base: newBase(d, "payments")}
}

// PaymentInput is one payment as entered at the counter.
type PaymentInput struct {
	Amount         decimal.Decimal
	Method         models.PaymentMethod
	MobileProvider string
	MobileNumber   string
	Notes          string
}

func (in PaymentInput) validate() error {
	v := validation.Violations{}
	validation.PositiveDecimal("amount", in.Amount, v)
	validation.MaxDecimals("amount", in.Amount, models.MoneyPlaces, v)
	validation.OneOf("method", string(in.Method), models.PaymentMethods, v)
	if in.Method == models.PaymentMethodMobileMoney {
		validation.Required("mobile_provider", in.MobileProvider, v)
		validation.Required("mobile_number", in.MobileNumber, v)
	}
	return invalid(v)
}

// PaymentResult is the recorded payment and the ledger right after it.
type PaymentResult struct {
	Payment *models.Payment `json:"payment"`
	Ledger  ledger.Ledger   `json:"ledger"`
}

// Record appends a payment. The repair must be completed and not yet fully
// paid; overpayment is accepted.
func (s *PaymentService) Record(ctx context.Context, actor gate.Actor, repairID uint, in PaymentInput) (*PaymentResult, error) {
	if err := s.authorize(ctx, actor, gate.ActionCreate, policy.ResourcePayment, nil); err != nil {
		return nil, err
	}
	var (
		repair  *models.RepairTransaction
		payment models.Payment
	)
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		repair, err = lockRepair(tx, repairID)
		if err != nil {
			return err
		}
		if !repair.IsCompleted() {
			return fmt.Errorf("%w: payments are only accepted once the repair is completed", ErrInvalidTransition)
		}
		if repair.Ledger().IsFullyPaid {
			return fmt.Errorf("%w: repair %s is fully paid, issue the receipt instead", ErrAlreadySettled, repair.Code)
		}
		if err := in.validate(); err != nil {
			return err
		}
		payment = models.Payment{
			RepairID:     repair.ID,
			Amount:       in.Amount,
			Method:       in.Method,
			Notes:        strings.TrimSpace(in.Notes),
			RecordedByID: actor.UserID,
		}
		if in.Method == models.PaymentMethodMobileMoney {
			payment.MobileProvider = strings.TrimSpace(in.MobileProvider)
			payment.MobileNumber = strings.TrimSpace(in.MobileNumber)
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		repair.Payments = append(repair.Payments, payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l := repair.Ledger()
	s.log.Info("payment recorded",
		zap.Uint("repair_id", repair.ID),
		zap.String("amount", payment.Amount.String()),
		zap.String("method", string(payment.Method)),
		zap.String("due", l.TotalDue.String()),
		zap.Uint("by", actor.UserID))
	s.dispatch(ctx, notify.PaymentReceived(repair, policy.PermStaff, payment.Amount, l.TotalDue))
	return &PaymentResult{Payment: &payment, Ledger: l}, nil
}

// List returns the payments of a repair, oldest first.
func (s *PaymentService) List(ctx context.Context, actor gate.Actor, repairID uint) ([]models.Payment, error) {
	if err := s.authorize(ctx, actor, gate.ActionView, policy.ResourcePayment, nil); err != nil {
		return nil, err
	}
	db := s.session(ctx)
	var repair models.RepairTransaction
	if err := db.Select("id").First(&repair, repairID).Error; err != nil {
		return nil, lookupErr(err, "repair", repairID)
	}
	var payments []models.Payment
	if err := db.Preload("RecordedBy").Where("repair_id = ?", repairID).Order("id").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
