package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	repairdb "github.com/diewo77/go-repairs/internal/db"
	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/notify"
	"github.com/diewo77/go-repairs/internal/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	t   *testing.T
	db  *gorm.DB
	now time.Time

	admin, staff, secretary, tech, tech2 gate.Actor
	gadget                               models.Gadget

	repairs  *RepairService
	logs     *CostLogService
	payments *PaymentService
	receipts *ReceiptService
	inbox    *NotificationService
	reports  *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureAt(t, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
}

// newFixtureAt builds the fixture on the sqlite database named by dsn.
func newFixtureAt(t *testing.T, dsn string) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repairdb.Migrate(conn))
	require.NoError(t, repairdb.SeedProfiles(conn))

	f := &fixture{t: t, db: conn, now: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	f.admin = f.user("admin@shop.test", "admin")
	f.staff = f.user("staff@shop.test", "staff")
	f.secretary = f.user("desk@shop.test", "secretary")
	f.tech = f.user("tech@shop.test", "technician")
	f.tech2 = f.user("tech2@shop.test", "technician")

	customer := models.Customer{Name: "Esi Mensah", Phone: "0240000000"}
	require.NoError(t, conn.Create(&customer).Error)
	f.gadget = models.Gadget{CustomerID: customer.ID, Name: "Galaxy S21", Brand: "Samsung"}
	require.NoError(t, conn.Create(&f.gadget).Error)

	resolver := policy.NewDBProfileResolver(conn)
	deps := Deps{
		DB:       conn,
		Notifier: notify.NewDispatcher(conn, resolver, nil, notify.Options{Clock: clock}),
		Clock:    clock,
	}
	f.repairs = NewRepairService(deps)
	f.logs = NewCostLogService(deps)
	f.payments = NewPaymentService(deps)
	f.receipts = NewReceiptService(deps)
	f.inbox = NewNotificationService(deps)
	f.reports = NewReportService(deps)
	return f
}

func (f *fixture) user(email, profileName string) gate.Actor {
	f.t.Helper()
	var profile models.Profile
	require.NoError(f.t, f.db.Where("name = ?", profileName).First(&profile).Error)
	u := models.User{Email: email, Name: email, Password: "x", Active: true, ProfileID: &profile.ID}
	require.NoError(f.t, f.db.Create(&u).Error)
	p, err := policy.NewDBProfileResolver(f.db).Resolve(context.Background(), u.ID)
	require.NoError(f.t, err)
	require.NotNil(f.t, p)
	return gate.NewActor(u.ID, p)
}

func (f *fixture) newGadget() models.Gadget {
	f.t.Helper()
	g := models.Gadget{CustomerID: f.gadget.CustomerID, Name: "iPhone 12"}
	require.NoError(f.t, f.db.Create(&g).Error)
	return g
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func uintPtr(v uint) *uint { return &v }

// openRepair books the fixture gadget in and assigns it to f.tech.
func (f *fixture) openRepair() *models.RepairTransaction {
	f.t.Helper()
	return f.openRepairFor(f.gadget.ID)
}

func (f *fixture) openRepairFor(gadgetID uint) *models.RepairTransaction {
	f.t.Helper()
	v, err := f.repairs.Create(context.Background(), f.secretary, CreateRepairInput{
		GadgetID:     gadgetID,
		TechnicianID: uintPtr(f.tech.UserID),
	})
	require.NoError(f.t, err)
	return v.Repair
}

// completedRepair returns a completed repair with one cost log per cost.
func (f *fixture) completedRepair(gadgetID uint, costs ...string) *models.RepairTransaction {
	f.t.Helper()
	ctx := context.Background()
	r := f.openRepairFor(gadgetID)
	for i, c := range costs {
		_, err := f.logs.Add(ctx, f.tech, r.ID, CostLogInput{Cost: dec(c), IssueDescription: fmt.Sprintf("issue %d", i+1)})
		require.NoError(f.t, err)
	}
	v, err := f.repairs.TransitionTo(ctx, f.tech, r.ID, models.RepairStatusCompleted)
	require.NoError(f.t, err)
	return v.Repair
}

func (f *fixture) pay(repairID uint, amount string) *PaymentResult {
	f.t.Helper()
	res, err := f.payments.Record(context.Background(), f.staff, repairID, PaymentInput{Amount: dec(amount), Method: models.PaymentMethodCash})
	require.NoError(f.t, err)
	return res
}

func (f *fixture) notifications(recipient uint) []models.Notification {
	f.t.Helper()
	var out []models.Notification
	require.NoError(f.t, f.db.Where("recipient_id = ?", recipient).Order("id").Find(&out).Error)
	return out
}

func (f *fixture) notificationTypes(recipient uint) []models.NotificationType {
	var types []models.NotificationType
	for _, n := range f.notifications(recipient) {
		types = append(types, n.Type)
	}
	return types
}
