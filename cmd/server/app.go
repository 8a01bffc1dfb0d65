package main

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-repairs/internal/auth"
	"github.com/diewo77/go-repairs/internal/config"
	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/handlers"
	"github.com/diewo77/go-repairs/internal/httpx"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/diewo77/go-repairs/internal/policy"
	"github.com/diewo77/go-repairs/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	db       *gorm.DB
	log      *zap.Logger
	sessions *auth.Sessions
	authGate *policy.AuthGate

	authH     *handlers.AuthHandler
	repairH   *handlers.RepairHandler
	logH      *handlers.CostLogHandler
	paymentH  *handlers.PaymentHandler
	receiptH  *handlers.ReceiptHandler
	inboxH    *handlers.NotificationHandler
	reportH   *handlers.ReportHandler
	adminUser *handlers.AdminUserProfileHandler
	adminProf *handlers.AdminProfileHandler
}

// NewApp wires services and handlers around one database and notifier.
func NewApp(db *gorm.DB, cfg *config.Config, notifier services.Notifier, log *zap.Logger, clock func() time.Time) *App {
	log = logging.OrNop(log)
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	sessions := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL).
		WithClock(clock).
		WithVerifier(func(ctx context.Context, uid uint) bool {
			var count int64
			db.WithContext(ctx).Model(&models.User{}).Where("id = ? AND active = ?", uid, true).Count(&count)
			return count > 0
		})
	authGate := policy.NewAuthGate(db, cfg.Auth.ProfileCacheTTL)

	deps := services.Deps{DB: db, Notifier: notifier, Clock: clock, Logger: log}
	app := &App{
		mux:      http.NewServeMux(),
		db:       db,
		log:      log,
		sessions: sessions,
		authGate: authGate,

		authH:     handlers.NewAuthHandler(db, sessions, log),
		repairH:   handlers.NewRepairHandler(services.NewRepairService(deps), log),
		logH:      handlers.NewCostLogHandler(services.NewCostLogService(deps), log),
		paymentH:  handlers.NewPaymentHandler(services.NewPaymentService(deps), log),
		receiptH:  handlers.NewReceiptHandler(services.NewReceiptService(deps), log),
		inboxH:    handlers.NewNotificationHandler(services.NewNotificationService(deps), log),
		reportH:   handlers.NewReportHandler(services.NewReportService(deps), clock, log),
		adminUser: handlers.NewAdminUserProfileHandler(db, authGate.CacheResolver, log),
		adminProf: handlers.NewAdminProfileHandler(db, authGate.CacheResolver, log),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := logging.Middleware(a.log)(a.sessions.Middleware(a.mux))
	handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// Public routes
	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.HandleFunc("POST /login", a.authH.Login)
	a.mux.HandleFunc("POST /logout", a.authH.Logout)
	a.mux.Handle("GET /me", a.requireAuth(http.HandlerFunc(a.authH.Me)))

	// Repairs
	rh := a.repairH
	a.mux.Handle("GET /repairs", a.protect(policy.ResourceRepair, gate.ActionList, rh.List))
	a.mux.Handle("POST /repairs", a.protect(policy.ResourceRepair, gate.ActionCreate, rh.Create))
	a.mux.Handle("GET /repairs/{id}", a.protect(policy.ResourceRepair, gate.ActionView, rh.View))
	a.mux.Handle("POST /repairs/{id}", a.protect(policy.ResourceRepair, gate.ActionUpdate, rh.Update))
	a.mux.Handle("POST /repairs/{id}/reassign", a.protect(policy.ResourceRepair, gate.ActionAssign, rh.Reassign))
	a.mux.Handle("POST /repairs/{id}/status", a.protect(policy.ResourceRepair, gate.ActionWork, rh.Transition))

	// Cost logs
	lh := a.logH
	a.mux.Handle("POST /repairs/{id}/logs", a.protect(policy.ResourceRepairLog, gate.ActionCreate, lh.Add))
	a.mux.Handle("POST /logs/{id}", a.protect(policy.ResourceRepairLog, gate.ActionUpdate, lh.Update))
	a.mux.Handle("POST /logs/{id}/delete", a.protect(policy.ResourceRepairLog, gate.ActionDelete, lh.Delete))

	// Payments and receipts
	ph := a.paymentH
	a.mux.Handle("GET /repairs/{id}/payments", a.protect(policy.ResourcePayment, gate.ActionView, ph.List))
	a.mux.Handle("POST /repairs/{id}/payments", a.protect(policy.ResourcePayment, gate.ActionCreate, ph.Record))
	rc := a.receiptH
	a.mux.Handle("POST /repairs/{id}/receipt", a.protect(policy.ResourceReceipt, gate.ActionCreate, rc.Issue))
	a.mux.Handle("GET /repairs/{id}/receipt", a.protect(policy.ResourceReceipt, gate.ActionView, rc.Get))
	a.mux.Handle("GET /receipts", a.protect(policy.ResourceReceipt, gate.ActionView, rc.List))

	// Every user has an inbox
	nh := a.inboxH
	a.mux.Handle("GET /notifications", a.withActor(nh.List))
	a.mux.Handle("GET /notifications/unread-count", a.withActor(nh.UnreadCount))
	a.mux.Handle("POST /notifications/{id}/read", a.withActor(nh.MarkRead))
	a.mux.Handle("POST /notifications/read-all", a.withActor(nh.MarkAllRead))

	a.mux.Handle("GET /reports/monthly", a.protect(policy.ResourceReport, gate.ActionView, a.reportH.Monthly))

	// Admin
	a.mux.Handle("GET /admin/users", a.requireAdmin(a.adminUser.List))
	a.mux.Handle("POST /admin/users/{id}/profile", a.requireAdmin(a.adminUser.AssignProfile))
	a.mux.Handle("GET /admin/profiles", a.requireAdmin(a.adminProf.List))
	a.mux.Handle("POST /admin/profiles/{id}/permissions", a.requireAdmin(a.adminProf.SavePermissions))
}

// requireAuth answers 401 without a valid session.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return a.sessions.RequireAuth(next)
}

// withActor requires a session and a resolvable profile.
func (a *App) withActor(h http.HandlerFunc) http.Handler {
	return a.requireAuth(a.authGate.LoadActor(h))
}

// protect additionally checks a profile permission before the handler runs.
// Resource policies are applied again by the services.
func (a *App) protect(resourceType string, action gate.Action, h http.HandlerFunc) http.Handler {
	return a.requireAuth(a.authGate.LoadActor(a.authGate.RequirePermission(resourceType, action)(h)))
}

func (a *App) requireAdmin(h http.HandlerFunc) http.Handler {
	return a.requireAuth(a.authGate.RequireAdmin()(h))
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "database_unavailable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
