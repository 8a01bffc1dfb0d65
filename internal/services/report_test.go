package services

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.now = time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC)
	feb := f.completedRepair(f.gadget.ID, "300")

	f.now = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	f.pay(feb.ID, "100")
	paid := f.completedRepair(f.newGadget().ID, "120")
	f.pay(paid.ID, "120")
	f.completedRepair(f.newGadget().ID, "50")
	f.openRepairFor(f.newGadget().ID)

	rep, err := f.reports.Monthly(ctx, f.staff, time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2025, rep.Year)
	assert.Equal(t, time.March, rep.Month)
	assert.EqualValues(t, 3, rep.Received)
	assert.EqualValues(t, 2, rep.Fixed)
	assert.True(t, rep.Revenue.Equal(dec("220")), rep.Revenue.String())
	assert.True(t, rep.Outstanding.Equal(dec("250")), rep.Outstanding.String())
	assert.EqualValues(t, 2, rep.Unpaid)

	rep, err = f.reports.Monthly(ctx, f.admin, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 1, rep.Received)
	assert.EqualValues(t, 1, rep.Fixed)
	assert.True(t, rep.Revenue.IsZero())

	_, err = f.reports.Monthly(ctx, f.tech, f.now)
	assert.ErrorIs(t, err, gate.ErrUnauthorized)
}
