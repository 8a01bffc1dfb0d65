package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCostLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.openRepair()

	log, err := f.logs.Add(ctx, f.tech, r.ID, CostLogInput{
		Cost:                  dec("150.50"),
		IssueDescription:      "cracked screen",
		ResolutionDescription: "replaced panel",
	})
	require.NoError(t, err)
	assert.NotZero(t, log.ID)
	assert.True(t, log.Cost.Equal(dec("150.50")))

	_, err = f.logs.Add(ctx, f.secretary, r.ID, CostLogInput{Cost: dec("74.50"), IssueDescription: "battery"})
	require.NoError(t, err)

	v, err := f.repairs.Get(ctx, f.staff, r.ID)
	require.NoError(t, err)
	assert.Len(t, v.Repair.CostLogs, 2)
	assert.True(t, v.Ledger.TotalCost.Equal(dec("225")))
	assert.True(t, v.Ledger.TotalDue.Equal(dec("225")))
}

func TestAddCostLogValidation(t *testing.T) {
	f := newFixture(t)
	r := f.openRepair()

	tests := []struct {
		name  string
		in    CostLogInput
		field string
	}{
		{"zero cost", CostLogInput{Cost: dec("0"), IssueDescription: "x"}, "cost"},
		{"negative cost", CostLogInput{Cost: dec("-5"), IssueDescription: "x"}, "cost"},
		{"missing issue", CostLogInput{Cost: dec("5"), IssueDescription: "  "}, "issue_description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.logs.Add(context.Background(), f.tech, r.ID, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Violations, tt.field)
		})
	}

	var n int64
	require.NoError(t, f.db.Model(&models.CostLog{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAddCostLogRejectedWhenCompleted(t *testing.T) {
	f := newFixture(t)
	r := f.completedRepair(f.gadget.ID, "100")

	_, err := f.logs.Add(context.Background(), f.tech, r.ID, CostLogInput{Cost: dec("10"), IssueDescription: "late find"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.logs.Add(context.Background(), f.tech, 999, CostLogInput{Cost: dec("10"), IssueDescription: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddCostLogOnlyAssignedTechnician(t *testing.T) {
	f := newFixture(t)
	r := f.openRepair()
	_, err := f.logs.Add(context.Background(), f.tech2, r.ID, CostLogInput{Cost: dec("10"), IssueDescription: "x"})
	assert.ErrorIs(t, err, gate.ErrUnauthorized)
}

func TestUpdateCostLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.openRepair()
	log, err := f.logs.Add(ctx, f.tech, r.ID, CostLogInput{Cost: dec("40"), IssueDescription: "charging port"})
	require.NoError(t, err)

	updated, err := f.logs.Update(ctx, f.tech, log.ID, CostLogInput{Cost: dec("55"), IssueDescription: "charging port", ResolutionDescription: "new port"})
	require.NoError(t, err)
	assert.True(t, updated.Cost.Equal(dec("55")))

	var stored models.CostLog
	require.NoError(t, f.db.First(&stored, log.ID).Error)
	assert.True(t, stored.Cost.Equal(dec("55")))
	assert.Equal(t, "new port", stored.ResolutionDescription)

	_, err = f.logs.Update(ctx, f.tech, 999, CostLogInput{Cost: dec("1"), IssueDescription: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.repairs.TransitionTo(ctx, f.tech, r.ID, models.RepairStatusCompleted)
	require.NoError(t, err)
	_, err = f.logs.Update(ctx, f.tech, log.ID, CostLogInput{Cost: dec("1"), IssueDescription: "x"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeleteCostLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.openRepair()
	log, err := f.logs.Add(ctx, f.tech, r.ID, CostLogInput{Cost: dec("40"), IssueDescription: "speaker"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.logs.Delete(ctx, f.tech, log.ID), gate.ErrUnauthorized)
	assert.ErrorIs(t, f.logs.Delete(ctx, f.staff, log.ID), gate.ErrUnauthorized)
	require.NoError(t, f.logs.Delete(ctx, f.admin, log.ID))

	var n int64
	require.NoError(t, f.db.Model(&models.CostLog{}).Where("id = ?", log.ID).Count(&n).Error)
	assert.Zero(t, n)
	assert.ErrorIs(t, f.logs.Delete(ctx, f.admin, log.ID), ErrNotFound)
}

func TestCostLogRejectsSubCentAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.openRepair()

	for _, cost := range []string{"0.001", "99.999"} {
		_, err := f.logs.Add(ctx, f.tech, r.ID, CostLogInput{Cost: dec(cost), IssueDescription: "x"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, cost)
		assert.Equal(t, "max_2_decimals", verr.Violations["cost"], cost)
	}

	log, err := f.logs.Add(ctx, f.tech, r.ID, CostLogInput{Cost: dec("99.990"), IssueDescription: "x"})
	require.NoError(t, err)

	_, err = f.logs.Update(ctx, f.tech, log.ID, CostLogInput{Cost: dec("12.345"), IssueDescription: "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max_2_decimals", verr.Violations["cost"])
}
