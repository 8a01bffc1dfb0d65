// Package ledger derives the financial view of a repair from its cost
// entries and payments. Nothing here is stored; callers recompute on
// every read.
package ledger

import "github.com/shopspring/decimal"

// Amount is a money value in the shop's single currency.
type Amount = decimal.Decimal

// Ledger is the derived financial state of one repair.
type Ledger struct {
	TotalCost   Amount `json:"total_cost"`
	TotalPaid   Amount `json:"total_paid"`
	TotalDue    Amount `json:"total_due"`
	HasPrice    bool   `json:"has_price"`
	IsFullyPaid bool   `json:"is_fully_paid"`
}

// Compute sums costs and payments. A repair without any cost entry is never
// fully paid. Overpayment yields a negative TotalDue and counts as paid.
func Compute(costs, payments []Amount) Ledger {
	l := Ledger{
		TotalCost: decimal.Sum(decimal.Zero, costs...),
		TotalPaid: decimal.Sum(decimal.Zero, payments...),
		HasPrice:  len(costs) > 0,
	}
	l.TotalDue = l.TotalCost.Sub(l.TotalPaid)
	l.IsFullyPaid = l.HasPrice && !l.TotalDue.IsPositive()
	return l
}

// Outstanding is the amount still owed, never negative.
func (l Ledger) Outstanding() Amount {
	if l.TotalDue.IsNegative() {
		return decimal.Zero
	}
	return l.TotalDue
}

// Unpaid reports whether no money has been collected yet.
func (l Ledger) Unpaid() bool {
	return l.TotalPaid.IsZero()
}
