package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// PositiveDecimal flags zero and negative money amounts.
func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v[field] = "must_be_positive"
	}
}

// MaxDecimals flags amounts carrying more fractional digits than the
// storage columns keep. Trailing zeros are fine. A field already flagged
// keeps its first violation.
func MaxDecimals(field string, val decimal.Decimal, places int32, v Violations) {
	if _, flagged := v[field]; flagged {
		return
	}
	if !val.Equal(val.Round(places)) {
		v[field] = fmt.Sprintf("max_%d_decimals", places)
	}
}

// OneOf flags values outside the allowed set.
func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_choice"
}

// RequiredID flags a zero foreign key.
func RequiredID(field string, id uint, v Violations) {
	if id == 0 {
		v[field] = "required"
	}
}
