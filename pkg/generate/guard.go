package generate

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/ogulcanaydogan/autoapi/pkg/model"
)

// ErrBudgetExceeded indicates the estimated cost is above the configured limit.
var ErrBudgetExceeded = errors.New("estimated cost exceeds budget")

// CheckBudget refuses a run whose estimated total exceeds maxUSD.
// A limit of zero or less disables the check.
func CheckBudget(report model.BudgetReport, maxUSD float64) error {
	if maxUSD <= 0 {
		return nil
	}
	limit := decimal.NewFromFloat(maxUSD)
	if report.TotalCost.GreaterThan(limit) {
		return fmt.Errorf("%w: $%s > $%s", ErrBudgetExceeded, report.TotalCost.StringFixed(2), limit.StringFixed(2))
	}
	return nil
}

// NewLimiter paces calls to rpm requests per minute with no burst.
// Zero or negative means unlimited and returns nil.
func NewLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
}
