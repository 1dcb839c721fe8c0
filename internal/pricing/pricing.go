// Package pricing computes order totals with exact decimal arithmetic.
package pricing

import (
	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
	"github.com/nazyhomayoun/learning-software-testing/internal/money"
)

// Quote computes unitPrice * quantity with discount rates applied to the
// subtotal before the fee rate. Rates are percentages (10 means 10%).
// All rounding is deferred to the caller so the computation stays
// order-independent; the result is the exact decimal total.
//
// A zero quantity prices to zero without error. A negative quantity is
// rejected; negative rates are rejected to keep totals non-negative.
func Quote(unitPrice money.Money, quantity int, feeRatePercent money.Money, discountRatesPercent ...money.Money) (money.Money, error) {
	if quantity < 0 {
		return money.Zero(), domain.ErrInvalidQuantity
	}
	if unitPrice.IsNegative() || feeRatePercent.IsNegative() {
		return money.Zero(), domain.ErrInvalidPrice
	}
	if quantity == 0 {
		return money.Zero(), nil
	}

	total := unitPrice.MulInt(quantity)
	for _, rate := range discountRatesPercent {
		if rate.IsNegative() {
			return money.Zero(), domain.ErrInvalidPrice
		}
		total = total.Sub(total.Mul(rateFraction(rate)))
	}
	total = total.Add(total.Mul(rateFraction(feeRatePercent)))
	return total, nil
}

func rateFraction(ratePercent money.Money) money.Money {
	return ratePercent.Mul(money.MustFromString("0.01"))
}

// Engine carries the configured default fee rate so callers do not pass
// ambient globals around.
type Engine struct {
	feeRatePercent money.Money
}

func NewEngine(feeRatePercent money.Money) *Engine {
	return &Engine{feeRatePercent: feeRatePercent}
}

// Quote prices a line with the engine's fee rate. See Quote.
func (e *Engine) Quote(unitPrice money.Money, quantity int, discountRatesPercent ...money.Money) (money.Money, error) {
	return Quote(unitPrice, quantity, e.feeRatePercent, discountRatesPercent...)
}

// SettleTotal applies the single final rounding step to a quoted total.
func (e *Engine) SettleTotal(quoted money.Money) money.Money {
	return quoted.RoundMinor()
}
