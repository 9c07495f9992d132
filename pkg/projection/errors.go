package projection

import (
	"errors"
	"fmt"

	"github.com/iwvelando/finance-calculators/pkg/money"
)

var (
	// ErrInvalidParameter reports a negative or zero value where a positive
	// one is required, or mutually exclusive parameters supplied together.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrPaymentTooLow reports a fixed payment that does not cover the first
	// period's interest.
	ErrPaymentTooLow = errors.New("payment too low")

	// ErrDidNotConverge reports a simulation that hit its iteration cap.
	ErrDidNotConverge = errors.New("did not converge")
)

// InvalidParameter builds an error wrapping ErrInvalidParameter.
func InvalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// OutOfRange reports a balance that grew beyond money.MaxAmount in the given
// period. The error matches both ErrInvalidParameter and money.ErrOutOfRange.
func OutOfRange(period int, err error) error {
	return fmt.Errorf("%w: amounts leave the supported range in period %d: %w", ErrInvalidParameter, period, err)
}

// PaymentTooLowError carries the offending payment and the interest it fails
// to cover.
type PaymentTooLowError struct {
	Payment  money.Cents
	Interest money.Cents
}

func (e *PaymentTooLowError) Error() string {
	return fmt.Sprintf("payment too low: payment %s does not cover interest of %s", e.Payment, e.Interest)
}

// Unwrap lets errors.Is match ErrPaymentTooLow.
func (e *PaymentTooLowError) Unwrap() error {
	return ErrPaymentTooLow
}

// NotConvergedError reports the period cap and the balance left when it was hit.
type NotConvergedError struct {
	Periods int
	Balance money.Cents
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("did not converge: balance %s remains after %d periods", e.Balance, e.Periods)
}

// Unwrap lets errors.Is match ErrDidNotConverge.
func (e *NotConvergedError) Unwrap() error {
	return ErrDidNotConverge
}
