package orbit

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEccentricity is returned for eccentricities outside [0, 1).
	ErrEccentricity = errors.New("eccentricity must be in [0, 1)")

	// ErrMeanMotion is returned for non-positive mean motion.
	ErrMeanMotion = errors.New("mean motion must be positive")

	// ErrNotFinite is returned when any element is NaN or infinite.
	ErrNotFinite = errors.New("element is not finite")
)

// ElementError reports an element tuple rejected during catalog
// construction.
type ElementError struct {
	Set string
	ID  string
	Err error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("invalid elements for %s/%s: %v", e.Set, e.ID, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// Validate checks the preconditions the orbit math relies on.
func (el Elements) Validate() error {
	for _, v := range []float64{el.Inclination, el.RAAN, el.Eccentricity, el.ArgPeriapsis, el.MeanAnomaly, el.MeanMotion} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNotFinite
		}
	}
	if el.Eccentricity < 0 || el.Eccentricity >= 1 {
		return fmt.Errorf("%w: got %g", ErrEccentricity, el.Eccentricity)
	}
	if el.MeanMotion <= 0 {
		return fmt.Errorf("%w: got %g", ErrMeanMotion, el.MeanMotion)
	}
	return nil
}
