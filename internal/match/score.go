// Package match holds the decision core: it normalizes raw face distances
// into comparable similarity scores, ranks candidates and turns the winner
// plus a name comparison into the final verdict for a person case.
package match

import (
	"errors"
	"fmt"
	"math"
)

// DefaultSteepness is the sigmoid steepness used when no override is
// configured. Steep enough that scores cluster near 0 or 1 except close
// to the model threshold.
const DefaultSteepness = 12.0

// ErrInvalidInput reports a malformed argument to a scoring call.
var ErrInvalidInput = errors.New("invalid input")

// Similarity maps a raw face distance and the model's own distance
// threshold to a bounded score via a logistic curve centered on the
// threshold:
//
//	1 / (1 + exp(k * (distance - threshold)))
//
// The score decreases monotonically with distance, equals exactly 0.5 at
// the threshold and stays in (0, 1), so scores are comparable across
// models with different distance scales. The distance must be
// non-negative and the steepness k positive.
func Similarity(distance, threshold, k float64) (float64, error) {
	if distance < 0 {
		return 0, fmt.Errorf("negative distance %g: %w", distance, ErrInvalidInput)
	}
	if k <= 0 {
		return 0, fmt.Errorf("steepness %g is not positive: %w", k, ErrInvalidInput)
	}

	return 1 / (1 + math.Exp(k*(distance-threshold))), nil
}
