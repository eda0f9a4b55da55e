package frames

import (
	"math"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
)

// Easing names a timing curve for transitions.
type Easing string

const (
	EaseCubicInOut Easing = "cubic-in-out"
	EaseLinear     Easing = "linear"
)

// ParseEasing validates an easing name. The empty string selects
// [EaseCubicInOut].
func ParseEasing(s string) (Easing, error) {
	switch e := Easing(s); e {
	case "":
		return EaseCubicInOut, nil
	case EaseCubicInOut, EaseLinear:
		return e, nil
	default:
		return "", gmerrors.Invalid("easing", s, "must be %q or %q", EaseCubicInOut, EaseLinear)
	}
}

// Apply maps linear progress t in [0, 1] to eased progress.
func (e Easing) Apply(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	if e == EaseLinear {
		return t
	}
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
