// Package rating maps a 0–5 product rating onto a five-star display.
package rating

import (
	"fmt"
	"math"
)

const MaxStars = 5

// Stars is the full/half/empty split of a rating. Full+Half+Empty is always MaxStars.
type Stars struct {
	Full  int     `json:"full"`
	Half  bool    `json:"half"`
	Empty int     `json:"empty"`
	Value float64 `json:"value"`
}

// Compute clamps r into [0, MaxStars] and splits it into stars. A fractional
// part of at least one half earns a half star; it is never rounded up to a
// full one.
func Compute(r float64) Stars {
	r = Clamp(r)
	full := int(math.Floor(r))
	half := r-float64(full) >= 0.5

	empty := MaxStars - full
	if half {
		empty--
	}
	return Stars{Full: full, Half: half, Empty: empty, Value: r}
}

// Clamp limits r to the star domain; NaN becomes 0.
func Clamp(r float64) float64 {
	if math.IsNaN(r) {
		return 0
	}
	return min(max(r, 0), MaxStars)
}

// Text is the numeric label shown next to the stars.
func (s Stars) Text() string {
	return fmt.Sprintf("(%.1f)", s.Value)
}
