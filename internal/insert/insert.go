// Package insert models the insert-length distribution of a paired library
// and the consistency test used when judging an observed pair separation.
package insert

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Coverage of the two-sided acceptance window (three-sigma rule).
const Confidence = 0.9973

// DefaultSDFraction is applied when a library has a length but no deviation.
const DefaultSDFraction = 0.1

// z is the half-width of the acceptance window in standard deviations.
var z = distuv.UnitNormal.Quantile(1 - (1-Confidence)/2)

// Stat is the expected fragment length of a library and its spread.
type Stat struct {
	Length float64
	StdDev float64
}

// New resolves a configured library. A missing or negative length means the
// library is inactive and ok is false. A missing deviation defaults to 10% of
// the length.
func New(length, stdDev *int) (s Stat, ok bool) {
	if length == nil || *length < 0 {
		return Stat{}, false
	}
	s.Length = float64(*length)
	if stdDev != nil && *stdDev >= 0 {
		s.StdDev = float64(*stdDev)
	} else {
		s.StdDev = DefaultSD(s.Length)
	}
	return s, true
}

// DefaultSD is the deviation assumed for a library of the given length.
func DefaultSD(length float64) float64 { return math.Floor(length * DefaultSDFraction) }

// Window is the largest accepted deviation from Length.
func (s Stat) Window() float64 { return z * s.StdDev }

// Deviation is the absolute distance of an observed separation from Length.
func (s Stat) Deviation(sep float64) float64 { return math.Abs(sep - s.Length) }

// Accepts reports whether an observed pair separation is consistent with s.
func (s Stat) Accepts(sep float64) bool { return s.Deviation(sep) <= s.Window() }

// Max is the longest separation Accepts would still take.
func (s Stat) Max() float64 { return s.Length + s.Window() }
