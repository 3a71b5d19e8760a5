package indicator

import "math"

func nan() float64 { return math.NaN() }

func isNaN(v float64) bool { return math.IsNaN(v) }

// fillNaN builds an all-NaN series of length n, the default for any
// family whose backing data is absent.
func fillNaN(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
