package vector

import "math"

// SquaredL2 returns the squared Euclidean distance between a and b, the metric
// FAISS IndexFlatL2 reports. Vectors of different length get math.MaxFloat32.
func SquaredL2(a, b []float32) float32 {
	if len(a) != len(b) {
		return math.MaxFloat32
	}
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
