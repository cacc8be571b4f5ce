package analysis

// Gradient differentiates y against x: second-order central differences
// inside, one-sided first-order differences at the ends. x must be strictly
// monotone; len(x) == len(y) >= 2.
func Gradient(y, x []float64) []float64 {
	n := len(y)
	if n < 2 || len(x) != n {
		return nil
	}

	g := make([]float64, n)
	g[0] = (y[1] - y[0]) / (x[1] - x[0])
	g[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		h1 := x[i] - x[i-1]
		h2 := x[i+1] - x[i]
		g[i] = (h1*h1*y[i+1] - h2*h2*y[i-1] + (h2*h2-h1*h1)*y[i]) / (h1 * h2 * (h1 + h2))
	}
	return g
}
