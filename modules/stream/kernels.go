package stream

type kernel struct {
	bytesPerElement int
	run             func(a, b, c []float64, lo, hi int)
}

var kernels = map[string]kernel{
	"copy": {16, func(a, _, c []float64, lo, hi int) {
		copy(c[lo:hi], a[lo:hi])
	}},
	"scale": {16, func(_, b, c []float64, lo, hi int) {
		for i := lo; i < hi; i++ {
			b[i] = scalar * c[i]
		}
	}},
	"add": {24, func(a, b, c []float64, lo, hi int) {
		for i := lo; i < hi; i++ {
			c[i] = a[i] + b[i]
		}
	}},
	"triad": {24, func(a, b, c []float64, lo, hi int) {
		for i := lo; i < hi; i++ {
			a[i] = b[i] + scalar*c[i]
		}
	}},
}
