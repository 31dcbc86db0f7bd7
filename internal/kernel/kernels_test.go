package kernel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWidths = []Width{WidthScalar, Width128, Width256, Width512}

// buildPanel fills a padded assignment panel and matching norms for k
// centres and b samples. Pad rows stay zero; pad norms are +Inf.
func buildPanel(rng *rand.Rand, b, k, kp int) (work, norms []float64) {
	work = make([]float64, b*kp)
	for s := 0; s < b; s++ {
		for j := 0; j < k; j++ {
			work[s*kp+j] = rng.NormFloat64() * 10
		}
	}
	norms = make([]float64, kp)
	for j := 0; j < k; j++ {
		norms[j] = rng.Float64() * 5
	}
	for j := k; j < kp; j++ {
		norms[j] = math.Inf(1)
	}
	return work, norms
}

func TestAssignKernelsAgreeAcrossWidths(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, k := range []int{1, 2, 3, 7, 16, 33} {
		b := 29
		for _, w := range testWidths {
			pad := Padding(w, Precision64)
			kp := k + pad
			work, norms := buildPanel(rng, b, k, kp)

			want := make([]int, b)
			wantCounts := make([]int, k)
			assignScalar[float64](true, b, norms, wantCounts, want, work, kp, k)

			got := make([]int, b)
			gotCounts := make([]int, k)
			Assign[float64](w)(true, b, norms, gotCounts, got, work, kp, k)

			assert.Equal(t, want, got, "k=%d width=%s", k, w)
			assert.Equal(t, wantCounts, gotCounts, "k=%d width=%s", k, w)
		}
	}
}

func TestAssignTieBreaksToLowestIndex(t *testing.T) {
	const k = 9
	for _, w := range testWidths {
		pad := Padding(w, Precision64)
		kp := k + pad
		work := make([]float64, kp)
		norms := make([]float64, kp)
		for j := k; j < kp; j++ {
			norms[j] = math.Inf(1)
		}
		// All candidates equal: index 0 must win.
		labels := make([]int, 1)
		Assign[float64](w)(false, 1, norms, nil, labels, work, kp, k)
		assert.Equal(t, 0, labels[0], "width=%s", w)

		// Equal minimum at 3 and 7: the lower index must win.
		for j := 0; j < k; j++ {
			work[j] = 5
		}
		work[3], work[7] = 1, 1
		Assign[float64](w)(false, 1, norms, nil, labels, work, kp, k)
		assert.Equal(t, 3, labels[0], "width=%s", w)
	}
}

func TestBoundUpdateKernels(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	const k, n = 11, 17

	for _, w := range testWidths {
		pad := Padding(w, Precision64)
		klp := k + pad

		upper := make([]float64, n)
		lower := make([]float64, n*klp)
		shift := make([]float64, klp)
		labels := make([]int, n)
		for i := range upper {
			upper[i] = rng.Float64()
			labels[i] = rng.Intn(k)
		}
		for i := range lower {
			lower[i] = rng.Float64() * 0.1
		}
		for j := 0; j < k; j++ {
			shift[j] = rng.Float64() * 0.3
		}

		wantUpper := append([]float64(nil), upper...)
		wantLower := append([]float64(nil), lower...)
		boundUpdateScalar[float64](n, wantUpper, wantLower, klp, shift, labels, k)

		BoundUpdate[float64](w)(n, upper, lower, klp, shift, labels, k)

		assert.InDeltaSlice(t, wantUpper, upper, 1e-15, "width=%s", w)
		for i := 0; i < n; i++ {
			assert.InDeltaSlice(t, wantLower[i*klp:i*klp+k], lower[i*klp:i*klp+k], 1e-15, "width=%s sample=%d", w, i)
		}
		for _, v := range lower {
			assert.GreaterOrEqual(t, v, 0.0, "lower bounds must clamp at zero")
		}
	}
}

func TestReduceKernels(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for _, m := range []int{1, 3, 8, 15, 64} {
		x := make([]float64, m*3)
		y := make([]float64, m*2)
		for i := range x {
			x[i] = rng.NormFloat64()
		}
		for i := range y {
			y[i] = rng.NormFloat64()
		}

		var want float64
		for i := 0; i < m; i++ {
			d := x[i*3] - y[i*2]
			want += d * d
		}

		for _, w := range testWidths {
			got := Reduce[float64](w)(m, x, 3, y, 2)
			assert.InDelta(t, want, got, 1e-12, "m=%d width=%s", m, w)
		}
	}
}

func TestPanelNeg2CAt(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	const k, d, n, b = 5, 7, 13, 4
	const kp = k + 3 // arbitrary panel padding

	c := make([]float64, k*d)
	a := make([]float64, n*d)
	for i := range c {
		c[i] = rng.NormFloat64()
	}
	for i := range a {
		a[i] = rng.NormFloat64()
	}

	work := make([]float64, b*kp)
	start := 6
	PanelNeg2CAt(k, d, b, c, k, a[start:], n, work, kp)

	for s := 0; s < b; s++ {
		for i := 0; i < k; i++ {
			var want float64
			for j := 0; j < d; j++ {
				want += -2 * c[i+j*k] * a[start+s+j*n]
			}
			require.InDelta(t, want, work[s*kp+i], 1e-12, "sample=%d centre=%d", s, i)
		}
		// Padded rows untouched.
		for i := k; i < kp; i++ {
			require.Zero(t, work[s*kp+i])
		}
	}
}
