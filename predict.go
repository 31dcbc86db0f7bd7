package clustergo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/clustergo/internal/kernel"
)

// Predict labels m new samples against the fitted centroids. Blocks of
// samples are assigned in parallel; the result matches a sequential argmin
// with lowest-index tie-break exactly.
func (e *KMeans[T]) Predict(ctx context.Context, x []T, m, ldx int, order Order) ([]int, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	if err := validateMatrix("query", x, m, e.d, ldx, order); err != nil {
		return nil, err
	}
	xa := toColMajor(x, m, e.d, ldx, order)

	prec := kernel.PrecisionOf[T]()
	w, pad := e.selector.Select(kernel.PhaseAssign, prec, e.k)
	assign := kernel.Assign[T](w)
	kp := e.k + pad

	norms := make([]T, kp)
	e.centreNorms(e.centroids, norms)

	labels := make([]int, m)
	block := min(assignBlockSize, m)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for start := 0; start < m; start += block {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := min(block, m-start)
			work := make([]T, b*kp)
			kernel.PanelNeg2CAt(e.k, e.d, b, e.centroids, e.k, xa[start:], m, work, kp)
			assign(false, b, norms, nil, labels[start:start+b], work, kp, e.k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return labels, nil
}

// Transform returns the euclidean distance of m samples to every fitted
// centroid as a row-major m x k matrix.
func (e *KMeans[T]) Transform(x []T, m, ldx int, order Order) ([]T, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	if err := validateMatrix("query", x, m, e.d, ldx, order); err != nil {
		return nil, err
	}
	xa := toColMajor(x, m, e.d, ldx, order)

	prec := kernel.PrecisionOf[T]()
	w, _ := e.selector.Select(kernel.PhaseReduce, prec, e.d)
	reduce := kernel.Reduce[T](w)

	out := make([]T, m*e.k)
	for i := 0; i < m; i++ {
		for j := 0; j < e.k; j++ {
			out[i*e.k+j] = sqrtT(reduce(e.d, xa[i:], m, e.centroids[j:], e.k))
		}
	}
	return out, nil
}
