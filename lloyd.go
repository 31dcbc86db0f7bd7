package clustergo

import (
	"context"
	"slices"

	"github.com/hupe1980/clustergo/internal/kernel"
)

// assignBlockSize is the sample block width of the panel-based assignment.
const assignBlockSize = 256

// runLloyd executes the blocked standard iteration starting from the
// centres in cur.
func (e *KMeans[T]) runLloyd(ctx context.Context, cur []T, ks fitKernels[T]) (*runState[T], error) {
	kp := e.k + ks.assignPad
	block := min(assignBlockSize, e.n)

	prev := make([]T, e.k*e.d)
	norms := make([]T, kp)
	work := make([]T, block*kp)
	shift := make([]T, kp)
	counts := make([]int, e.k)
	labels := make([]int, e.n)
	prevLabels := make([]int, e.n)

	reason := ReasonMaxIterations
	iters := e.opts.MaxIterations

	for iter := 0; iter < e.opts.MaxIterations; iter++ {
		if iter > 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		prev, cur = cur, prev
		e.centreNorms(prev, norms)
		clear(cur)
		clear(counts)
		copy(prevLabels, labels)

		for start := 0; start < e.n; start += block {
			b := min(block, e.n-start)
			kernel.PanelNeg2CAt(e.k, e.d, b, prev, e.k, e.data[start:], e.n, work, kp)
			ks.assign(true, b, norms, counts, labels[start:start+b], work, kp, e.k)
			e.accumulate(cur, labels, start, b)
		}

		e.finalizeCentres(prev, cur, counts)
		shiftSq, prevSq := e.centreShift(prev, cur, shift)

		// A full pass without reassignment means the update step cannot
		// move the centres any further. Only meaningful once prevLabels
		// holds a computed assignment.
		if iter > 0 && slices.Equal(labels, prevLabels) {
			reason = ReasonLabelsUnchanged
			iters = iter + 1
			break
		}
		if e.converged(shiftSq, prevSq) {
			// Labels lag the final update by one step; run one
			// assignment-only pass against the final centres.
			e.assignOnly(cur, labels, ks, norms, work, kp, block)
			reason = ReasonTolerance
			iters = iter + 1
			break
		}
	}

	return &runState[T]{
		centres: cur,
		labels:  labels,
		iters:   iters,
		reason:  reason,
		inertia: e.inertiaOf(cur, labels, ks.reduce),
	}, nil
}

// assignOnly labels every sample against the given centres without touching
// them.
func (e *KMeans[T]) assignOnly(centres []T, labels []int, ks fitKernels[T], norms, work []T, kp, block int) {
	e.centreNorms(centres, norms)
	for start := 0; start < e.n; start += block {
		b := min(block, e.n-start)
		kernel.PanelNeg2CAt(e.k, e.d, b, centres, e.k, e.data[start:], e.n, work, kp)
		ks.assign(false, b, norms, nil, labels[start:start+b], work, kp, e.k)
	}
}
