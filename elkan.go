package clustergo

import (
	"context"
	"slices"

	"github.com/hupe1980/clustergo/internal/kernel"
)

// runElkan executes the triangle-inequality accelerated iteration starting
// from the centres in cur. It maintains one upper bound per sample and one
// lower bound per (sample, centre) pair; exact distances are only computed
// where the bounds cannot rule a centre out.
func (e *KMeans[T]) runElkan(ctx context.Context, cur []T, ks fitKernels[T]) (*runState[T], error) {
	klp := e.k + ks.boundPad

	prev := make([]T, e.k*e.d)
	ub := make([]T, e.n)
	lb := make([]T, e.n*klp)
	halfDist := make([]T, e.k*e.k)
	nextHalf := make([]T, e.k)
	shift := make([]T, klp)
	counts := make([]int, e.k)
	labels := make([]int, e.n)
	prevLabels := make([]int, e.n)

	e.halfDistances(cur, halfDist, nextHalf, ks.reduce)
	e.initBounds(cur, ub, lb, klp, labels, halfDist, ks.reduce)

	reason := ReasonMaxIterations
	iters := e.opts.MaxIterations

	for iter := 0; iter < e.opts.MaxIterations; iter++ {
		if iter > 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		prev, cur = cur, prev
		copy(prevLabels, labels)

		e.elkanAssign(prev, ub, lb, klp, labels, halfDist, nextHalf, ks.reduce)

		clear(cur)
		clear(counts)
		for i := 0; i < e.n; i++ {
			counts[labels[i]]++
		}
		e.accumulate(cur, labels, 0, e.n)
		e.finalizeCentres(prev, cur, counts)

		shiftSq, prevSq := e.centreShift(prev, cur, shift)
		ks.boundUpdate(e.n, ub, lb, klp, shift, labels, e.k)
		e.halfDistances(cur, halfDist, nextHalf, ks.reduce)

		if iter > 0 && slices.Equal(labels, prevLabels) {
			reason = ReasonLabelsUnchanged
			iters = iter + 1
			break
		}
		if e.converged(shiftSq, prevSq) {
			e.elkanAssign(cur, ub, lb, klp, labels, halfDist, nextHalf, ks.reduce)
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
		ub:      ub,
		lb:      lb,
		ldl:     klp,
	}, nil
}

// halfDistances fills the symmetric matrix of half distances between
// centres and, per centre, the half distance to its nearest other centre.
// With a single centre nextHalf is +Inf, which prunes every sample.
func (e *KMeans[T]) halfDistances(centres []T, halfDist, nextHalf []T, reduce kernel.ReduceFunc[T]) {
	for j := 0; j < e.k; j++ {
		halfDist[j+j*e.k] = 0
		for i := j + 1; i < e.k; i++ {
			h := sqrtT(reduce(e.d, centres[i:], e.k, centres[j:], e.k)) / 2
			halfDist[i+j*e.k] = h
			halfDist[j+i*e.k] = h
		}
	}
	for j := 0; j < e.k; j++ {
		m := infT[T]()
		for i := 0; i < e.k; i++ {
			if i != j && halfDist[i+j*e.k] < m {
				m = halfDist[i+j*e.k]
			}
		}
		nextHalf[j] = m
	}
}

// initBounds seeds the bound state against the initial centres, taking
// cached rows from a matching warm restart where available and computing
// exact distances elsewhere.
func (e *KMeans[T]) initBounds(centres []T, ub, lb []T, klp int, labels []int, halfDist []T, reduce kernel.ReduceFunc[T]) {
	warm := e.warmStart(centres)
	for i := 0; i < e.n; i++ {
		if warm {
			if row := e.cache.Get(i); row != nil {
				labels[i] = int(row[0])
				ub[i] = row[1]
				copy(lb[i*klp:i*klp+e.k], row[2:])
				continue
			}
		}
		e.initBoundsSample(i, centres, ub, lb, klp, labels, halfDist, reduce)
	}
	if warm {
		hits, misses := e.cache.Stats()
		e.logger.Debug("warm restart from cached bounds", "hits", hits, "misses", misses)
	}
}

// initBoundsSample computes the cold-start bounds for one sample: exact
// distance to the first centre, then exact distances only to centres the
// inter-centre half distances cannot exclude. Skipped centres keep the
// trivial lower bound of zero.
func (e *KMeans[T]) initBoundsSample(i int, centres []T, ub, lb []T, klp int, labels []int, halfDist []T, reduce kernel.ReduceFunc[T]) {
	row := lb[i*klp : i*klp+e.k]
	smallest := sqrtT(reduce(e.d, e.data[i:], e.n, centres[0:], e.k))
	label := 0
	row[0] = smallest
	for j := 1; j < e.k; j++ {
		row[j] = 0
		if smallest > halfDist[label+j*e.k] {
			dist := sqrtT(reduce(e.d, e.data[i:], e.n, centres[j:], e.k))
			row[j] = dist
			if dist < smallest {
				smallest = dist
				label = j
			}
		}
	}
	ub[i] = smallest
	labels[i] = label
}

// elkanAssign reassigns samples whose bounds cannot prove their current
// centre is still the closest. The upper bound starts loose and is
// tightened to the exact distance at most once per sample.
func (e *KMeans[T]) elkanAssign(centres []T, ub, lb []T, klp int, labels []int, halfDist, nextHalf []T, reduce kernel.ReduceFunc[T]) {
	for i := 0; i < e.n; i++ {
		u := ub[i]
		label := labels[i]
		if u <= nextHalf[label] {
			continue
		}
		row := lb[i*klp : i*klp+e.k]
		tight := false
		for j := 0; j < e.k; j++ {
			if j == label {
				continue
			}
			if u <= row[j] || u <= halfDist[label+j*e.k] {
				continue
			}
			if !tight {
				u = sqrtT(reduce(e.d, e.data[i:], e.n, centres[label:], e.k))
				row[label] = u
				tight = true
				if u <= row[j] || u <= halfDist[label+j*e.k] {
					continue
				}
			}
			dist := sqrtT(reduce(e.d, e.data[i:], e.n, centres[j:], e.k))
			row[j] = dist
			if dist < u {
				u = dist
				label = j
			}
		}
		ub[i] = u
		labels[i] = label
	}
}
