package clustergo

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/hupe1980/clustergo/internal/cache"
	"github.com/hupe1980/clustergo/internal/cpu"
	"github.com/hupe1980/clustergo/internal/kernel"
)

// kernelOverrideEnv forces a kernel width tier by name when no override is
// configured explicitly.
const kernelOverrideEnv = "CLUSTERGO_KERNEL"

// TerminationReason reports why the iteration loop stopped.
type TerminationReason uint8

const (
	// ReasonMaxIterations means the iteration cap was reached before the
	// convergence tests fired. This is a reported state, not an error.
	ReasonMaxIterations TerminationReason = iota
	// ReasonLabelsUnchanged means a full pass reassigned no sample.
	ReasonLabelsUnchanged
	// ReasonTolerance means the relative centre shift dropped below the
	// configured tolerance; one extra assignment-only pass has already run.
	ReasonTolerance
)

// Converged reports whether the loop stopped on a convergence test rather
// than the iteration cap.
func (r TerminationReason) Converged() bool {
	return r != ReasonMaxIterations
}

// String returns the string representation of a TerminationReason.
func (r TerminationReason) String() string {
	switch r {
	case ReasonLabelsUnchanged:
		return "labels unchanged"
	case ReasonTolerance:
		return "tolerance reached"
	default:
		return "iteration cap"
	}
}

// Result holds the outcome of a fit. Centroids are returned in the storage
// order of the dataset (row-major: k x d with leading dimension d).
type Result[T Float] struct {
	Centroids  []T
	Labels     []int
	Iterations int
	Reason     TerminationReason
	Inertia    float64
}

// KMeans clusters a fixed dataset into k groups, generic over float32 and
// float64. Instances are not safe for concurrent use; Predict and Transform
// on a fitted instance are read-only and may run concurrently with each
// other.
type KMeans[T Float] struct {
	k        int
	opts     Options
	logger   *Logger
	selector *kernel.Selector
	rng      *rand.Rand

	// dataset, column-major n x d with leading dimension n
	data    []T
	n, d    int
	order   Order
	hasData bool

	// supplied initial centroids, column-major k x d with leading dimension k
	initC []T

	// bound reuse cache for Elkan warm restarts
	cache          *cache.RowCache[T]
	cacheSig       []T
	cacheK, cacheD int

	fitted     bool
	centroids  []T // k x d column-major
	labels     []int
	inertia    float64
	iterations int
	reason     TerminationReason
}

// New creates a KMeans instance for k clusters.
func New[T Float](k int, opts ...Option) (*KMeans[T], error) {
	if k <= 0 {
		return nil, &ErrInvalidDimensions{Param: "clusters", Value: k, Constraint: "> 0"}
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = NoopLogger()
	}
	if o.MaxIterations <= 0 {
		return nil, &ErrInvalidDimensions{Param: "max iterations", Value: o.MaxIterations, Constraint: "> 0"}
	}
	if o.NInit <= 0 {
		return nil, &ErrInvalidDimensions{Param: "n init", Value: o.NInit, Constraint: "> 0"}
	}
	if o.Tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance must not be negative", ErrIncompatibleOptions)
	}

	arch := cpu.Detected()
	if o.Microarch != "" {
		a, ok := cpu.Parse(o.Microarch)
		if !ok {
			o.Logger.Warn("unknown microarchitecture override, using detected", "override", o.Microarch)
			a = arch
		}
		arch = a
	}

	override := o.KernelOverride
	if override == "" {
		override = os.Getenv(kernelOverrideEnv)
	}

	seed := o.Seed
	if seed < 0 {
		seed = time.Now().UnixNano()
	}

	return &KMeans[T]{
		k:        k,
		opts:     o,
		logger:   o.Logger.WithClusters(k),
		selector: kernel.NewSelector(arch, override, o.Logger.Logger),
		rng:      rand.New(rand.NewSource(seed)),
		cache:    cache.New[T](),
	}, nil
}

// Clusters returns the configured cluster count.
func (e *KMeans[T]) Clusters() int { return e.k }

// Features returns the feature count of the current dataset, 0 before
// SetData.
func (e *KMeans[T]) Features() int { return e.d }

// Samples returns the sample count of the current dataset, 0 before
// SetData.
func (e *KMeans[T]) Samples() int { return e.n }

// SetData sets the dataset to cluster: a strided n x d matrix of samples.
// The buffer is copied; the caller's data is never mutated. Changing the
// data invalidates the bound reuse cache but keeps any previously fitted
// model readable.
func (e *KMeans[T]) SetData(data []T, n, d, ld int, order Order) error {
	if err := validateMatrix("data", data, n, d, ld, order); err != nil {
		return err
	}
	e.data = toColMajor(data, n, d, ld, order)
	e.n, e.d, e.order = n, d, order
	e.hasData = true
	// Cached bound rows are keyed by sample index and only hold for the
	// data they were computed against.
	e.cache.Clear()
	e.cacheSig = nil
	return nil
}

// SetInitialCentroids supplies the initial k x d centroid matrix, bypassing
// the configured initialization policy. Passing nil reverts to the policy.
func (e *KMeans[T]) SetInitialCentroids(c []T, ldc int, order Order) error {
	if c == nil {
		e.initC = nil
		return nil
	}
	if !e.hasData {
		return ErrNoData
	}
	if err := validateMatrix("centroids", c, e.k, e.d, ldc, order); err != nil {
		return err
	}
	colMajor := toColMajor(c, e.k, e.d, ldc, order)
	e.initC = colMajor
	return nil
}

// fitKernels bundles the per-fit kernel selection.
type fitKernels[T Float] struct {
	assign      kernel.AssignFunc[T]
	assignPad   int
	boundUpdate kernel.BoundUpdateFunc[T]
	boundPad    int
	reduce      kernel.ReduceFunc[T]
}

// runState is the outcome of a single initialization run.
type runState[T Float] struct {
	centres []T
	labels  []int
	iters   int
	reason  TerminationReason
	inertia float64

	// final Elkan bound state, nil for Lloyd
	ub  []T
	lb  []T
	ldl int
}

// Fit runs the configured algorithm until convergence or the iteration cap.
// With NInit > 1 the initialization with the lowest inertia wins. The
// context is checked between iterations only.
func (e *KMeans[T]) Fit(ctx context.Context) (*Result[T], error) {
	if !e.hasData {
		return nil, ErrNoData
	}
	if e.k > e.n {
		return nil, &ErrInvalidDimensions{Param: "clusters", Value: e.k, Constraint: fmt.Sprintf("<= %d samples", e.n)}
	}

	nInit := e.opts.NInit
	if e.initC != nil && nInit > 1 {
		e.logger.Warn("explicit initial centroids force a single initialization", "n_init", nInit)
		nInit = 1
	}

	prec := kernel.PrecisionOf[T]()
	assignW, assignPad := e.selector.Select(kernel.PhaseAssign, prec, e.k)
	updateW, updatePad := e.selector.Select(kernel.PhaseBoundUpdate, prec, e.k)
	reduceW, _ := e.selector.Select(kernel.PhaseReduce, prec, e.d)
	e.logger.LogSetup(ctx, e.opts.Algorithm.String(), e.selector.Arch().String(),
		"assign", assignW.String(),
		"bound_update", updateW.String(),
		"reduce", reduceW.String(),
	)
	ks := fitKernels[T]{
		assign:      kernel.Assign[T](assignW),
		assignPad:   assignPad,
		boundUpdate: kernel.BoundUpdate[T](updateW),
		boundPad:    updatePad,
		reduce:      kernel.Reduce[T](reduceW),
	}

	// Cache lifecycle: rows only hold for the shape they were written
	// against.
	if e.cacheK != e.k || e.cacheD != e.d {
		e.cache.Clear()
		e.cacheSig = nil
		e.cacheK, e.cacheD = e.k, e.d
	}
	rowLen := e.k + 2
	if e.cache.Len() > 0 && e.cache.RowLen() != rowLen {
		return nil, &ErrCacheMisconfigured{ExpectedRowLen: rowLen, ActualRowLen: e.cache.RowLen()}
	}
	e.cache.Configure(e.opts.CacheCapacity, rowLen)

	var best *runState[T]
	for run := 0; run < nInit; run++ {
		cur := make([]T, e.k*e.d)
		e.initCentres(cur)

		var (
			st  *runState[T]
			err error
		)
		switch e.opts.Algorithm {
		case Elkan:
			st, err = e.runElkan(ctx, cur, ks)
		default:
			st, err = e.runLloyd(ctx, cur, ks)
		}
		if err != nil {
			e.logger.LogFit(ctx, 0, "", 0, err)
			return nil, err
		}
		if best == nil || st.inertia < best.inertia {
			best = st
		}
	}

	e.centroids = best.centres
	e.labels = best.labels
	e.inertia = best.inertia
	e.iterations = best.iters
	e.reason = best.reason
	e.fitted = true

	if e.opts.Algorithm == Elkan && e.opts.CacheCapacity > 0 && best.ub != nil {
		e.writeBoundCache(best)
	}

	if best.reason == ReasonMaxIterations {
		e.logger.Warn("iteration cap reached before convergence",
			"max_iterations", e.opts.MaxIterations)
	}
	e.logger.LogFit(ctx, best.iters, best.reason.String(), best.inertia, nil)

	return e.result(), nil
}

// writeBoundCache snapshots the winning run's per-sample bounds so a warm
// restart from these centroids can skip the exact distance pass. Rows are
// write-once, so the cache is cleared first.
func (e *KMeans[T]) writeBoundCache(st *runState[T]) {
	e.cache.Clear()
	row := make([]T, e.k+2)
	for i := 0; i < e.n; i++ {
		row[0] = T(st.labels[i])
		row[1] = st.ub[i]
		copy(row[2:], st.lb[i*st.ldl:i*st.ldl+e.k])
		e.cache.Put(i, row)
	}
	e.cacheSig = append(e.cacheSig[:0], st.centres...)
}

// warmStart reports whether the cached bound rows are valid for a run
// starting from the given centroids.
func (e *KMeans[T]) warmStart(cur []T) bool {
	if e.initC == nil || e.cacheSig == nil || e.cache.Len() == 0 {
		return false
	}
	if len(e.cacheSig) != len(cur) {
		return false
	}
	for i, v := range cur {
		if e.cacheSig[i] != v {
			return false
		}
	}
	return true
}

func (e *KMeans[T]) result() *Result[T] {
	labels := make([]int, len(e.labels))
	copy(labels, e.labels)
	c, _ := e.Centroids(e.order)
	return &Result[T]{
		Centroids:  c,
		Labels:     labels,
		Iterations: e.iterations,
		Reason:     e.reason,
		Inertia:    e.inertia,
	}
}

// Restore installs previously fitted centroids, e.g. from a persisted
// snapshot, so Predict and Transform work without refitting. The restored
// model has no labels or inertia until the next Fit. The feature count is
// taken from the centroid matrix when no dataset is set.
func (e *KMeans[T]) Restore(c []T, d, ldc int, order Order) error {
	if e.hasData && d != e.d {
		return &ErrInvalidDimensions{Param: "centroid cols", Value: d, Constraint: "== dataset features"}
	}
	if err := validateMatrix("centroids", c, e.k, d, ldc, order); err != nil {
		return err
	}
	e.centroids = toColMajor(c, e.k, d, ldc, order)
	if !e.hasData {
		e.d = d
	}
	e.labels = nil
	e.inertia = 0
	e.iterations = 0
	e.reason = ReasonMaxIterations
	e.fitted = true
	return nil
}

// Centroids returns a copy of the fitted centroids in the requested order
// (row-major: leading dimension d, col-major: leading dimension k).
func (e *KMeans[T]) Centroids(order Order) ([]T, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	out := make([]T, e.k*e.d)
	if order == ColMajor {
		copy(out, e.centroids)
		return out, nil
	}
	for j := 0; j < e.k; j++ {
		for t := 0; t < e.d; t++ {
			out[j*e.d+t] = e.centroids[j+t*e.k]
		}
	}
	return out, nil
}

// Labels returns a copy of the fitted assignment.
func (e *KMeans[T]) Labels() ([]int, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	out := make([]int, len(e.labels))
	copy(out, e.labels)
	return out, nil
}

// Inertia returns the fitted within-cluster sum of squared distances.
func (e *KMeans[T]) Inertia() (float64, error) {
	if !e.fitted {
		return 0, ErrNotFitted
	}
	return e.inertia, nil
}

// Iterations returns the iteration count of the winning run and why it
// stopped.
func (e *KMeans[T]) Iterations() (int, TerminationReason, error) {
	if !e.fitted {
		return 0, 0, ErrNotFitted
	}
	return e.iterations, e.reason, nil
}

// inertiaOf sums the exact squared distances of every sample to its
// assigned centre.
func (e *KMeans[T]) inertiaOf(centres []T, labels []int, reduce kernel.ReduceFunc[T]) float64 {
	var total float64
	for i := 0; i < e.n; i++ {
		total += float64(reduce(e.d, e.data[i:], e.n, centres[labels[i]:], e.k))
	}
	return total
}

// centreNorms fills norms with the squared centre norms and pads the tail
// with +Inf so padded argmin lanes never win.
func (e *KMeans[T]) centreNorms(centres, norms []T) {
	for j := 0; j < e.k; j++ {
		var sum T
		for t := 0; t < e.d; t++ {
			v := centres[j+t*e.k]
			sum += v * v
		}
		norms[j] = sum
	}
	for j := e.k; j < len(norms); j++ {
		norms[j] = infT[T]()
	}
}

// centreShift computes prev minus cur per centre. shift receives the
// euclidean shift per centre (padded tail zeroed); the return values are
// the squared Frobenius norms of the total shift and of prev.
func (e *KMeans[T]) centreShift(prev, cur, shift []T) (shiftSq, prevSq T) {
	for j := 0; j < e.k; j++ {
		var sum T
		for t := 0; t < e.d; t++ {
			d := prev[j+t*e.k] - cur[j+t*e.k]
			sum += d * d
		}
		shift[j] = sqrtT(sum)
		shiftSq += sum
	}
	for j := e.k; j < len(shift); j++ {
		shift[j] = 0
	}
	for _, v := range prev {
		prevSq += v * v
	}
	return shiftSq, prevSq
}

// converged applies the tolerance test on squared Frobenius norms.
func (e *KMeans[T]) converged(shiftSq, prevSq T) bool {
	tol := T(e.opts.Tolerance)
	return sqrtT(shiftSq) < tol*sqrtT(prevSq)
}

// finalizeCentres divides accumulated sums by counts. A centre that
// attracted no samples keeps its previous position.
func (e *KMeans[T]) finalizeCentres(prev, cur []T, counts []int) {
	for j := 0; j < e.k; j++ {
		if counts[j] == 0 {
			for t := 0; t < e.d; t++ {
				cur[j+t*e.k] = prev[j+t*e.k]
			}
			continue
		}
		inv := 1 / T(counts[j])
		for t := 0; t < e.d; t++ {
			cur[j+t*e.k] *= inv
		}
	}
}

// accumulate adds each sample of the block to its assigned centre sum.
func (e *KMeans[T]) accumulate(cur []T, labels []int, start, b int) {
	for s := 0; s < b; s++ {
		lbl := labels[start+s]
		for t := 0; t < e.d; t++ {
			cur[lbl+t*e.k] += e.data[start+s+t*e.n]
		}
	}
}
