package clustergo

import "strings"

// Algorithm selects the k-means iteration variant.
type Algorithm uint8

const (
	// Lloyd is the blocked standard iteration.
	Lloyd Algorithm = iota
	// Elkan is the triangle-inequality accelerated iteration.
	Elkan
)

// String returns the string representation of an Algorithm.
func (a Algorithm) String() string {
	if a == Elkan {
		return "elkan"
	}
	return "lloyd"
}

// ParseAlgorithm parses a string into an Algorithm value.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lloyd":
		return Lloyd, true
	case "elkan":
		return Elkan, true
	default:
		return Lloyd, false
	}
}

// InitMethod selects how initial centroids are chosen when none are
// supplied via SetInitialCentroids.
type InitMethod uint8

const (
	// InitRandom picks k distinct samples uniformly at random.
	InitRandom InitMethod = iota
	// InitKMeansPlusPlus spreads the initial centres with the k-means++
	// weighting.
	InitKMeansPlusPlus
)

// String returns the string representation of an InitMethod.
func (m InitMethod) String() string {
	if m == InitKMeansPlusPlus {
		return "k-means++"
	}
	return "random"
}

// Options holds the configuration for a KMeans instance.
type Options struct {
	// Algorithm is the iteration variant. Defaults to Lloyd.
	Algorithm Algorithm

	// MaxIterations caps the iteration loop per initialization. Hitting the
	// cap is a reported termination state, not an error.
	MaxIterations int

	// Tolerance is the relative centre-shift threshold: the loop stops once
	// the Frobenius norm of the shift drops below Tolerance times the norm
	// of the previous centres.
	Tolerance float64

	// NInit is the number of random initializations to run; the run with the
	// lowest inertia wins. Clamped to 1 when centroids are supplied.
	NInit int

	// Seed seeds the RNG for initialization. A negative seed draws from the
	// clock.
	Seed int64

	// Init selects the initialization policy when no centroids are supplied.
	Init InitMethod

	// KernelOverride forces one kernel width tier by name for all phases,
	// bypassing size-based selection. Empty means automatic; the
	// CLUSTERGO_KERNEL environment variable applies when unset. Unknown
	// names resolve to the scalar tier.
	KernelOverride string

	// Microarch overrides the detected microarchitecture for catalog
	// selection, e.g. "zen5". Empty means detect.
	Microarch string

	// CacheCapacity bounds the per-sample bound reuse cache used by the
	// Elkan variant for warm restarts. Zero or negative disables caching.
	CacheCapacity int

	// Logger receives structured diagnostics. Defaults to NoopLogger.
	Logger *Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Algorithm:     Lloyd,
		MaxIterations: 100,
		Tolerance:     1e-4,
		NInit:         1,
		Seed:          -1,
		Init:          InitRandom,
		CacheCapacity: 4096,
		Logger:        NoopLogger(),
	}
}

// Option customizes Options.
type Option func(*Options)

// WithAlgorithm sets the iteration variant.
func WithAlgorithm(a Algorithm) Option {
	return func(o *Options) { o.Algorithm = a }
}

// WithMaxIterations sets the iteration cap.
func WithMaxIterations(n int) Option {
	return func(o *Options) { o.MaxIterations = n }
}

// WithTolerance sets the relative convergence tolerance.
func WithTolerance(tol float64) Option {
	return func(o *Options) { o.Tolerance = tol }
}

// WithNInit sets the number of initializations.
func WithNInit(n int) Option {
	return func(o *Options) { o.NInit = n }
}

// WithSeed sets the RNG seed. Negative draws from the clock.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithInit sets the initialization policy.
func WithInit(m InitMethod) Option {
	return func(o *Options) { o.Init = m }
}

// WithKernelOverride forces a kernel width tier by name.
func WithKernelOverride(name string) Option {
	return func(o *Options) { o.KernelOverride = name }
}

// WithMicroarch overrides the detected microarchitecture by name.
func WithMicroarch(name string) Option {
	return func(o *Options) { o.Microarch = name }
}

// WithCacheCapacity bounds the bound reuse cache.
func WithCacheCapacity(n int) Option {
	return func(o *Options) { o.CacheCapacity = n }
}

// WithLogger sets the logger.
func WithLogger(l *Logger) Option {
	return func(o *Options) { o.Logger = l }
}
