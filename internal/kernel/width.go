// Package kernel provides the compute kernels for the clustering engine and
// the catalog-driven selection of a kernel width tier per problem shape.
//
// A width tier names how many elements a kernel processes per step. Wider
// tiers require the cluster (or feature) dimension of the working buffers to
// be padded to a full step so inner loops never need a remainder pass.
// Selection is a pure table lookup; every tier is portable Go, so selection
// is a performance choice only, never a capability gate.
package kernel

import "strings"

// Float is the element type constraint for all kernels.
type Float interface {
	~float32 | ~float64
}

// Width is a kernel width tier.
type Width uint8

const (
	// WidthScalar processes one element per step and needs no padding.
	WidthScalar Width = iota
	// Width128 processes a 128-bit lane per step.
	Width128
	// Width256 processes a 256-bit lane per step.
	Width256
	// Width512 processes a 512-bit lane per step.
	Width512
)

// String returns the string representation of a Width.
func (w Width) String() string {
	switch w {
	case WidthScalar:
		return "scalar"
	case Width128:
		return "vec128"
	case Width256:
		return "vec256"
	case Width512:
		return "vec512"
	default:
		return "unknown"
	}
}

// ParseWidth parses a string into a Width value.
func ParseWidth(s string) (Width, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar":
		return WidthScalar, true
	case "vec128", "128":
		return Width128, true
	case "vec256", "256":
		return Width256, true
	case "vec512", "512":
		return Width512, true
	default:
		return WidthScalar, false
	}
}

// Precision identifies the element width of the instantiated kernels.
type Precision uint8

const (
	// Precision32 is float32.
	Precision32 Precision = iota
	// Precision64 is float64.
	Precision64
)

// String returns the string representation of a Precision.
func (p Precision) String() string {
	if p == Precision32 {
		return "float32"
	}
	return "float64"
}

// PrecisionOf reports the Precision of the type parameter T.
func PrecisionOf[T Float]() Precision {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return Precision32
	}
	return Precision64
}

// Padding returns the number of pad elements a buffer dimension must be
// rounded up by so that width-tier steps always read full lanes. It doubles
// with each tier and halves for the wider element type; the scalar tier
// needs none.
func Padding(w Width, p Precision) int {
	var lane int
	switch w {
	case Width128:
		lane = 4
	case Width256:
		lane = 8
	case Width512:
		lane = 16
	default:
		return 0
	}
	if p == Precision64 {
		lane /= 2
	}
	return lane
}
