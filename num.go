package clustergo

import (
	"math"

	"github.com/chewxy/math32"
)

// Float is the element type constraint for the clustering engine.
type Float interface {
	~float32 | ~float64
}

// sqrtT takes the square root at the precision of T.
func sqrtT[T Float](x T) T {
	if v, ok := any(x).(float32); ok {
		return T(math32.Sqrt(v))
	}
	return T(math.Sqrt(float64(x)))
}

func infT[T Float]() T {
	return T(math.Inf(1))
}
