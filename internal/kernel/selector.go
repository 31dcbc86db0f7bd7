package kernel

import (
	"log/slog"

	"github.com/hupe1980/clustergo/internal/cpu"
)

// Selector resolves (phase, precision, size) to a width tier and the padding
// the engine must apply to its working buffers. A Selector is immutable after
// construction and safe for concurrent use.
//
// Selection never fails: an override naming an unknown tier resolves to
// scalar, and a table miss (which would indicate a malformed catalog) falls
// back to scalar as well.
type Selector struct {
	arch     cpu.Microarch
	override Width
	forced   bool
	logger   *slog.Logger
}

// NewSelector builds a Selector for the given microarchitecture. A non-empty
// override names a width tier that bypasses size-based selection for every
// phase; unknown names resolve to the scalar tier.
func NewSelector(arch cpu.Microarch, override string, logger *slog.Logger) *Selector {
	s := &Selector{arch: arch, logger: logger}
	if override != "" {
		w, ok := ParseWidth(override)
		if !ok {
			s.logger.Warn("unknown kernel tier override, using scalar", slog.String("override", override))
			w = WidthScalar
		}
		s.override = w
		s.forced = true
	}
	return s
}

// Arch returns the microarchitecture the Selector was built for.
func (s *Selector) Arch() cpu.Microarch {
	return s.arch
}

// Forced reports whether an override bypasses size-based selection, and the
// tier it forces.
func (s *Selector) Forced() (Width, bool) {
	return s.override, s.forced
}

// Select returns the width tier and padding for one kernel phase at the
// given precision and size parameter (cluster count for the assignment and
// bound update phases, feature count for the reduction phase).
func (s *Selector) Select(phase Phase, prec Precision, size int) (Width, int) {
	if s.forced {
		return s.override, Padding(s.override, prec)
	}
	for _, sel := range Catalog(s.arch, phase, prec) {
		if size <= sel.Threshold {
			return sel.Width, Padding(sel.Width, prec)
		}
	}
	// Unreachable with well-formed tables (sentinel terminated).
	s.logger.Warn("kernel catalog lookup fell through, using scalar",
		slog.String("arch", s.arch.String()),
		slog.String("phase", phase.String()),
		slog.String("precision", prec.String()),
		slog.Int("size", size),
	)
	return WidthScalar, 0
}
