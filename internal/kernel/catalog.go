package kernel

import (
	"math"

	"github.com/hupe1980/clustergo/internal/cpu"
)

// Phase names a kernel family with its own selection table. The size
// parameter fed to the lookup differs per phase: the assignment and bound
// update kernels scale with the cluster count, the reduction kernel with the
// feature count.
type Phase uint8

const (
	// PhaseAssign is the blocked argmin assignment kernel (Lloyd and Predict).
	PhaseAssign Phase = iota
	// PhaseBoundUpdate is the Elkan bound update kernel.
	PhaseBoundUpdate
	// PhaseReduce is the Elkan strided squared-distance reduction kernel.
	PhaseReduce
)

// String returns the string representation of a Phase.
func (p Phase) String() string {
	switch p {
	case PhaseAssign:
		return "assign"
	case PhaseBoundUpdate:
		return "bound_update"
	case PhaseReduce:
		return "reduce"
	default:
		return "unknown"
	}
}

// Selection is one catalog entry: the first entry whose threshold is >= the
// size parameter wins. Tables are ascending and terminated by a math.MaxInt
// sentinel so a lookup always lands.
type Selection struct {
	Threshold int
	Width     Width
}

type tableKey struct {
	phase Phase
	prec  Precision
}

// Benchmark-derived tables. The generic set applies everywhere; Zen5 has its
// own overrides. Zen2 through Zen4 measured best on the generic set.
var genericTables = map[tableKey][]Selection{
	{PhaseAssign, Precision32}: {
		{2, WidthScalar},
		{16, Width128},
		{math.MaxInt, Width256},
	},
	{PhaseAssign, Precision64}: {
		{6, Width128},
		{math.MaxInt, Width256},
	},
	{PhaseBoundUpdate, Precision32}: {
		{4, Width128},
		{math.MaxInt, Width256},
	},
	{PhaseBoundUpdate, Precision64}: {
		{math.MaxInt, Width256},
	},
	{PhaseReduce, Precision32}: {
		{math.MaxInt, WidthScalar},
	},
	{PhaseReduce, Precision64}: {
		{4, WidthScalar},
		{16, Width128},
		{math.MaxInt, Width256},
	},
}

var zen5Tables = map[tableKey][]Selection{
	{PhaseAssign, Precision32}: {
		{4, WidthScalar},
		{16, Width128},
		{math.MaxInt, Width256},
	},
	{PhaseAssign, Precision64}: {
		{4, WidthScalar},
		{6, Width128},
		{19, Width256},
		{math.MaxInt, Width512},
	},
	{PhaseBoundUpdate, Precision32}: {
		{4, Width128},
		{math.MaxInt, Width256},
	},
	{PhaseBoundUpdate, Precision64}: {
		{6, Width128},
		{15, Width256},
		{math.MaxInt, Width512},
	},
	{PhaseReduce, Precision32}: {
		{8, Width128},
		{math.MaxInt, Width128},
	},
	{PhaseReduce, Precision64}: {
		{4, WidthScalar},
		{8, Width128},
		{15, Width256},
		{math.MaxInt, Width512},
	},
}

// Catalog returns the selection table for (arch, phase, prec). Architectures
// without dedicated tables fall back to the generic set.
func Catalog(arch cpu.Microarch, phase Phase, prec Precision) []Selection {
	key := tableKey{phase, prec}
	if arch == cpu.Zen5 {
		if tbl, ok := zen5Tables[key]; ok {
			return tbl
		}
	}
	return genericTables[key]
}
