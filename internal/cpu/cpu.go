// Package cpu detects the host microarchitecture for kernel-table selection.
//
// Detection runs once at package init. The result only chooses which
// threshold catalog the kernel selector consults; it never gates which
// kernels are executable (all width tiers are portable Go).
package cpu

import "strings"

// Microarch identifies a CPU microarchitecture with a tuned kernel catalog.
// Architectures without a dedicated catalog resolve to Generic tables.
type Microarch uint8

const (
	// Generic is the architecture-independent default.
	Generic Microarch = iota
	// Zen2 is AMD family 23 (0x17), models 0x30 and up.
	Zen2
	// Zen3 is AMD family 25 (0x19) without AVX-512.
	Zen3
	// Zen4 is AMD family 25 (0x19) with AVX-512.
	Zen4
	// Zen5 is AMD family 26 (0x1A).
	Zen5
)

// String returns the string representation of a Microarch.
func (m Microarch) String() string {
	switch m {
	case Generic:
		return "generic"
	case Zen2:
		return "zen2"
	case Zen3:
		return "zen3"
	case Zen4:
		return "zen4"
	case Zen5:
		return "zen5"
	default:
		return "unknown"
	}
}

// Parse parses a string into a Microarch value.
func Parse(s string) (Microarch, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "zen2":
		return Zen2, true
	case "zen3":
		return Zen3, true
	case "zen4":
		return Zen4, true
	case "zen5":
		return Zen5, true
	default:
		return Generic, false
	}
}

// detected is set by the platform-specific init.
// No mutex needed: Go guarantees init() runs before any other code.
var detected Microarch

// Detected returns the microarchitecture of the host CPU.
func Detected() Microarch {
	return detected
}
