//go:build amd64

package cpu

import (
	"github.com/klauspost/cpuid/v2"
	xcpu "golang.org/x/sys/cpu"
)

func init() {
	detected = detect()
}

func detect() Microarch {
	if cpuid.CPU.VendorID != cpuid.AMD {
		return Generic
	}

	switch cpuid.CPU.Family {
	case 23:
		// Family 0x17 covers Zen through Zen2; the tuned tables only
		// apply from Zen2 (models 0x30+).
		if cpuid.CPU.Model >= 0x30 {
			return Zen2
		}
		return Generic
	case 25:
		// Family 0x19 is shared by Zen3 and Zen4; Zen4 introduced AVX-512.
		if xcpu.X86.HasAVX512F {
			return Zen4
		}
		return Zen3
	case 26:
		return Zen5
	default:
		return Generic
	}
}
