//go:build !amd64

package cpu

func init() {
	// No tuned catalogs exist outside amd64; the generic tables apply.
	detected = Generic
}
