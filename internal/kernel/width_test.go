package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadding(t *testing.T) {
	tests := []struct {
		w    Width
		prec Precision
		want int
	}{
		{WidthScalar, Precision32, 0},
		{WidthScalar, Precision64, 0},
		{Width128, Precision32, 4},
		{Width128, Precision64, 2},
		{Width256, Precision32, 8},
		{Width256, Precision64, 4},
		{Width512, Precision32, 16},
		{Width512, Precision64, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Padding(tt.w, tt.prec), "%s/%s", tt.w, tt.prec)
	}
}

func TestParseWidth(t *testing.T) {
	tests := []struct {
		in   string
		want Width
		ok   bool
	}{
		{"scalar", WidthScalar, true},
		{"vec128", Width128, true},
		{"VEC256", Width256, true},
		{" vec512 ", Width512, true},
		{"512", Width512, true},
		{"avx1024", WidthScalar, false},
		{"", WidthScalar, false},
	}
	for _, tt := range tests {
		w, ok := ParseWidth(tt.in)
		assert.Equal(t, tt.want, w, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestPrecisionOf(t *testing.T) {
	assert.Equal(t, Precision32, PrecisionOf[float32]())
	assert.Equal(t, Precision64, PrecisionOf[float64]())
}
