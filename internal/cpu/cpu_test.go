package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Microarch
		ok   bool
	}{
		{"generic", Generic, true},
		{"zen2", Zen2, true},
		{"ZEN3", Zen3, true},
		{" zen4 ", Zen4, true},
		{"zen5", Zen5, true},
		{"zen1", Generic, false},
		{"", Generic, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, m := range []Microarch{Generic, Zen2, Zen3, Zen4, Zen5} {
		got, ok := Parse(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
}

func TestDetectedIsKnown(t *testing.T) {
	_, ok := Parse(Detected().String())
	assert.True(t, ok)
}
