package modelstore

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSnapshot(seed int64, k, d int) *Snapshot[float64] {
	rng := rand.New(rand.NewSource(seed))
	c := make([]float64, k*d)
	for i := range c {
		c[i] = rng.NormFloat64()
	}
	return &Snapshot[float64]{
		Clusters:  k,
		Features:  d,
		Centroids: c,
		Inertia:   rng.Float64() * 100,
	}
}

func TestCodecRoundTrip(t *testing.T) {
	compressions := map[string]CompressionType{
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZSTD,
	}

	for name, ct := range compressions {
		t.Run(name, func(t *testing.T) {
			want := randomSnapshot(1, 16, 64)

			data, err := Encode(want, WithCompression(ct))
			require.NoError(t, err)

			got, err := Decode[float64](data)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestCodecRoundTripFloat32(t *testing.T) {
	want := &Snapshot[float32]{
		Clusters:  2,
		Features:  3,
		Centroids: []float32{1, 2, 3, 4, 5, 6},
		Inertia:   1.5,
	}

	data, err := Encode(want, WithCompression(CompressionZSTD))
	require.NoError(t, err)

	got, err := Decode[float32](data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCodecIncompressiblePayloadFallsBack(t *testing.T) {
	// Random doubles barely compress; the block must be stored raw and
	// still round-trip.
	want := randomSnapshot(2, 4, 8)

	data, err := Encode(want, WithCompression(CompressionLZ4))
	require.NoError(t, err)
	assert.Equal(t, byte(CompressionNone), data[6], "incompressible payload downgrades to raw")

	got, err := Decode[float64](data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodePrecisionMismatch(t *testing.T) {
	data, err := Encode(randomSnapshot(3, 2, 2))
	require.NoError(t, err)

	_, err = Decode[float32](data)
	assert.ErrorIs(t, err, ErrPrecisionMismatch)
}

func TestDecodeCorrupt(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Decode[float64](nil)
		assert.ErrorIs(t, err, ErrCorruptSnapshot)
	})

	t.Run("bad magic", func(t *testing.T) {
		data, err := Encode(randomSnapshot(4, 2, 2))
		require.NoError(t, err)
		data[0] = 'X'
		_, err = Decode[float64](data)
		assert.ErrorIs(t, err, ErrCorruptSnapshot)
	})

	t.Run("truncated payload", func(t *testing.T) {
		data, err := Encode(randomSnapshot(5, 4, 4))
		require.NoError(t, err)
		_, err = Decode[float64](data[:len(data)-7])
		assert.ErrorIs(t, err, ErrCorruptSnapshot)
	})

	t.Run("oversized raw block size", func(t *testing.T) {
		// A block header claiming nearly MaxUint32 raw bytes must fail the
		// bounds check, not wrap it and panic.
		data, err := Encode(randomSnapshot(7, 4, 4), WithCompression(CompressionNone))
		require.NoError(t, err)
		binary.LittleEndian.PutUint32(data[headerSize:], 0xFFFFFFF9)
		binary.LittleEndian.PutUint32(data[headerSize+4:], 0)
		assert.NotPanics(t, func() {
			_, err := Decode[float64](data)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	})

	t.Run("oversized compressed block size", func(t *testing.T) {
		data, err := Encode(randomSnapshot(8, 4, 4))
		require.NoError(t, err)
		binary.LittleEndian.PutUint32(data[headerSize+4:], 0xFFFFFFF9)
		assert.NotPanics(t, func() {
			_, err := Decode[float64](data)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	})

	t.Run("shape mismatch on encode", func(t *testing.T) {
		s := randomSnapshot(6, 2, 2)
		s.Centroids = s.Centroids[:3]
		_, err := Encode(s)
		assert.ErrorIs(t, err, ErrCorruptSnapshot)
	})
}
