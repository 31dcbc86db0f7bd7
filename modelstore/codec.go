package modelstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/clustergo"
)

// CompressionType defines the compression algorithm used for the centroid
// payload.
type CompressionType uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD CompressionType = 2
)

var (
	// ErrCorruptSnapshot is returned when a snapshot fails to decode.
	ErrCorruptSnapshot = errors.New("corrupt model snapshot")

	// ErrPrecisionMismatch is returned when a snapshot holds a different
	// element type than requested.
	ErrPrecisionMismatch = errors.New("snapshot precision mismatch")
)

const (
	snapshotMagic   = "CGKM"
	snapshotVersion = 1

	// magic + version + precision + compression + reserved + k + d + inertia
	headerSize = 4 + 1 + 1 + 1 + 1 + 4 + 4 + 8

	// payload block: [uncompressed size][compressed size, 0 = raw][data]
	blockHeaderSize = 8
)

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

type codecOptions struct {
	compression CompressionType
}

// CodecOption customizes snapshot encoding.
type CodecOption func(*codecOptions)

// WithCompression sets the payload compression. Defaults to LZ4.
func WithCompression(c CompressionType) CodecOption {
	return func(o *codecOptions) { o.compression = c }
}

func elemSize[T clustergo.Float]() int {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return 4
	}
	return 8
}

// Encode serializes a snapshot.
func Encode[T clustergo.Float](s *Snapshot[T], opts ...CodecOption) ([]byte, error) {
	o := codecOptions{compression: CompressionLZ4}
	for _, opt := range opts {
		opt(&o)
	}
	if len(s.Centroids) != s.Clusters*s.Features {
		return nil, fmt.Errorf("%w: centroid buffer length %d, want %d",
			ErrCorruptSnapshot, len(s.Centroids), s.Clusters*s.Features)
	}

	es := elemSize[T]()
	payload := make([]byte, len(s.Centroids)*es)
	for i, v := range s.Centroids {
		if es == 4 {
			binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(float32(v)))
		} else {
			binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(float64(v)))
		}
	}

	block, compression, err := compressBlock(payload, o.compression)
	if err != nil {
		return nil, err
	}

	out := make([]byte, headerSize+len(block))
	copy(out[0:], snapshotMagic)
	out[4] = snapshotVersion
	out[5] = byte(es)
	out[6] = byte(compression)
	out[7] = 0
	binary.LittleEndian.PutUint32(out[8:], uint32(s.Clusters))
	binary.LittleEndian.PutUint32(out[12:], uint32(s.Features))
	binary.LittleEndian.PutUint64(out[16:], math.Float64bits(s.Inertia))
	copy(out[headerSize:], block)
	return out, nil
}

// Decode deserializes a snapshot.
func Decode[T clustergo.Float](data []byte) (*Snapshot[T], error) {
	if len(data) < headerSize || string(data[0:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad header", ErrCorruptSnapshot)
	}
	if data[4] != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, data[4])
	}
	es := elemSize[T]()
	if int(data[5]) != es {
		return nil, fmt.Errorf("%w: snapshot element size %d, want %d",
			ErrPrecisionMismatch, data[5], es)
	}
	compression := CompressionType(data[6])
	clusters := int(binary.LittleEndian.Uint32(data[8:]))
	features := int(binary.LittleEndian.Uint32(data[12:]))
	inertia := math.Float64frombits(binary.LittleEndian.Uint64(data[16:]))
	if clusters <= 0 || features <= 0 {
		return nil, fmt.Errorf("%w: shape %dx%d", ErrCorruptSnapshot, clusters, features)
	}

	payload, err := decompressBlock(data[headerSize:], compression)
	if err != nil {
		return nil, err
	}
	if len(payload) != clusters*features*es {
		return nil, fmt.Errorf("%w: payload length %d, want %d",
			ErrCorruptSnapshot, len(payload), clusters*features*es)
	}

	centroids := make([]T, clusters*features)
	for i := range centroids {
		if es == 4 {
			centroids[i] = T(math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:])))
		} else {
			centroids[i] = T(math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:])))
		}
	}
	return &Snapshot[T]{
		Clusters:  clusters,
		Features:  features,
		Centroids: centroids,
		Inertia:   inertia,
	}, nil
}

// compressBlock frames the payload as one block. If compression does not
// help (ratio > 0.9), the block is stored raw and the returned compression
// type downgrades to none.
func compressBlock(data []byte, compressionType CompressionType) ([]byte, CompressionType, error) {
	var compressed []byte

	switch compressionType {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, 0, err
		}
		if n > 0 {
			compressed = buf[:n]
		}
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[4:], 0)
		copy(out[blockHeaderSize:], data)
		return out, CompressionNone, nil
	}

	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[blockHeaderSize:], compressed)
	return out, compressionType, nil
}

func decompressBlock(block []byte, compressionType CompressionType) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, fmt.Errorf("%w: block too small for header", ErrCorruptSnapshot)
	}
	// Sizes come from untrusted bytes; compare in int64 so a value near
	// MaxUint32 cannot wrap past the guard and panic the slice expression.
	uncompressedSize := int64(binary.LittleEndian.Uint32(block[0:]))
	compressedSize := int64(binary.LittleEndian.Uint32(block[4:]))
	avail := int64(len(block) - blockHeaderSize)

	if compressedSize == 0 {
		if uncompressedSize > avail {
			return nil, fmt.Errorf("%w: block data too small", ErrCorruptSnapshot)
		}
		return block[blockHeaderSize : blockHeaderSize+int(uncompressedSize)], nil
	}

	if compressedSize > avail {
		return nil, fmt.Errorf("%w: compressed block data too small", ErrCorruptSnapshot)
	}
	compressedData := block[blockHeaderSize : blockHeaderSize+int(compressedSize)]

	switch compressionType {
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(compressedData, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, err
		}
		if int64(len(decoded)) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptSnapshot)
		}
		return decoded, nil
	default:
		result := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(compressedData, result)
		if err != nil {
			return nil, err
		}
		if int64(n) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptSnapshot)
		}
		return result, nil
	}
}
