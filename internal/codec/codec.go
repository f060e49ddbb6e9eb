// Package codec frames byte payloads for transfer between ranks, compressing those which are
// large enough to benefit from it. The first byte of every frame names the Algorithm used for the
// remainder, so a receiver can decode frames regardless of its own configuration.
package codec

import (
	"fmt"
	"strings"

	"github.com/go-sif/sjoin/errors"
)

// Algorithm identifies a compression algorithm
type Algorithm byte

const (
	// None leaves payloads as they are
	None Algorithm = iota
	// LZ4 favours speed over ratio, and is the default
	LZ4
	// Zstd favours ratio over speed
	Zstd
)

// String returns the configuration name of this Algorithm
func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", byte(a))
	}
}

// ParseAlgorithm converts a configuration name into an Algorithm. The empty string selects LZ4.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "", "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	case "none":
		return None, nil
	default:
		return None, errors.ConfigurationError{Field: "Compression", Reason: fmt.Sprintf("%q is not one of lz4, zstd or none", name)}
	}
}

// A Compressor compresses and decompresses whole payloads. Implementations are safe for concurrent use.
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
	Destroy()
}

// Codec encodes payloads into frames and decodes them again
type Codec struct {
	algorithm   Algorithm
	threshold   int
	compressors map[Algorithm]Compressor
}

// New creates a Codec which compresses payloads of at least threshold bytes with algorithm
func New(algorithm Algorithm, threshold int) (*Codec, error) {
	if threshold < 0 {
		return nil, errors.ConfigurationError{Field: "CompressionThreshold", Reason: fmt.Sprintf("must be non-negative, got %d", threshold)}
	}
	zstdCompressor, err := newZstdCompressor()
	if err != nil {
		return nil, err
	}
	return &Codec{
		algorithm: algorithm,
		threshold: threshold,
		compressors: map[Algorithm]Compressor{
			LZ4:  newLZ4Compressor(),
			Zstd: zstdCompressor,
		},
	}, nil
}

// Algorithm returns the algorithm this Codec encodes with
func (c *Codec) Algorithm() Algorithm {
	return c.algorithm
}

// Encode frames data, compressing it if it is large enough
func (c *Codec) Encode(data []byte) ([]byte, error) {
	alg := c.algorithm
	if len(data) < c.threshold {
		alg = None
	}
	if alg == None {
		frame := make([]byte, 1+len(data))
		frame[0] = byte(None)
		copy(frame[1:], data)
		return frame, nil
	}
	compressed, err := c.compressors[alg].Compress(data)
	if err != nil {
		return nil, fmt.Errorf("unable to compress payload with %s: %w", alg, err)
	}
	return append([]byte{byte(alg)}, compressed...), nil
}

// Decode recovers the payload of a frame produced by any Codec
func (c *Codec) Decode(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty frame")
	}
	alg := Algorithm(frame[0])
	if alg == None {
		return frame[1:], nil
	}
	compressor, ok := c.compressors[alg]
	if !ok {
		return nil, fmt.Errorf("frame uses unknown compression algorithm %s", alg)
	}
	data, err := compressor.Decompress(frame[1:])
	if err != nil {
		return nil, fmt.Errorf("unable to decompress %s payload: %w", alg, err)
	}
	return data, nil
}

// Destroy releases the resources held by this Codec's compressors
func (c *Codec) Destroy() {
	for _, compressor := range c.compressors {
		compressor.Destroy()
	}
}
