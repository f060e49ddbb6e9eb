package codec

import (
	"github.com/klauspost/compress/zstd"
)

// zstdCompressor uses stateless whole-buffer encoding, which zstd supports concurrently
type zstdCompressor struct {
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

func newZstdCompressor() (*zstdCompressor, error) {
	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		compressor.Close()
		return nil, err
	}
	return &zstdCompressor{compressor: compressor, decompressor: decompressor}, nil
}

func (c *zstdCompressor) Compress(src []byte) ([]byte, error) {
	return c.compressor.EncodeAll(src, nil), nil
}

func (c *zstdCompressor) Decompress(src []byte) ([]byte, error) {
	return c.decompressor.DecodeAll(src, nil)
}

func (c *zstdCompressor) Destroy() {
	c.compressor.Close()
	c.decompressor.Close()
}
