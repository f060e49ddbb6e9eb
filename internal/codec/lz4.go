package codec

import (
	"bytes"
	"sync"

	"github.com/pierrec/lz4"
)

// lz4Compressor reuses a single lz4 stream writer and reader
type lz4Compressor struct {
	compressLock   sync.Mutex
	decompressLock sync.Mutex
	compressor     *lz4.Writer
	decompressor   *lz4.Reader
}

func newLZ4Compressor() *lz4Compressor {
	return &lz4Compressor{
		compressor:   lz4.NewWriter(new(bytes.Buffer)),
		decompressor: lz4.NewReader(new(bytes.Buffer)),
	}
}

func (c *lz4Compressor) Compress(src []byte) ([]byte, error) {
	c.compressLock.Lock()
	defer c.compressLock.Unlock()
	buf := new(bytes.Buffer)
	c.compressor.Reset(buf)
	if _, err := c.compressor.Write(src); err != nil {
		return nil, err
	}
	if err := c.compressor.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *lz4Compressor) Decompress(src []byte) ([]byte, error) {
	c.decompressLock.Lock()
	defer c.decompressLock.Unlock()
	c.decompressor.Reset(bytes.NewReader(src))
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(c.decompressor); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *lz4Compressor) Destroy() {}
