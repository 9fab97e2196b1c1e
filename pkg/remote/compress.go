package remote

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// maxBundleWindow caps the memory a decoder may allocate for one frame.
const maxBundleWindow = 1 << 30

// newCompressor wraps w with zstd compression. The caller must Close it to
// flush the final frame.
func newCompressor(w io.Writer) (*zstd.Encoder, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
}

// newDecompressor wraps r with zstd decompression.
func newDecompressor(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxBundleWindow))
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{dec: dec}, nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return nil
}
