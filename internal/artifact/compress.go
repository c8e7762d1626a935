package artifact

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Single-threaded encoding with a fixed level keeps the compressed bytes
// deterministic for identical input.
func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("artifact: creating zstd encoder: %w", err)
	}
	defer enc.Close() //nolint:errcheck
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("artifact: creating zstd decoder: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
