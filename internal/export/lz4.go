package export

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// tdlz4 container: 8-byte magic "tdLz40\x00\x00" + 4-byte LE uint32
// uncompressed size + one lz4 block.
var tdLz4Magic = []byte("tdLz40\x00\x00")

const headerSize = 12

// CompressLz4 wraps data in the tdlz4 container.
func CompressLz4(data []byte) ([]byte, error) {
	if uint64(len(data)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("tdlz4: input too large (%d bytes)", len(data))
	}
	out := make([]byte, headerSize+lz4.CompressBlockBound(len(data)))
	copy(out, tdLz4Magic)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(data)))

	n, err := lz4.CompressBlock(data, out[headerSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("tdlz4: compress failed: %w", err)
	}
	return out[:headerSize+n], nil
}

// DecompressLz4 reverses CompressLz4.
func DecompressLz4(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("tdlz4: data too short (%d bytes)", len(data))
	}
	if !bytes.Equal(data[:8], tdLz4Magic) {
		return nil, fmt.Errorf("tdlz4: invalid header magic")
	}

	size := binary.LittleEndian.Uint32(data[8:12])
	if size == 0 {
		return []byte{}, nil
	}
	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(data[headerSize:], dst)
	if err != nil {
		return nil, fmt.Errorf("tdlz4: decompress failed: %w", err)
	}
	return dst[:n], nil
}
