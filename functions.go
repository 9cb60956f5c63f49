package cvault

import (
	"encoding/binary"
	"fmt"
)

// encodeUint32LE renders v as the 4-byte little-endian value the
// config store contract requires
func encodeUint32LE(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

// decodeUint32LE parses a 4-byte little-endian config value
func decodeUint32LE(value []byte) (uint32, error) {
	if len(value) != 4 {
		return 0, fmt.Errorf("%w: u32 value length %d", ErrInvalidSize, len(value))
	}

	return binary.LittleEndian.Uint32(value), nil
}
