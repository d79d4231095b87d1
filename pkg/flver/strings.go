package flver

import (
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// readName decodes a null-terminated name string at an absolute
// offset. The header unicode flag selects UTF-16 (in the file's byte
// order); otherwise names are Shift-JIS.
func readName(c *cursor, h Header, off uint32) (string, error) {
	if h.Unicode {
		raw, err := c.nullTerminated16(int(off))
		if err != nil {
			return "", err
		}
		return decodeUTF16(raw, c)
	}

	raw, err := c.nullTerminated(int(off))
	if err != nil {
		return "", err
	}
	return decodeShiftJIS(raw)
}

func decodeUTF16(raw []byte, c *cursor) (string, error) {
	if len(raw)%2 != 0 {
		return "", fmt.Errorf("%w: odd UTF-16 byte length %d", ErrInvalidEncoding, len(raw))
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = c.order.Uint16(raw[i*2:])
	}
	return string(utf16.Decode(units)), nil
}

func decodeShiftJIS(raw []byte) (string, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return string(out), nil
}
