package flver

import (
	"encoding/binary"
	"fmt"
	"math"
)

// cursor is a bounds-checked reader over the raw file buffer.
// Sequential reads advance the offset; the *At variants read at an
// absolute offset without moving it. Byte order is fixed per file
// from the header endianness flag.
type cursor struct {
	data  []byte
	off   int
	order binary.ByteOrder
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data, order: binary.LittleEndian}
}

func (c *cursor) need(at, n int) error {
	if at < 0 || n < 0 || at+n > len(c.data) {
		return fmt.Errorf("%w: %d bytes at offset %d (buffer is %d bytes)",
			ErrOutOfBounds, n, at, len(c.data))
	}
	return nil
}

func (c *cursor) seek(off int) error {
	if err := c.need(off, 0); err != nil {
		return err
	}
	c.off = off
	return nil
}

func (c *cursor) pos() int {
	return c.off
}

func (c *cursor) skip(n int) error {
	if err := c.need(c.off, n); err != nil {
		return err
	}
	c.off += n
	return nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if err := c.need(c.off, n); err != nil {
		return nil, err
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) u8() (uint8, error) {
	if err := c.need(c.off, 1); err != nil {
		return 0, err
	}
	v := c.data[c.off]
	c.off++
	return v, nil
}

func (c *cursor) u16() (uint16, error) {
	if err := c.need(c.off, 2); err != nil {
		return 0, err
	}
	v := c.order.Uint16(c.data[c.off:])
	c.off += 2
	return v, nil
}

func (c *cursor) u32() (uint32, error) {
	if err := c.need(c.off, 4); err != nil {
		return 0, err
	}
	v := c.order.Uint32(c.data[c.off:])
	c.off += 4
	return v, nil
}

func (c *cursor) i16() (int16, error) {
	v, err := c.u16()
	return int16(v), err
}

func (c *cursor) i32() (int32, error) {
	v, err := c.u32()
	return int32(v), err
}

func (c *cursor) f32() (float32, error) {
	v, err := c.u32()
	return math.Float32frombits(v), err
}

func (c *cursor) vec3() ([3]float32, error) {
	var v [3]float32
	for i := range v {
		f, err := c.f32()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// u32At reads at an absolute offset without moving the cursor.
func (c *cursor) u32At(off int) (uint32, error) {
	if err := c.need(off, 4); err != nil {
		return 0, err
	}
	return c.order.Uint32(c.data[off:]), nil
}

// bytesAt slices at an absolute offset without moving the cursor.
func (c *cursor) bytesAt(off, n int) ([]byte, error) {
	if err := c.need(off, n); err != nil {
		return nil, err
	}
	return c.data[off : off+n], nil
}

// fixedString reads n bytes and trims at the first null.
func (c *cursor) fixedString(n int) (string, error) {
	b, err := c.bytes(n)
	if err != nil {
		return "", err
	}
	for i, ch := range b {
		if ch == 0 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}

// nullTerminated returns the bytes from an absolute offset up to (not
// including) the first zero byte, without moving the cursor.
func (c *cursor) nullTerminated(off int) ([]byte, error) {
	if err := c.need(off, 0); err != nil {
		return nil, err
	}
	for i := off; i < len(c.data); i++ {
		if c.data[i] == 0 {
			return c.data[off:i], nil
		}
	}
	return nil, fmt.Errorf("%w: unterminated string at offset %d", ErrOutOfBounds, off)
}

// nullTerminated16 returns the bytes from an absolute offset up to the
// first 16-bit zero unit, for UTF-16 encoded strings.
func (c *cursor) nullTerminated16(off int) ([]byte, error) {
	if err := c.need(off, 0); err != nil {
		return nil, err
	}
	for i := off; i+1 < len(c.data); i += 2 {
		if c.data[i] == 0 && c.data[i+1] == 0 {
			return c.data[off:i], nil
		}
	}
	return nil, fmt.Errorf("%w: unterminated UTF-16 string at offset %d", ErrOutOfBounds, off)
}
