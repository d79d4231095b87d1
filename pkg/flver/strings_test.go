package flver

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestReadNameUTF16(t *testing.T) {
	w := &bufWriter{order: binary.LittleEndian}
	for _, r := range "Spine1" {
		w.u16(uint16(r))
	}
	w.u16(0)

	c := newCursor(w.buf)
	name, err := readName(c, Header{Unicode: true}, 0)
	if err != nil {
		t.Fatalf("readName failed: %v", err)
	}
	if name != "Spine1" {
		t.Errorf("name = %q, want Spine1", name)
	}
}

func TestReadNameUTF16BigEndian(t *testing.T) {
	w := &bufWriter{order: binary.BigEndian}
	for _, r := range "Hips" {
		w.u16(uint16(r))
	}
	w.u16(0)

	c := newCursor(w.buf)
	c.order = binary.BigEndian
	name, err := readName(c, Header{Unicode: true}, 0)
	if err != nil {
		t.Fatalf("readName failed: %v", err)
	}
	if name != "Hips" {
		t.Errorf("name = %q, want Hips", name)
	}
}

func TestReadNameUTF16Surrogates(t *testing.T) {
	// U+1F600 encodes as a surrogate pair.
	w := &bufWriter{order: binary.LittleEndian}
	w.u16(0xD83D)
	w.u16(0xDE00)
	w.u16(0)

	c := newCursor(w.buf)
	name, err := readName(c, Header{Unicode: true}, 0)
	if err != nil {
		t.Fatalf("readName failed: %v", err)
	}
	if name != "\U0001F600" {
		t.Errorf("surrogate pair decoded to %q", name)
	}
}

func TestReadNameShiftJIS(t *testing.T) {
	// Shift-JIS for the katakana "ボーン" followed by a terminator.
	data := []byte{0x83, 0x7B, 0x81, 0x5B, 0x83, 0x93, 0x00}

	c := newCursor(data)
	name, err := readName(c, Header{Unicode: false}, 0)
	if err != nil {
		t.Fatalf("readName failed: %v", err)
	}
	if name != "ボーン" {
		t.Errorf("name = %q, want ボーン", name)
	}
}

func TestReadNameShiftJISASCII(t *testing.T) {
	c := newCursor([]byte("L_Hand\x00"))

	name, err := readName(c, Header{}, 0)
	if err != nil || name != "L_Hand" {
		t.Errorf("readName = %q, %v", name, err)
	}
}

func TestDecodeUTF16OddLength(t *testing.T) {
	c := newCursor(nil)
	if _, err := decodeUTF16([]byte{'A'}, c); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestReadNameOffsetOutOfRange(t *testing.T) {
	c := newCursor([]byte("x\x00"))
	if _, err := readName(c, Header{}, 100); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}
