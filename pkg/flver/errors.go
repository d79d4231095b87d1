package flver

import "errors"

// FLVER format errors.
var (
	ErrBadMagic                = errors.New("invalid FLVER magic: expected 'FLVER\\x00'")
	ErrUnsupportedVersion      = errors.New("unsupported FLVER version")
	ErrOutOfBounds             = errors.New("read out of bounds")
	ErrMalformedTable          = errors.New("malformed FLVER table")
	ErrUnsupportedVertexFormat = errors.New("unsupported vertex format")
	ErrInvalidEncoding         = errors.New("invalid string encoding")
)
