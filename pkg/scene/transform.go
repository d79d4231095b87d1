package scene

import "github.com/Faultbox/flver/pkg/math"

// Convention selects the axis convention applied uniformly to all
// geometry and bone transforms of one import.
type Convention int

const (
	// ConventionNative keeps the format's Y-up space untouched.
	ConventionNative Convention = iota
	// ConventionZUp swaps the Y and Z axes for Z-up hosts.
	ConventionZUp
)

// String returns a human-readable convention name.
func (c Convention) String() string {
	switch c {
	case ConventionNative:
		return "native"
	case ConventionZUp:
		return "z-up"
	default:
		return "unknown"
	}
}

// ParseConvention maps a config/CLI value to a Convention.
func ParseConvention(s string) (Convention, bool) {
	switch s {
	case "native", "yup", "y-up":
		return ConventionNative, true
	case "zup", "z-up", "target":
		return ConventionZUp, true
	default:
		return ConventionNative, false
	}
}

// Point applies the convention to a position. The Y/Z swap is its own
// inverse, so applying it twice returns the input exactly.
func (c Convention) Point(p [3]float32) [3]float32 {
	if c == ConventionZUp {
		return [3]float32{p[0], p[2], p[1]}
	}
	return p
}

// Direction applies the convention to a normal or tangent direction.
// The swap has no translation component, so this equals Point for the
// rotational part.
func (c Convention) Direction(d [3]float32) [3]float32 {
	return c.Point(d)
}

// Tangent applies the convention to a 4-component tangent, leaving the
// handedness sign untouched.
func (c Convention) Tangent(t [4]float32) [4]float32 {
	if c == ConventionZUp {
		return [4]float32{t[0], t[2], t[1], t[3]}
	}
	return t
}

// Matrix re-expresses a transform in the convention's basis: C * M * C
// (the swap matrix is its own inverse).
func (c Convention) Matrix(m math.Mat4) math.Mat4 {
	if c != ConventionZUp {
		return m
	}
	swap := math.Mat4{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}
	return swap.Mul(m).Mul(swap)
}
