package math

import "testing"

func TestVec3Add(t *testing.T) {
	v := Vec3{1, 2, 3}.Add(Vec3{4, 5, 6})
	if v != (Vec3{5, 7, 9}) {
		t.Errorf("Add: got %v, want (5, 7, 9)", v)
	}
}

func TestVec3Sub(t *testing.T) {
	v := Vec3{5, 7, 9}.Sub(Vec3{4, 5, 6})
	if v != (Vec3{1, 2, 3}) {
		t.Errorf("Sub: got %v, want (1, 2, 3)", v)
	}
}

func TestVec3Cross(t *testing.T) {
	v := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if v != (Vec3{0, 0, 1}) {
		t.Errorf("Cross: got %v, want (0, 0, 1)", v)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 0, 4}.Normalize()
	if abs(v.Length()-1) > 1e-6 {
		t.Errorf("Normalize length: got %f, want 1", v.Length())
	}

	// Zero vector stays zero rather than producing NaN.
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("Normalize zero: got %v, want zero", z)
	}
}

func TestVec3ArrayRoundTrip(t *testing.T) {
	a := [3]float32{1.5, -2.5, 3.5}
	if got := FromArray(a).Array(); got != a {
		t.Errorf("round trip: got %v, want %v", got, a)
	}
}
