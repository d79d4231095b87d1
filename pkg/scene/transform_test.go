package scene

import (
	"testing"

	"github.com/Faultbox/flver/pkg/math"
)

func TestParseConvention(t *testing.T) {
	tests := []struct {
		in   string
		want Convention
		ok   bool
	}{
		{"native", ConventionNative, true},
		{"yup", ConventionNative, true},
		{"y-up", ConventionNative, true},
		{"zup", ConventionZUp, true},
		{"z-up", ConventionZUp, true},
		{"target", ConventionZUp, true},
		{"sideways", ConventionNative, false},
		{"", ConventionNative, false},
	}
	for _, tt := range tests {
		got, ok := ParseConvention(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseConvention(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestConventionString(t *testing.T) {
	if ConventionNative.String() != "native" || ConventionZUp.String() != "z-up" {
		t.Error("convention names wrong")
	}
}

func TestPointSwap(t *testing.T) {
	p := [3]float32{1, 2, 3}

	if got := ConventionNative.Point(p); got != p {
		t.Errorf("native Point = %v, want unchanged", got)
	}
	if got := ConventionZUp.Point(p); got != [3]float32{1, 3, 2} {
		t.Errorf("z-up Point = %v, want (1,3,2)", got)
	}
}

// The axis swap is an involution: applying it twice must return the
// input exactly, with no floating point drift.
func TestPointInvolution(t *testing.T) {
	p := [3]float32{0.1, -2.7, 31.25}
	if got := ConventionZUp.Point(ConventionZUp.Point(p)); got != p {
		t.Errorf("double swap = %v, want %v", got, p)
	}
}

func TestTangentKeepsHandedness(t *testing.T) {
	tan := [4]float32{1, 2, 3, -1}
	got := ConventionZUp.Tangent(tan)
	if got != [4]float32{1, 3, 2, -1} {
		t.Errorf("Tangent = %v, want (1,3,2,-1)", got)
	}
}

func TestMatrixConvention(t *testing.T) {
	m := math.Translate(1, 2, 3)

	got := ConventionZUp.Matrix(m)
	want := math.Translate(1, 3, 2)
	if got != want {
		t.Errorf("Matrix = %v, want %v", got, want)
	}

	// Involution at the matrix level too.
	if back := ConventionZUp.Matrix(got); back != m {
		t.Errorf("double conversion = %v, want %v", back, m)
	}

	if native := ConventionNative.Matrix(m); native != m {
		t.Error("native Matrix must be identity operation")
	}
}
