package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/flver/pkg/flver"
	"github.com/Faultbox/flver/pkg/math"
)

// Scene graph errors.
var (
	ErrCyclicSkeleton      = errors.New("cyclic skeleton hierarchy")
	ErrBoneIndexOutOfRange = errors.New("bone index out of range")
)

// Bone is one node of the reconstructed skeleton. The skeleton owns
// all bones in a flat slice; parent/child relations are plain indices,
// with -1 meaning none. Index is the canonical bone identity (names
// may repeat across a table).
type Bone struct {
	Name        string
	ParentIndex int
	Children    []int

	Translation math.Vec3
	Rotation    math.Vec3 // Euler radians, Y, Z, X order
	Scale       math.Vec3

	// Local is the bone's transform relative to its parent; World is
	// Local composed with every ancestor's, already in the selected
	// coordinate convention.
	Local math.Mat4
	World math.Mat4
}

// Skeleton is the rooted forest reconstructed from a bone table.
type Skeleton struct {
	Bones []Bone
	Roots []int
}

// BuildSkeleton converts a flat bone table into a hierarchy with
// resolved world transforms. The composition pass runs in topological
// order derived from the parent links, never assuming that parents
// precede children in the table, and is iterative so a malformed
// parent cycle is reported as ErrCyclicSkeleton instead of exhausting
// the stack.
func BuildSkeleton(bones []flver.Bone, conv Convention) (*Skeleton, error) {
	sk := &Skeleton{Bones: make([]Bone, len(bones))}

	for i, fb := range bones {
		parent := int(fb.ParentIndex)
		if parent != -1 && (parent < 0 || parent >= len(bones)) {
			return nil, fmt.Errorf("%w: bone %d parent %d (table has %d bones)",
				ErrBoneIndexOutOfRange, i, parent, len(bones))
		}

		b := &sk.Bones[i]
		b.Name = fb.Name
		b.ParentIndex = parent
		b.Translation = math.FromArray(fb.Translation)
		b.Rotation = math.FromArray(fb.Rotation)
		b.Scale = math.FromArray(fb.Scale)
		b.Local = math.FromTRS(b.Translation, b.Rotation, b.Scale)

		if parent == -1 {
			sk.Roots = append(sk.Roots, i)
		} else {
			sk.Bones[parent].Children = append(sk.Bones[parent].Children, i)
		}
	}

	order, err := topoOrder(sk.Bones)
	if err != nil {
		return nil, err
	}

	for _, i := range order {
		b := &sk.Bones[i]
		if b.ParentIndex == -1 {
			b.World = b.Local
		} else {
			b.World = sk.Bones[b.ParentIndex].World.Mul(b.Local)
		}
	}

	if conv != ConventionNative {
		for i := range sk.Bones {
			b := &sk.Bones[i]
			b.Local = conv.Matrix(b.Local)
			b.World = conv.Matrix(b.World)
			b.Translation = math.FromArray(conv.Point(b.Translation.Array()))
		}
	}

	return sk, nil
}

// topoOrder returns bone indices ordered so that every bone follows
// its parent. Bones left unvisited after the breadth-first walk from
// the roots are necessarily on a parent cycle.
func topoOrder(bones []Bone) ([]int, error) {
	order := make([]int, 0, len(bones))
	queue := make([]int, 0, len(bones))
	visited := make([]bool, len(bones))

	for i := range bones {
		if bones[i].ParentIndex == -1 {
			queue = append(queue, i)
			visited[i] = true
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)

		for _, child := range bones[i].Children {
			if !visited[child] {
				visited[child] = true
				queue = append(queue, child)
			}
		}
	}

	if len(order) != len(bones) {
		for i := range bones {
			if !visited[i] {
				return nil, fmt.Errorf("%w: bone %d is not reachable from any root",
					ErrCyclicSkeleton, i)
			}
		}
	}
	return order, nil
}
