package tensor

import (
	"fmt"
	"strings"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape []int

// NumElements returns the total number of elements for this shape.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i, dim := range s {
		if dim != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// String formats the shape as [d0, d1, ...].
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprintf("%d", dim)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
