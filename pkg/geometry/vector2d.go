package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used by Eq for float64 comparisons.
const (
	Epsilon = 1e-9
)

// Vector2D represents a 2D vector or point in normalized device space.
// Fields are public because they are plain data: v := Vector2D{X: 1, Y: 2}
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero is the null vector.
var Zero = Vector2D{}

// NewVector creates a new Vector2D.
func NewVector(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// String implements the fmt.Stringer interface.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers, new values returned: a Vector2D is never shared.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{v.X + other.X, v.Y + other.Y}
}

// Sub subtracts the other vector from the current vector.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{v.X - other.X, v.Y - other.Y}
}

// Mul scales the vector by a scalar value.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{v.X * scalar, v.Y * scalar}
}

// Mean divides an accumulated sum by count.
// A zero count yields the zero vector instead of a non-finite one.
func (v Vector2D) Mean(count int) Vector2D {
	if count <= 0 {
		return Zero
	}
	return Vector2D{v.X / float64(count), v.Y / float64(count)}
}

// Dot calculates the dot product of two vectors.
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len calculates the magnitude (length) of the vector.
func (v Vector2D) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns a unit vector in the same direction.
// Returns the zero vector if the length is zero.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l == 0 {
		return Zero
	}
	return Vector2D{v.X / l, v.Y / l}
}

// Limit rescales v to exactly max when its length exceeds max,
// preserving direction. Shorter vectors are returned unchanged.
func (v Vector2D) Limit(max float64) Vector2D {
	l := v.Len()
	if l > max {
		return Vector2D{(v.X / l) * max, (v.Y / l) * max}
	}
	return v
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector2D) DistanceTo(other Vector2D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return v.Sub(other).LenSqr()
}

// Heading returns atan2(X, Y): the clockwise angle from the +Y axis.
// The swapped arguments match the rotation the agent triangle is drawn with.
func (v Vector2D) Heading() float64 {
	return math.Atan2(v.X, v.Y)
}

// Rotate rotates the vector clockwise by angle (in radians) around the origin.
// A vector pointing up (+Y) rotated by v.Heading() points along v.
func (v Vector2D) Rotate(angle float64) Vector2D {
	cosTheta := math.Cos(angle)
	sinTheta := math.Sin(angle)
	return Vector2D{
		X: v.X*cosTheta + v.Y*sinTheta,
		Y: -v.X*sinTheta + v.Y*cosTheta,
	}
}

// Lerp (Linear Interpolate) calculates a point between v and target based on t [0, 1].
func (v Vector2D) Lerp(target Vector2D, t float64) Vector2D {
	return v.Add(target.Sub(v).Mul(t))
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector2D) Eq(other Vector2D) bool {
	return math.Abs(v.X-other.X) <= Epsilon && math.Abs(v.Y-other.Y) <= Epsilon
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// InBounds reports whether both components lie in [-limit, limit].
func (v Vector2D) InBounds(limit float64) bool {
	return v.X >= -limit && v.X <= limit && v.Y >= -limit && v.Y <= limit
}
