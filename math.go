package lambert

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const (
	deg2rad = math.Pi / 180
	// zeroε is the norm below which a vector is considered null.
	zeroε = 1e-12
)

// norm returns the norm of a given vector which is supposed to be 3x1.
func norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// unit returns the unit vector of a given vector, or the null vector if a is null.
func unit(a []float64) (b []float64) {
	n := norm(a)
	if floats.EqualWithinAbs(n, 0, zeroε) {
		return []float64{0, 0, 0}
	}
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return
}

// isNull returns whether the vector is (numerically) null.
func isNull(a []float64) bool {
	return floats.EqualWithinAbs(norm(a), 0, zeroε)
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if floats.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// dot performs the inner product.
func dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// cross performs the cross product.
func cross(a, b []float64) []float64 {
	return []float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]}
}

// scale returns s*a as a new slice.
func scale(s float64, a []float64) []float64 {
	b := make([]float64, len(a))
	copy(b, a)
	floats.Scale(s, b)
	return b
}

// combine returns α*a + β*b.
func combine(α float64, a []float64, β float64, b []float64) []float64 {
	c := scale(α, a)
	floats.AddScaled(c, β, b)
	return c
}

// isFinite returns whether none of the values is NaN or infinite.
func isFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// vec2slice copies a 3x1 mat64.Vector into a slice.
func vec2slice(v *mat64.Vector) []float64 {
	return []float64{v.At(0, 0), v.At(1, 0), v.At(2, 0)}
}

// is3x1 returns whether the vector is a non nil 3x1 vector.
func is3x1(v *mat64.Vector) bool {
	if v == nil {
		return false
	}
	r, c := v.Dims()
	return r == 3 && c == 1
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}
