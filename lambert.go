package lambert

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

// Solution is one branch of a Lambert transfer: the velocity right after departure and
// right before arrival.
type Solution struct {
	Vi, Vf *mat64.Vector
}

// geometry is the transfer plane and angle built from the position vectors.
type geometry struct {
	r1, r2   float64
	θ        float64   // transfer angle, including 2π per complete revolution
	ux1, uy1 []float64 // radial and transverse unit vectors at departure
	ux2, uy2 []float64 // radial and transverse unit vectors at arrival
}

// newGeometry determines the transfer plane and angle. The sign of tof selects whether the transfer
// follows the direction of motion given by R1×V1 (positive) or goes against it (negative).
// R1×V1, then R2×V2, also provide the plane when R1 and R2 are collinear.
func newGeometry(R1, V1, R2, V2 []float64, tof float64, nrev int) (g geometry, err error) {
	g.r1 = norm(R1)
	g.r2 = norm(R2)
	g.ux1 = unit(R1)
	g.ux2 = unit(R2)
	h := unit(cross(R1, V1))

	uz := cross(g.ux1, g.ux2)
	if isNull(uz) {
		uz = h
		if isNull(uz) {
			uz = cross(R2, V2)
		}
		if isNull(uz) {
			return g, fmt.Errorf("%w: collinear positions and no velocity to define the transfer plane", ErrInvalidInput)
		}
	}
	uz = unit(uz)

	g.θ = math.Acos(clamp(dot(g.ux1, g.ux2), -1, 1))
	angleToNormal := math.Acos(clamp(dot(h, uz), -1, 1))
	if (angleToNormal > math.Pi/2 && tof > 0) || (angleToNormal < math.Pi/2 && tof < 0) {
		g.θ = 2*math.Pi - g.θ
		uz = scale(-1, uz)
	}
	g.uy1 = unit(cross(uz, g.ux1))
	g.uy2 = unit(cross(uz, g.ux2))
	g.θ += 2 * math.Pi * math.Abs(float64(nrev))
	return g, nil
}

// solution assembles the inertial velocity vectors from the radial and tangential components.
func (g geometry) solution(rt radialTangential) Solution {
	return Solution{
		Vi: mat64.NewVector(3, combine(rt.VR1, g.ux1, rt.VT1, g.uy1)),
		Vf: mat64.NewVector(3, combine(rt.VR2, g.ux2, rt.VT2, g.uy2)),
	}
}

// Solve solves Lambert's problem with Gooding's method: it returns the velocity vectors at R1 and
// R2 of the conic around a body of gravitational parameter gm going from R1 to R2 in |tof|.
//
// V1 orients the transfer: a positive tof follows the direction of motion of R1×V1 and a
// negative tof goes the other way. When V1 is nil or parallel to R1 there is no direction of
// motion and the sign of tof is ignored: the transfer goes the short way around R1×R2, or around
// R2×V2 when R1 and R2 are collinear. V2 is only used to orient the plane in that last case.
// nrev is the number of complete revolutions. When two multi-revolution solutions exist, a
// positive nrev returns the high path and a negative one the low path.
//
// The departure Δv is Vi - V1 and the arrival Δv is V2 - Vf.
func Solve(gm float64, R1, V1, R2, V2 *mat64.Vector, tof float64, nrev int) (Vi, Vf *mat64.Vector, err error) {
	sols, err := SolveAll(gm, R1, V1, R2, V2, tof, nrev)
	if err != nil {
		return nil, nil, err
	}
	sol := sols[branch(len(sols), nrev)]
	return sol.Vi, sol.Vf, nil
}

// branch returns the index of the solution Solve picks among n.
func branch(n, nrev int) int {
	if nrev > 0 && n > 1 {
		return 1
	}
	return 0
}

// SolveAll is like Solve but returns every solution found: one for zero revolution transfers, one or
// two otherwise. The first one is the branch Solve returns for a negative nrev.
func SolveAll(gm float64, R1, V1, R2, V2 *mat64.Vector, tof float64, nrev int) ([]Solution, error) {
	if tof == 0 {
		return nil, ErrZeroTimeOfFlight
	}
	if !is3x1(R1) || !is3x1(R2) {
		return nil, fmt.Errorf("%w: initial and final radii must be 3x1 vectors", ErrInvalidInput)
	}
	r1, r2 := vec2slice(R1), vec2slice(R2)
	v1, v2 := []float64{0, 0, 0}, []float64{0, 0, 0}
	if V1 != nil {
		if !is3x1(V1) {
			return nil, fmt.Errorf("%w: initial velocity must be a 3x1 vector", ErrInvalidInput)
		}
		v1 = vec2slice(V1)
	}
	if V2 != nil {
		if !is3x1(V2) {
			return nil, fmt.Errorf("%w: final velocity must be a 3x1 vector", ErrInvalidInput)
		}
		v2 = vec2slice(V2)
	}
	if !isFinite(gm, tof) || !isFinite(r1...) || !isFinite(r2...) || !isFinite(v1...) || !isFinite(v2...) {
		return nil, fmt.Errorf("%w: non finite value", ErrInvalidInput)
	}
	if gm <= 0 {
		return nil, fmt.Errorf("%w: gravitational parameter must be positive (got %g)", ErrInvalidInput, gm)
	}
	if isNull(r1) || isNull(r2) {
		return nil, fmt.Errorf("%w: null position vector", ErrInvalidInput)
	}

	g, err := newGeometry(r1, v1, r2, v2, tof, nrev)
	if err != nil {
		return nil, err
	}
	red := reduce(gm, g.r1, g.r2, g.θ, math.Abs(tof))
	switch red.n {
	case -1:
		return nil, fmt.Errorf("%w (nrev=%d, tof=%g)", ErrNoMinimumTime, nrev, tof)
	case 0:
		return nil, fmt.Errorf("%w (nrev=%d, tof=%g)", ErrNoSolution, nrev, tof)
	}
	sols := make([]Solution, red.n)
	for i := range sols {
		sols[i] = g.solution(red.pairs[i])
	}
	return sols, nil
}
