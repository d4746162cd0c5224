package lambert

import (
	"fmt"
	"math"
)

// radialTangential holds the radial and tangential velocity components at both ends of a transfer.
type radialTangential struct {
	VR1, VT1 float64 // departure
	VR2, VT2 float64 // arrival
}

// reduction is the outcome of a dimensionless solve: n as in rootSet and one
// radialTangential per root, in the order x1, x2.
type reduction struct {
	n     int
	pairs [2]radialTangential
}

// problem is the dimensionless form of a Lambert problem.
type problem struct {
	m         int     // complete revolutions
	q, qsqfm1 float64 // shape parameter and 1 - q²
	gms       float64 // sqrt(GM·s/2)
	ρ, σ      float64 // (r1-r2)/c and 4·r1·r2·sin²(θ/2)/c²
	s         float64 // semi-perimeter
}

// newProblem normalizes the transfer geometry. theta includes 2π per complete revolution.
func newProblem(gm, r1, r2, theta float64) problem {
	m := int(math.Floor(theta / (2 * math.Pi)))
	thr2 := theta/2 - float64(m)*math.Pi
	dr := r1 - r2
	r1r2 := r1 * r2
	sinthr2 := math.Sin(thr2)
	r1r2th := 4 * r1r2 * sinthr2 * sinthr2
	csq := dr*dr + r1r2th
	c := math.Sqrt(csq)
	s := (r1 + r2 + c) / 2
	p := problem{
		m:      m,
		q:      math.Sqrt(r1r2) * math.Cos(thr2) / s,
		qsqfm1: c / s,
		gms:    math.Sqrt(gm * s / 2),
		s:      s,
	}
	if c != 0 {
		p.ρ = dr / c
		p.σ = r1r2th / csq
	} else {
		// Null chord: both positions coincide.
		p.ρ = 0
		p.σ = 1
	}
	return p
}

// maxUlpSteps bounds the rounding correction of MinimumTimeOfFlight.
const maxUlpSteps = 64

// thr2 is half the transfer angle without the complete revolutions, in units of π.
func (p problem) thr2() float64 {
	return math.Atan2(p.qsqfm1, 2*p.q) / math.Pi
}

// normalizedTime converts a time of flight into T.
func (p problem) normalizedTime(tof float64) float64 {
	return 4 * p.gms * tof / (p.s * p.s)
}

// timeFor converts tof into T. With complete revolutions, the smallest tof whose T is not below
// T_min is mapped onto T_min itself: that tof is the minimum time of flight once rounded.
func (p problem) timeFor(tof float64) float64 {
	tin := p.normalizedTime(tof)
	if p.m == 0 {
		return tin
	}
	_, tmin, _, ok := locateTmin(p.m, p.q, p.qsqfm1, p.thr2())
	if ok && tin > tmin && p.normalizedTime(math.Nextafter(tof, 0)) < tmin {
		return tmin
	}
	return tin
}

// velocities rebuilds the velocity components at both radii for the root x.
func (p problem) velocities(r1, r2, x float64) radialTangential {
	_, qzminx, qzplx, zplqx := timeOfFlight(p.m, p.q, p.qsqfm1, x, velocityTerms)
	vt2 := p.gms * zplqx * math.Sqrt(p.σ)
	return radialTangential{
		VR1: p.gms * (qzminx - qzplx*p.ρ) / r1,
		VT1: vt2 / r1,
		VR2: -p.gms * (qzminx + qzplx*p.ρ) / r2,
		VT2: vt2 / r2,
	}
}

// reduce solves the planar Lambert problem between radii r1 and r2 separated by theta
// (which includes 2π per complete revolution) in a time tof.
func reduce(gm, r1, r2, theta, tof float64) reduction {
	p := newProblem(gm, r1, r2, theta)
	roots := findRoots(p.m, p.q, p.qsqfm1, p.timeFor(tof))
	red := reduction{n: roots.n}
	for i := 0; i < roots.n; i++ {
		x := roots.x1
		if i == 1 {
			x = roots.x2
		}
		red.pairs[i] = p.velocities(r1, r2, x)
	}
	return red
}

// MinimumTimeOfFlight returns the shortest time of flight between radii r1 and r2 separated by the
// transfer angle theta (in radians, including 2π per complete revolution). Zero-revolution
// transfers have no positive minimum and return 0.
// It is the smallest float64 time of flight reaching the minimum: Solve returns ErrNoSolution
// below it, a single solution at it and two above it, for the same revolution count.
func MinimumTimeOfFlight(gm, r1, r2, theta float64) (float64, error) {
	if !isFinite(gm, r1, r2, theta) || gm <= 0 || r1 <= 0 || r2 <= 0 || theta < 0 {
		return 0, fmt.Errorf("%w: gm=%g r1=%g r2=%g θ=%g", ErrInvalidInput, gm, r1, r2, theta)
	}
	p := newProblem(gm, r1, r2, theta)
	if p.m == 0 {
		return 0, nil
	}
	_, tmin, _, ok := locateTmin(p.m, p.q, p.qsqfm1, p.thr2())
	if !ok {
		return 0, ErrNoMinimumTime
	}
	tof := tmin * p.s * p.s / (4 * p.gms)
	for i := 0; i < maxUlpSteps && p.normalizedTime(tof) < tmin; i++ {
		tof = math.Nextafter(tof, math.Inf(1))
	}
	for i := 0; i < maxUlpSteps && p.normalizedTime(math.Nextafter(tof, 0)) >= tmin; i++ {
		tof = math.Nextafter(tof, 0)
	}
	return tof, nil
}
