package lambert

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gonum/floats"
	"github.com/soniakeys/meeus/v3/kepler"
	sunit "github.com/soniakeys/unit"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 1e-5                         // relative
	keplerPlaces  = 14                           // decimal places of the eccentric anomaly
	hyperbolicε   = 1e-14
	maxKeplerIter = 50
)

// Orbit defines a conic via its orbital elements. The semi-parameter is used instead of the
// semi-major axis so that parabolas are supported.
type Orbit struct {
	p, e, i, Ω, ω, ν float64
	Origin           CelestialObject // Orbit origin
}

// NewOrbitFromOE creates an orbit from the orbital elements.
// WARNING: Angles must be in degrees not radian.
func NewOrbitFromOE(a, e, i, Ω, ω, ν float64, c CelestialObject) *Orbit {
	if e == 1 {
		panic("parabolic orbits have no semi major axis, use NewOrbitFromSemiParameter")
	}
	return NewOrbitFromSemiParameter(a*(1-e*e), e, i, Ω, ω, ν, c)
}

// NewOrbitFromSemiParameter creates an orbit from the semi-parameter and the other orbital elements.
// WARNING: Angles must be in degrees not radian.
func NewOrbitFromSemiParameter(p, e, i, Ω, ω, ν float64, c CelestialObject) *Orbit {
	return &Orbit{p, e, Deg2rad(i), Deg2rad(Ω), Deg2rad(ω), Deg2rad(ν), c}
}

// NewOrbitFromRV returns orbital elements from the R and V vectors.
func NewOrbitFromRV(R, V []float64, c CelestialObject) *Orbit {
	// From Vallado's RV2COE, page 113
	hVec := cross(R, V)
	h := norm(hVec)
	n := cross([]float64{0, 0, 1}, hVec)
	v := norm(V)
	r := norm(R)
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-c.μ/r)*R[i] - dot(R, V)*V[i]) / c.μ
	}
	e := norm(eVec)
	i := math.Acos(clamp(hVec[2]/h, -1, 1))
	var Ω, ω, ν float64
	equatorial := norm(n) < angleε*h
	if !equatorial {
		Ω = math.Acos(clamp(n[0]/norm(n), -1, 1))
		if n[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
	}
	switch {
	case e < eccentricityε && equatorial:
		// Circular equatorial: ν is the true longitude.
		ν = math.Atan2(R[1], R[0])
		if hVec[2] < 0 {
			ν = -ν
		}
	case e < eccentricityε:
		// Circular inclined: ν is the argument of latitude.
		ν = math.Acos(clamp(dot(n, R)/(norm(n)*r), -1, 1))
		if R[2] < 0 {
			ν = 2*math.Pi - ν
		}
	default:
		if equatorial {
			ω = math.Atan2(eVec[1], eVec[0])
			if hVec[2] < 0 {
				ω = -ω
			}
		} else {
			ω = math.Acos(clamp(dot(n, eVec)/(norm(n)*e), -1, 1))
			if eVec[2] < 0 {
				ω = 2*math.Pi - ω
			}
		}
		ν = math.Acos(clamp(dot(eVec, R)/(e*r), -1, 1))
		if dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
	}
	return &Orbit{h * h / c.μ, e, wrap2π(i), wrap2π(Ω), wrap2π(ω), wrap2π(ν), c}
}

// SemiParameter returns the semi-parameter (semi-latus rectum).
func (o Orbit) SemiParameter() float64 {
	return o.p
}

// Eccentricity returns the eccentricity.
func (o Orbit) Eccentricity() float64 {
	return o.e
}

// SemiMajorAxis returns the semi major axis, which is negative for hyperbolas and infinite for parabolas.
func (o Orbit) SemiMajorAxis() float64 {
	if o.e == 1 {
		return math.Inf(1)
	}
	return o.p / (1 - o.e*o.e)
}

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	return -o.Origin.μ * (1 - o.e*o.e) / (2 * o.p)
}

// Period returns the period of this orbit, or zero if it is open.
func (o Orbit) Period() time.Duration {
	if o.e >= 1 {
		return 0
	}
	seconds := 2 * math.Pi * math.Sqrt(math.Pow(o.SemiMajorAxis(), 3)/o.Origin.μ)
	return time.Duration(seconds * float64(time.Second))
}

// RNorm returns the norm of the radius vector, but without computing the radius vector.
func (o Orbit) RNorm() float64 {
	return o.p / (1 + o.e*math.Cos(o.ν))
}

// RV returns the radius and velocity vectors in the inertial frame.
func (o Orbit) RV() (R, V []float64) {
	sinν, cosν := math.Sincos(o.ν)
	r := o.RNorm()
	vScale := math.Sqrt(o.Origin.μ / o.p)
	R = PQW2ECI(o.i, o.ω, o.Ω, []float64{r * cosν, r * sinν, 0})
	V = PQW2ECI(o.i, o.ω, o.Ω, []float64{-vScale * sinν, vScale * (o.e + cosν), 0})
	return
}

// Elements returns the orbital elements, with angles in radians.
func (o Orbit) Elements() (p, e, i, Ω, ω, ν float64) {
	return o.p, o.e, o.i, o.Ω, o.ω, o.ν
}

// TimeSincePeriapsis returns the time in seconds since the last periapsis passage, which is
// negative on the inbound leg of open orbits. For closed orbits it is within half a period.
func (o Orbit) TimeSincePeriapsis() float64 {
	μ := o.Origin.μ
	ν := wrapπ(o.ν)
	switch {
	case o.e < 1:
		a := o.SemiMajorAxis()
		E := 2 * math.Atan2(math.Sqrt(1-o.e)*math.Sin(ν/2), math.Sqrt(1+o.e)*math.Cos(ν/2))
		return math.Sqrt(a*a*a/μ) * (E - o.e*math.Sin(E))
	case o.e == 1:
		D := math.Tan(ν / 2)
		return 0.5 * math.Sqrt(o.p*o.p*o.p/μ) * (D + D*D*D/3)
	default:
		a := -o.SemiMajorAxis()
		H := 2 * math.Atanh(math.Sqrt((o.e-1)/(o.e+1))*math.Tan(ν/2))
		return math.Sqrt(a*a*a/μ) * (o.e*math.Sinh(H) - H)
	}
}

// After returns this orbit dt seconds later, solving Kepler's equation for the new true anomaly.
func (o Orbit) After(dt float64) (*Orbit, error) {
	μ := o.Origin.μ
	t := o.TimeSincePeriapsis() + dt
	next := o
	switch {
	case o.e < 1:
		a := o.SemiMajorAxis()
		M := wrap2π(t * math.Sqrt(μ/(a*a*a)))
		E := M
		if o.e > 0 {
			Ea, err := kepler.Kepler2b(o.e, sunit.Angle(M), keplerPlaces)
			if err != nil {
				// Slow start of Newton's method for high eccentricities and small M.
				Ea = kepler.Kepler3(o.e, sunit.Angle(M))
			}
			E = Ea.Rad()
		}
		next.ν = 2 * math.Atan2(math.Sqrt(1+o.e)*math.Sin(E/2), math.Sqrt(1-o.e)*math.Cos(E/2))
	case o.e == 1:
		// Barker's equation.
		B := 3 * t * math.Sqrt(μ/(o.p*o.p*o.p))
		r := math.Sqrt(B*B + 1)
		D := math.Cbrt(B+r) - math.Cbrt(r-B)
		next.ν = 2 * math.Atan(D)
	default:
		a := -o.SemiMajorAxis()
		H, err := hyperbolicAnomaly(o.e, t*math.Sqrt(μ/(a*a*a)))
		if err != nil {
			return nil, err
		}
		next.ν = 2 * math.Atan(math.Sqrt((o.e+1)/(o.e-1))*math.Tanh(H/2))
	}
	next.ν = wrap2π(next.ν)
	return &next, nil
}

// hyperbolicAnomaly solves N = e·sinh(H) - H with Newton-Raphson.
func hyperbolicAnomaly(e, N float64) (float64, error) {
	H := sign(N) * math.Log(2*math.Abs(N)/e+1.8)
	for i := 0; i < maxKeplerIter; i++ {
		δ := (e*math.Sinh(H) - H - N) / (e*math.Cosh(H) - 1)
		H -= δ
		if math.Abs(δ) <= hyperbolicε*math.Max(1, math.Abs(H)) {
			return H, nil
		}
	}
	return H, errors.New("hyperbolic Kepler equation did not converge")
}

// String implements the stringer interface (hence the value receiver)
func (o Orbit) String() string {
	return fmt.Sprintf("p=%.1f e=%.4f i=%.3f Ω=%.3f ω=%.3f ν=%.3f", o.p, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ω), Rad2deg(o.ν))
}

// Equals returns whether two orbits are identical, true anomaly included.
func (o Orbit) Equals(o1 Orbit) (bool, error) {
	if !o.Origin.Equals(o1.Origin) {
		return false, errors.New("different origin")
	}
	if !floats.EqualWithinRel(o.p, o1.p, distanceε) {
		return false, errors.New("semi parameter invalid")
	}
	if !floats.EqualWithinAbs(o.e, o1.e, eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	if !anglesClose(o.i, o1.i) {
		return false, errors.New("inclination invalid")
	}
	if !anglesClose(o.Ω, o1.Ω) {
		return false, errors.New("RAAN invalid")
	}
	if !anglesClose(o.ω+o.ν, o1.ω+o1.ν) {
		return false, errors.New("argument of latitude invalid")
	}
	if o.e > eccentricityε && !anglesClose(o.ν, o1.ν) {
		return false, errors.New("true anomaly invalid")
	}
	return true, nil
}

// anglesClose returns whether two angles in radians are within angleε of each other.
func anglesClose(a, b float64) bool {
	d := math.Abs(wrapπ(a - b))
	return d < angleε
}

// wrap2π wraps an angle to [0, 2π).
func wrap2π(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// wrapπ wraps an angle to [-π, π).
func wrapπ(a float64) float64 {
	return wrap2π(a+math.Pi) - math.Pi
}

// Radii2ae returns the semi major axis and the eccentricty from the radii.
func Radii2ae(rA, rP float64) (a, e float64) {
	if rA < rP {
		panic("periapsis cannot be greater than apoapsis")
	}
	a = (rP + rA) / 2
	e = (rA - rP) / (rA + rP)
	return
}
