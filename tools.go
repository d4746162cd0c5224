package lambert

import (
	"math"
	"time"

	"github.com/gonum/matrix/mat64"
)

// Hohmann computes an Hohmann transfer. It returns the departure and arrival velocities, and the time of flight.
// To get final computations:
// ΔvInit = vDepature - vI
// ΔvFinal = vArrival - vF
func Hohmann(rI, rF float64, body CelestialObject) (vDeparture, vArrival float64, tof time.Duration) {
	aTransfer := 0.5 * (rI + rF)
	vDeparture = math.Sqrt((2 * body.GM() / rI) - (body.GM() / aTransfer))
	vArrival = math.Sqrt((2 * body.GM() / rF) - (body.GM() / aTransfer))
	tof = time.Duration(math.Pi * math.Sqrt(math.Pow(aTransfer, 3)/body.GM()) * float64(time.Second))
	return
}

// Maneuver is an impulsive two-burn transfer between two states.
type Maneuver struct {
	Vi, Vf                 []float64 // transfer velocity after departure and before arrival
	ΔvDeparture, ΔvArrival []float64 // Vi - V1 and V2 - Vf
	TOF                    float64   // seconds
	Revolutions            int
}

// Δv returns the total Δv magnitude of both burns.
func (m Maneuver) Δv() float64 {
	return norm(m.ΔvDeparture) + norm(m.ΔvArrival)
}

// C3 returns the characteristic energy of the departure, i.e. the square of the hyperbolic
// excess velocity when V1 is the velocity of the departure planet.
func (m Maneuver) C3() float64 {
	vInf := norm(m.ΔvDeparture)
	return vInf * vInf
}

// VInfArrival returns the hyperbolic excess velocity at arrival when V2 is the velocity of the
// arrival planet.
func (m Maneuver) VInfArrival() float64 {
	return norm(m.ΔvArrival)
}

// TransferOrbit returns the conic followed between both burns, as seen at departure.
func (m Maneuver) TransferOrbit(R1 []float64, body CelestialObject) *Orbit {
	return NewOrbitFromRV(R1, m.Vi, body)
}

// Transfer computes the Lambert maneuver from (R1, V1) to (R2, V2) around the given body.
// The sign of tof and nrev are handled as in Solve.
func Transfer(body CelestialObject, R1, V1, R2, V2 []float64, tof float64, nrev int) (Maneuver, error) {
	ms, err := TransferAll(body, R1, V1, R2, V2, tof, nrev)
	if err != nil {
		return Maneuver{}, err
	}
	return Preferred(ms), nil
}

// TransferAll is like Transfer but returns one maneuver per solution of SolveAll, in the same order.
func TransferAll(body CelestialObject, R1, V1, R2, V2 []float64, tof float64, nrev int) ([]Maneuver, error) {
	sols, err := SolveAll(body.GM(), toVector(R1), toVector(V1), toVector(R2), toVector(V2), tof, nrev)
	if err != nil {
		return nil, err
	}
	ms := make([]Maneuver, len(sols))
	for i, sol := range sols {
		m := Maneuver{Vi: vec2slice(sol.Vi), Vf: vec2slice(sol.Vf), TOF: math.Abs(tof), Revolutions: nrev}
		m.ΔvDeparture = m.Vi
		if V1 != nil {
			m.ΔvDeparture = combine(1, m.Vi, -1, V1)
		}
		m.ΔvArrival = scale(-1, m.Vf)
		if V2 != nil {
			m.ΔvArrival = combine(1, V2, -1, m.Vf)
		}
		ms[i] = m
	}
	return ms, nil
}

// Preferred returns the maneuver Transfer picks among those of TransferAll: the second one for
// a positive revolution count when there are two, the first one otherwise.
func Preferred(ms []Maneuver) Maneuver {
	return ms[branch(len(ms), ms[0].Revolutions)]
}

// toVector wraps a 3-slice into a mat64.Vector; nil stays nil and the wrong sizes are left to Solve.
func toVector(v []float64) *mat64.Vector {
	if len(v) == 0 {
		return nil
	}
	return mat64.NewVector(len(v), v)
}
