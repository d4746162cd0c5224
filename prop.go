package lambert

import (
	"fmt"
	"math"

	"github.com/ChristopherRabotin/ode"
)

// twoBody integrates the Keplerian motion of a state [R, V] and implements ode.Integrable.
type twoBody struct {
	μ            float64
	state        []float64
	steps, taken int
}

// GetState returns the state for the integrator.
func (tb *twoBody) GetState() []float64 {
	s := make([]float64, len(tb.state))
	copy(s, tb.state)
	return s
}

// SetState sets the updated state.
func (tb *twoBody) SetState(t float64, s []float64) {
	tb.state = s
	tb.taken++
}

// Stop implements the stop call of the integrator: it stops after the planned number of steps,
// which avoids accumulating the step size in floating point.
func (tb *twoBody) Stop(t float64) bool {
	return tb.taken >= tb.steps
}

// reverse negates the velocity of the state.
func (tb *twoBody) reverse() {
	for i := 3; i < 6; i++ {
		tb.state[i] = -tb.state[i]
	}
}

// Func is the two body equation of motion.
func (tb *twoBody) Func(t float64, f []float64) (fDot []float64) {
	fDot = make([]float64, 6)
	r := norm(f[:3])
	r3 := r * r * r
	for i := 0; i < 3; i++ {
		fDot[i] = f[i+3]
		fDot[i+3] = -tb.μ * f[i] / r3
	}
	return
}

// Propagate integrates the two body motion of (R, V) around a body of gravitational parameter gm
// for dt seconds with RK4 steps no longer than step seconds. A negative dt integrates the
// time-reversed motion, i.e. starts from -V, and negates the final velocity back.
// It is independent of the Lambert solver and is used to check its solutions.
func Propagate(gm float64, R, V []float64, dt, step float64) (Rf, Vf []float64, err error) {
	if len(R) != 3 || len(V) != 3 {
		return nil, nil, fmt.Errorf("%w: R and V must be 3-vectors", ErrInvalidInput)
	}
	if !isFinite(gm, dt, step) || !isFinite(R...) || !isFinite(V...) || gm <= 0 || step <= 0 {
		return nil, nil, fmt.Errorf("%w: gm=%g dt=%g step=%g", ErrInvalidInput, gm, dt, step)
	}
	if isNull(R) {
		return nil, nil, fmt.Errorf("%w: null position vector", ErrInvalidInput)
	}
	tb := &twoBody{μ: gm, state: append(append([]float64{}, R...), V...)}
	if dt < 0 {
		tb.reverse()
	}
	if dt != 0 {
		tb.steps = int(math.Ceil(math.Abs(dt) / step))
		ode.NewRK4(0, math.Abs(dt)/float64(tb.steps), tb).Solve() // Blocking.
	}
	if dt < 0 {
		tb.reverse()
	}
	return []float64{tb.state[0], tb.state[1], tb.state[2]}, []float64{tb.state[3], tb.state[4], tb.state[5]}, nil
}
