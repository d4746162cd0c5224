package lambert

import "math"

const (
	// seriesSwitch is the |1-x²| threshold below which T(x) is summed as a series,
	// and the value of F above which the hyperbolic angle is computed with a logarithm.
	seriesSwitch = 0.4
	// maxSeriesTerms caps the fixed-point loops which otherwise only stop when the
	// partial sum no longer changes, e.g. never on NaN input.
	maxSeriesTerms = 100
	// velocityTerms requests the three terms used to rebuild the velocity components instead of T.
	velocityTerms = -1
)

// timeOfFlight returns the normalized time of flight T(x) and up to `order` of its derivatives
// with respect to x, for m complete revolutions.
// When order is velocityTerms, T is not computed and the three derivative slots instead hold
// the auxiliary terms from which reduce builds the radial and tangential velocities.
func timeOfFlight(m int, q, qsqfm1, x float64, order int) (t, dt, d2t, d3t float64) {
	lm1 := order == velocityTerms
	l1 := order >= 1
	l2 := order >= 2
	l3 := order == 3
	qsq := q * q
	xsq := x * x
	u := (1 - x) * (1 + x)

	if !(lm1 || m > 0 || x < 0 || math.Abs(u) > seriesSwitch) {
		return timeOfFlightSeries(q, qsqfm1, x, u, order)
	}

	// Direct computation.
	y := math.Sqrt(math.Abs(u))
	z := math.Sqrt(qsqfm1 + qsq*xsq)
	qx := q * x
	var a, b, aa, bb float64
	if qx <= 0 {
		a = z - qx
		b = q*z - x
	}
	if qx < 0 && lm1 {
		aa = qsqfm1 / a
		bb = qsqfm1 * (qsq*u - xsq) / b
	}
	if (qx == 0 && lm1) || qx > 0 {
		aa = z + qx
		bb = q*z + x
	}
	if qx > 0 {
		a = qsqfm1 / aa
		b = qsqfm1 * (qsq*u - xsq) / bb
	}
	if lm1 {
		return 0, b, bb, aa
	}

	var g float64
	if qx*u >= 0 {
		g = x*z + q*u
	} else {
		g = (xsq - qsq*u) / (x*z - q*u)
	}
	f := a * y
	if x <= 1 {
		t = float64(m)*math.Pi + math.Atan2(f, g)
	} else if f > seriesSwitch {
		t = math.Log(f + g)
	} else {
		t = atanhSeries(f / (g + 1))
	}
	t = 2 * (t/y + b) / u
	if l1 && z != 0 {
		qz := q / z
		qz2 := qz * qz
		qz *= qz2
		dt = (3*x*t - 4*(a+qx*qsqfm1)/z) / u
		if l2 {
			d2t = (3*t + 5*x*dt + 4*qz*qsqfm1) / u
		}
		if l3 {
			d3t = (8*dt + 7*x*d2t - 12*qz*qz2*x*qsqfm1) / u
		}
	}
	return
}

// atanhSeries returns 2·atanh(fg1) by summing its odd power series until the sum is stable.
func atanhSeries(fg1 float64) float64 {
	term := 2 * fg1
	fg1sq := fg1 * fg1
	sum := term
	twoi1 := 1.0
	for i := 0; i < maxSeriesTerms; i++ {
		twoi1 += 2
		term *= fg1sq
		prev := sum
		sum += term / twoi1
		if sum == prev {
			break
		}
	}
	return sum
}

// timeOfFlightSeries sums T(x) and its derivatives as series in u = 1-x², which avoids the
// cancellation of the direct formulas close to the parabola (x = 1).
func timeOfFlightSeries(q, qsqfm1, x, u float64, order int) (t, dt, d2t, d3t float64) {
	l1 := order >= 1
	l2 := order >= 2
	l3 := order == 3
	qsq := q * q
	xsq := x * x

	u0i, u1i, u2i, u3i := 1.0, 1.0, 1.0, 1.0
	term := 4.0
	tq := q * qsqfm1
	var tqsum float64
	if q < 0.5 {
		tqsum = 1 - q*qsq
	} else {
		tqsum = (1/(1+q) + q) * qsqfm1
	}
	ttmold := term / 3
	t = ttmold * tqsum
	for i := 1; i <= maxSeriesTerms; i++ {
		p := float64(i)
		u0i *= u
		if l1 && i > 1 {
			u1i *= u
		}
		if l2 && i > 2 {
			u2i *= u
		}
		if l3 && i > 3 {
			u3i *= u
		}
		term *= (p - 0.5) / p
		tq *= qsq
		tqsum += tq
		prev := t
		tterm := term / (2*p + 3)
		tqterm := tterm * tqsum
		t -= u0i * ((1.5*p+0.25)*tqterm/(p*p-0.25) - ttmold*tq)
		ttmold = tterm
		tqterm *= p
		if l1 {
			dt += tqterm * u1i
		}
		if l2 {
			d2t += tqterm * u2i * (p - 1)
		}
		if l3 {
			d3t += tqterm * u3i * (p - 1) * (p - 2)
		}
		if i >= order && t == prev {
			break
		}
	}
	if l3 {
		d3t = 8 * x * (1.5*d2t - xsq*d3t)
	}
	if l2 {
		d2t = 2 * (2*xsq*d2t - dt)
	}
	if l1 {
		dt = -2 * x * dt
	}
	t /= xsq
	return
}
