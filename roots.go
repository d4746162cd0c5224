package lambert

import "math"

// Empirical starter coefficients and tolerance of Gooding's 1990 algorithm. They are tuned
// together with the exact form of the starter expressions below, so neither should be simplified.
const (
	c0  = 1.7
	c1  = 0.5
	c2  = 0.03
	c3  = 0.15
	c41 = 1.0
	c42 = 0.24

	tminTol          = 3e-7 // relative change in x ending the T_min search
	tminIterations   = 12
	halleyIterations = 3
)

// rootSet holds the solutions x of T(x) = T_in.
// n is -1 when T_min could not be located, 0 when T_in < T_min, otherwise the number of roots.
// x1 is the root refined last and x2, when n == 2, the first one found.
type rootSet struct {
	n      int
	x1, x2 float64
}

// findRoots solves T(x) = tin for m complete revolutions.
func findRoots(m int, q, qsqfm1, tin float64) rootSet {
	thr2 := math.Atan2(qsqfm1, 2*q) / math.Pi
	if m == 0 {
		t0, _, _, _ := timeOfFlight(m, q, qsqfm1, 0, 0)
		tdiff := tin - t0
		var x float64
		if tdiff <= 0 {
			// -4 is dT/dx at x = 0.
			x = t0 * tdiff / (-4 * tin)
		} else {
			x = bilinearStarter(tdiff, t0, thr2, 1)
		}
		return rootSet{n: 1, x1: halley(m, q, qsqfm1, tin, x)}
	}

	xm, tmin, d2t, ok := locateTmin(m, q, qsqfm1, thr2)
	if !ok {
		return rootSet{n: -1}
	}
	tdiffm := tin - tmin
	switch {
	case tdiffm < 0:
		return rootSet{n: 0}
	case tdiffm == 0:
		return rootSet{n: 1, x1: xm}
	}

	// First root, on the x > xm side of the minimum.
	fm := float64(m)
	if d2t == 0 {
		d2t = 6 * fm * math.Pi
	}
	x := math.Sqrt(tdiffm / (d2t/2 + tdiffm/((1-xm)*(1-xm))))
	w := xm + x
	w = w*4/(4+tdiffm) + (1-w)*(1-w)
	x = x*(1-(1+fm+c41*(thr2-0.5))/(1+c3*fm)*x*(c1*w+c2*x*math.Sqrt(w))) + xm
	d2t2 := d2t / 2
	n := 1
	var xpl float64
	if x < 1 {
		xpl = halley(m, q, qsqfm1, tin, x)
		n = 2
	}

	// Second root, on the x < xm side.
	t0, _, _, _ := timeOfFlight(m, q, qsqfm1, 0, 0)
	tdiff0 := t0 - tmin
	tdiff := tin - t0
	if tdiff <= 0 {
		x = xm - math.Sqrt(tdiffm/(d2t2-tdiffm*(d2t2/tdiff0-1/(xm*xm))))
	} else {
		k := (1 + fm + c42*(thr2-0.5)) / (1 + c3*fm)
		x = bilinearStarter(tdiff, t0, thr2, k)
		if x <= -1 {
			n--
			if n == 0 {
				return rootSet{n: 0}
			}
			x = xpl
		}
	}
	return rootSet{n: n, x1: halley(m, q, qsqfm1, tin, x), x2: xpl}
}

// locateTmin finds the x where T is minimal for m > 0 revolutions.
// It returns that x, T at the last evaluated point, the second derivative there and whether
// the Halley search on dT/dx converged.
func locateTmin(m int, q, qsqfm1, thr2 float64) (xm, tmin, d2t float64, ok bool) {
	xm = 1 / (1.5 * (float64(m) + 0.5) * math.Pi)
	if thr2 < 0.5 {
		xm = d8rt(2*thr2) * xm
	} else if thr2 > 0.5 {
		xm = (2 - d8rt(2-2*thr2)) * xm
	}
	for i := 0; i < tminIterations; i++ {
		var dt, d3t float64
		tmin, dt, d2t, d3t = timeOfFlight(m, q, qsqfm1, xm, 3)
		if d2t == 0 {
			return xm, tmin, d2t, true
		}
		xmold := xm
		xm = xm - dt*d2t/(d2t*d2t-dt*d3t/2)
		if math.Abs(xmold/xm-1) <= tminTol {
			return xm, tmin, d2t, true
		}
	}
	return xm, tmin, d2t, false
}

// bilinearStarter is the rational starter in T_in - T(0), scaled by k for multi-revolution cases.
func bilinearStarter(tdiff, t0, thr2, k float64) float64 {
	x := -tdiff / (tdiff + 4)
	w := x + c0*math.Sqrt(2*(1-thr2))
	if w < 0 {
		x = x - math.Sqrt(d8rt(-w))*(x+math.Sqrt(tdiff/(tdiff+1.5*t0)))
	}
	w = 4 / (4 + tdiff)
	return x * (1 + k*x*(c1*w-c2*x*math.Sqrt(w)))
}

// halley refines x with a fixed number of Halley iterations on T(x) - tin.
func halley(m int, q, qsqfm1, tin, x float64) float64 {
	for i := 0; i < halleyIterations; i++ {
		t, dt, d2t, _ := timeOfFlight(m, q, qsqfm1, x, 2)
		t = tin - t
		if dt != 0 {
			x = x + t*dt/(dt*dt+t*d2t/2)
		}
	}
	return x
}

// d8rt returns the eighth root of x.
func d8rt(x float64) float64 {
	return math.Sqrt(math.Sqrt(math.Sqrt(x)))
}
