package lambert

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/matrix/mat64"
)

func TestLambertVallado(t *testing.T) {
	// From Vallado 4th edition, page 497
	Ri := mat64.NewVector(3, []float64{15945.34, 0, 0})
	Rf := mat64.NewVector(3, []float64{12214.83899, 10249.46731, 0})
	Vdir := mat64.NewVector(3, []float64{0, 1, 0})
	ViExp := mat64.NewVector(3, []float64{2.0589133, 2.9159643, 0})
	VfExp := mat64.NewVector(3, []float64{-3.4515648, 0.9103143, 0})
	Vi, Vf, err := Solve(Earth.GM(), Ri, Vdir, Rf, nil, 76.0*60, 0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !mat64.EqualApprox(Vi, ViExp, 1e-6) {
		t.Logf("\nGot %+v\nExp %+v\n", mat64.Formatted(Vi.T()), mat64.Formatted(ViExp.T()))
		t.Fatal("incorrect Vi computed")
	}
	if !mat64.EqualApprox(Vf, VfExp, 1e-6) {
		t.Logf("\nGot %+v\nExp %+v\n", mat64.Formatted(Vf.T()), mat64.Formatted(VfExp.T()))
		t.Fatal("incorrect Vf computed")
	}

	// Going against the direction of motion takes the long way.
	ViExp = mat64.NewVector(3, []float64{-3.8111580, -2.0038540, 0})
	VfExp = mat64.NewVector(3, []float64{4.2075688, 0.9147240, 0})
	Vi, Vf, err = Solve(Earth.GM(), Ri, Vdir, Rf, nil, -76.0*60, 0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !mat64.EqualApprox(Vi, ViExp, 1e-6) {
		t.Logf("\nGot %+v\nExp %+v\n", mat64.Formatted(Vi.T()), mat64.Formatted(ViExp.T()))
		t.Fatal("[long way] incorrect Vi computed")
	}
	if !mat64.EqualApprox(Vf, VfExp, 1e-6) {
		t.Logf("\nGot %+v\nExp %+v\n", mat64.Formatted(Vf.T()), mat64.Formatted(VfExp.T()))
		t.Fatal("[long way] incorrect Vf computed")
	}
}

func TestLambertCanonical(t *testing.T) {
	R1 := mat64.NewVector(3, []float64{1, 0, 0})
	V1 := mat64.NewVector(3, []float64{0, 1, 0})
	R2 := mat64.NewVector(3, []float64{0, 1, 0})
	Vi, Vf, err := Solve(1, R1, V1, R2, nil, math.Pi/2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !mat64.EqualApprox(Vi, V1, 1e-12) {
		t.Fatalf("Vi=%+v", mat64.Formatted(Vi.T()))
	}
	if !mat64.EqualApprox(Vf, mat64.NewVector(3, []float64{-1, 0, 0}), 1e-12) {
		t.Fatalf("Vf=%+v", mat64.Formatted(Vf.T()))
	}
}

func TestLambertHohmann(t *testing.T) {
	// 180° transfer: the plane comes from R1×V1.
	R1 := mat64.NewVector(3, []float64{1, 0, 0})
	V1 := mat64.NewVector(3, []float64{0, 1, 0})
	R2 := mat64.NewVector(3, []float64{-2, 0, 0})
	vDep, vArr, tof := Hohmann(1, 2, CelestialObject{"unit", 0.1, 1})
	Vi, Vf, err := Solve(1, R1, V1, R2, nil, tof.Seconds(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !mat64.EqualApprox(Vi, mat64.NewVector(3, []float64{0, vDep, 0}), 1e-8) {
		t.Fatalf("Vi=%+v expected %f", mat64.Formatted(Vi.T()), vDep)
	}
	if !mat64.EqualApprox(Vf, mat64.NewVector(3, []float64{0, -vArr, 0}), 1e-8) {
		t.Fatalf("Vf=%+v expected %f", mat64.Formatted(Vf.T()), -vArr)
	}
	// Without V1 nor V2, the plane is undefined.
	if _, _, err := Solve(1, R1, nil, R2, nil, tof.Seconds(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	// V2 is the last resort.
	V2 := mat64.NewVector(3, []float64{0, -0.5, 0})
	if Vi, _, err := Solve(1, R1, nil, R2, V2, tof.Seconds(), 0); err != nil || !mat64.EqualApprox(Vi, mat64.NewVector(3, []float64{0, vDep, 0}), 1e-8) {
		t.Fatalf("plane from V2 failed: %v", err)
	}
}

func TestLambertMultiRevolution(t *testing.T) {
	R1 := mat64.NewVector(3, []float64{1, 0, 0})
	V1 := mat64.NewVector(3, []float64{0, 1, 0})
	R2 := mat64.NewVector(3, []float64{-1, 0, 0})
	tmin, err := MinimumTimeOfFlight(1, 1, 1, 3*math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	for _, nrev := range []int{1, -1} {
		if _, _, err := Solve(1, R1, V1, R2, nil, 0.99*tmin, nrev); !errors.Is(err, ErrNoSolution) {
			t.Fatalf("nrev=%d: expected ErrNoSolution below T_min, got %v", nrev, err)
		}
	}
	if _, _, err := Solve(1, R1, V1, R2, nil, 5, 1); !errors.Is(err, ErrNoSolution) {
		t.Fatalf("expected ErrNoSolution, got %v", err)
	}

	// 1.5 periods of the circular orbit: the low path is that circle.
	tof := 3 * math.Pi
	sols, err := SolveAll(1, R1, V1, R2, nil, tof, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sols) != 2 {
		t.Fatalf("expected two solutions, got %d", len(sols))
	}
	Vi, Vf, err := Solve(1, R1, V1, R2, nil, tof, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !mat64.EqualApprox(Vi, V1, 1e-10) || !mat64.EqualApprox(Vf, mat64.NewVector(3, []float64{0, -1, 0}), 1e-10) {
		t.Fatalf("low path should be circular\nVi=%+v\nVf=%+v", mat64.Formatted(Vi.T()), mat64.Formatted(Vf.T()))
	}
	if !mat64.EqualApprox(Vi, sols[0].Vi, 0) {
		t.Fatal("negative nrev should return the first solution")
	}
	Vi, _, err = Solve(1, R1, V1, R2, nil, tof, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !mat64.EqualApprox(Vi, mat64.NewVector(3, []float64{-0.2849293728507206, 1, 0}), 1e-9) {
		t.Fatalf("high path Vi=%+v", mat64.Formatted(Vi.T()))
	}
	if !mat64.EqualApprox(Vi, sols[1].Vi, 0) {
		t.Fatal("positive nrev should return the second solution")
	}
}

func TestLambertMinimumTimeBoundary(t *testing.T) {
	R1 := mat64.NewVector(3, []float64{1, 0, 0})
	V1 := mat64.NewVector(3, []float64{0, 1, 0})
	R2 := mat64.NewVector(3, []float64{0, 1.5, 0})
	for _, nrev := range []int{1, 2, -1, -3} {
		tmin, err := MinimumTimeOfFlight(1, 1, 1.5, math.Pi/2+2*math.Pi*math.Abs(float64(nrev)))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := SolveAll(1, R1, V1, R2, nil, math.Nextafter(tmin, 0), nrev); !errors.Is(err, ErrNoSolution) {
			t.Fatalf("nrev=%d: expected ErrNoSolution right below T_min, got %v", nrev, err)
		}
		sols, err := SolveAll(1, R1, V1, R2, nil, tmin, nrev)
		if err != nil {
			t.Fatalf("nrev=%d: %s", nrev, err)
		}
		if len(sols) != 1 {
			t.Fatalf("nrev=%d: expected a single solution at T_min, got %d", nrev, len(sols))
		}
		sols, err = SolveAll(1, R1, V1, R2, nil, tmin*(1+1e-3), nrev)
		if err != nil {
			t.Fatalf("nrev=%d: %s", nrev, err)
		}
		if len(sols) != 2 || mat64.EqualApprox(sols[0].Vi, sols[1].Vi, 1e-6) {
			t.Fatalf("nrev=%d: expected two distinct solutions above T_min, got %d", nrev, len(sols))
		}
	}
}

func TestLambertNoDirectionOfMotion(t *testing.T) {
	R1 := mat64.NewVector(3, []float64{1, 0, 0})
	R2 := mat64.NewVector(3, []float64{0, 1, 0})
	for _, V1 := range []*mat64.Vector{nil, mat64.NewVector(3, []float64{2, 0, 0})} {
		for _, tof := range []float64{math.Pi / 2, -math.Pi / 2} {
			Vi, Vf, err := Solve(1, R1, V1, R2, nil, tof, 0)
			if err != nil {
				t.Fatal(err)
			}
			// Short way around R1×R2 whatever the sign of tof.
			if !mat64.EqualApprox(Vi, mat64.NewVector(3, []float64{0, 1, 0}), 1e-12) || !mat64.EqualApprox(Vf, mat64.NewVector(3, []float64{-1, 0, 0}), 1e-12) {
				t.Fatalf("tof=%f: Vi=%+v Vf=%+v", tof, mat64.Formatted(Vi.T()), mat64.Formatted(Vf.T()))
			}
		}
	}
}

func TestLambertErrors(t *testing.T) {
	Ri := mat64.NewVector(3, []float64{15945.34, 0, 0})
	Rf := mat64.NewVector(3, []float64{12214.83899, 10249.46731, 0})
	V := mat64.NewVector(3, []float64{0, 1, 0})
	tof := 76.0 * 60
	if _, _, err := Solve(Earth.GM(), Ri, V, Rf, nil, 0, 0); !errors.Is(err, ErrZeroTimeOfFlight) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrZeroTimeOfFlight, got %v", err)
	}
	// A zero time of flight is reported even when the rest is invalid too.
	if _, _, err := Solve(-1, nil, nil, nil, nil, 0, 3); !errors.Is(err, ErrZeroTimeOfFlight) {
		t.Fatalf("expected ErrZeroTimeOfFlight, got %v", err)
	}
	for name, args := range map[string]struct {
		gm             float64
		R1, V1, R2, V2 *mat64.Vector
		tof            float64
	}{
		"2x1 R1":        {Earth.GM(), mat64.NewVector(2, []float64{15945.34, 0}), V, Rf, nil, tof},
		"nil R2":        {Earth.GM(), Ri, V, nil, nil, tof},
		"2x1 V1":        {Earth.GM(), Ri, mat64.NewVector(2, []float64{0, 1}), Rf, nil, tof},
		"4x1 V2":        {Earth.GM(), Ri, V, Rf, mat64.NewVector(4, nil), tof},
		"negative GM":   {-Earth.GM(), Ri, V, Rf, nil, tof},
		"zero GM":       {0, Ri, V, Rf, nil, tof},
		"NaN GM":        {math.NaN(), Ri, V, Rf, nil, tof},
		"infinite tof":  {Earth.GM(), Ri, V, Rf, nil, math.Inf(1)},
		"NaN position":  {Earth.GM(), mat64.NewVector(3, []float64{math.NaN(), 0, 0}), V, Rf, nil, tof},
		"null position": {Earth.GM(), mat64.NewVector(3, nil), V, Rf, nil, tof},
	} {
		if _, _, err := Solve(args.gm, args.R1, args.V1, args.R2, args.V2, args.tof, 0); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestLambertRK4RoundTrip(t *testing.T) {
	R1 := []float64{1, 0, 0}
	V1 := []float64{0, 1, 0}
	for _, tc := range []struct {
		R2   []float64
		tof  float64
		nrev int
	}{
		{[]float64{0.5, 1.2, 0.3}, 2, 0},
		{[]float64{-1.5, 0.4, -0.2}, 3, 0},
		{[]float64{-1.5, 0.4, -0.2}, -3, 0},
		{[]float64{0.2, -1.1, 0.1}, 14, 1},
		{[]float64{0.2, -1.1, 0.1}, 14, -1},
		{[]float64{0, 3, 0}, 0.8, 0},
	} {
		sols, err := SolveAll(1, mat64.NewVector(3, R1), mat64.NewVector(3, V1), mat64.NewVector(3, tc.R2), nil, tc.tof, tc.nrev)
		if err != nil {
			t.Fatalf("%+v: %s", tc, err)
		}
		for _, sol := range sols {
			R, V, err := Propagate(1, R1, vec2slice(sol.Vi), math.Abs(tc.tof), 5e-4)
			if err != nil {
				t.Fatal(err)
			}
			if !vectorsEqualWithin(R, tc.R2, 1e-7) {
				t.Fatalf("%+v: propagated R=%+v", tc, R)
			}
			if !vectorsEqualWithin(V, vec2slice(sol.Vf), 1e-7) {
				t.Fatalf("%+v: propagated V=%+v expected %+v", tc, V, vec2slice(sol.Vf))
			}
		}
		// Posigrade for positive times of flight, retrograde otherwise.
		h := cross(R1, vec2slice(sols[0].Vi))
		if hz := dot(h, cross(R1, V1)); (hz > 0) != (tc.tof > 0) {
			t.Fatalf("%+v: wrong direction of motion", tc)
		}
	}
}

// conicStates returns the states at true anomalies ν1 and ν2 of an inclined conic of
// semi-parameter p and eccentricity e, and the time of flight from the first to the second
// with k additional revolutions.
func conicStates(p, e, ν1, ν2 float64, k int) (R1, V1, R2, V2 []float64, tof float64) {
	o1 := Orbit{p, e, 0.4, 1.1, 0.3, ν1, Earth}
	o2 := Orbit{p, e, 0.4, 1.1, 0.3, ν2, Earth}
	R1, V1 = o1.RV()
	R2, V2 = o2.RV()
	tof = o2.TimeSincePeriapsis() - o1.TimeSincePeriapsis()
	if e < 1 {
		tof += float64(k) * o1.Period().Seconds()
	}
	return
}

func TestLambertConics(t *testing.T) {
	var count int
	for _, e := range []float64{0, 0.1, 0.5, 0.9, 0.99, 1, 1.01, 1.5, 3} {
		p := 7000 * (1 + e)
		var νs []float64
		if e < 1 {
			for k := 0; k < 12; k++ {
				νs = append(νs, float64(k)*2*math.Pi/12-math.Pi+0.05)
			}
		} else {
			lim := 2.6
			if e > 1 {
				lim = math.Acos(-1/e) * 0.95
			}
			for k := 0; k < 10; k++ {
				νs = append(νs, -lim+float64(k)*2*lim/9)
			}
		}
		revs := []int{0}
		if e < 1 {
			revs = []int{0, 1, 2}
		}
		for _, ν1 := range νs {
			for _, ν2 := range νs {
				if ν2 <= ν1 || math.Abs(ν2-ν1-math.Pi) < 1e-3 {
					continue
				}
				for _, k := range revs {
					R1, V1, R2, V2, tof := conicStates(p, e, ν1, ν2, k)
					found := false
					for _, nrev := range []int{k, -k} {
						sols, err := SolveAll(Earth.GM(), mat64.NewVector(3, R1), mat64.NewVector(3, V1), mat64.NewVector(3, R2), nil, tof, nrev)
						if err != nil {
							continue
						}
						for _, sol := range sols {
							if vectorsEqualWithin(vec2slice(sol.Vi), V1, 1e-6) && vectorsEqualWithin(vec2slice(sol.Vf), V2, 1e-6) {
								found = true
							}
						}
					}
					if !found {
						t.Fatalf("e=%f ν1=%f ν2=%f k=%d: conic not recovered", e, ν1, ν2, k)
					}
					count++
				}
			}
		}
	}
	t.Logf("%d conics recovered", count)
}
