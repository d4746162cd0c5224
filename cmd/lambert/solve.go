package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
	"github.com/orbitalgo/lambert"
	"github.com/spf13/cobra"
)

// verifyStep is the RK4 step, as a fraction of the time of flight, used by --verify.
const verifyStep = 1e-4

type solveOptions struct {
	body           string
	r1, v1, r2, v2 []float64
	tof            float64
	nrev           int
	all, verify    bool
}

var solveOpts solveOptions

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a single Lambert transfer",
	Long: `Computes the velocities at both ends of the transfer from r1 to r2 in tof seconds.
A negative tof goes against the direction of motion given by r1 x v1.`,
	Example: `  lambert solve --body earth --r1 15945.34,0,0 --r2 12214.83899,10249.46731,0 --v1 0,1,0 --tof 4560`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSolve(cmd.OutOrStdout(), solveOpts)
	},
}

func init() {
	f := solveCmd.Flags()
	f.StringVar(&solveOpts.body, "body", "Earth", "central body")
	f.Float64SliceVar(&solveOpts.r1, "r1", nil, "departure position (km)")
	f.Float64SliceVar(&solveOpts.v1, "v1", nil, "departure velocity (km/s), orients the transfer")
	f.Float64SliceVar(&solveOpts.r2, "r2", nil, "arrival position (km)")
	f.Float64SliceVar(&solveOpts.v2, "v2", nil, "arrival velocity (km/s)")
	f.Float64Var(&solveOpts.tof, "tof", 0, "time of flight (s)")
	f.IntVar(&solveOpts.nrev, "nrev", 0, "complete revolutions, positive for the high path and negative for the low path")
	f.BoolVar(&solveOpts.all, "all", false, "print every multi-revolution solution")
	f.BoolVar(&solveOpts.verify, "verify", false, "propagate the departure state with RK4 and print the arrival residual")
	solveCmd.MarkFlagRequired("r1")
	solveCmd.MarkFlagRequired("r2")
	solveCmd.MarkFlagRequired("tof")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(out io.Writer, o solveOptions) error {
	body, err := lambert.CelestialObjectFromString(o.body)
	if err != nil {
		return err
	}
	ms, err := lambert.TransferAll(body, o.r1, o.v1, o.r2, o.v2, o.tof, o.nrev)
	if errors.Is(err, lambert.ErrNoSolution) {
		return fmt.Errorf("%w: reduce the number of revolutions or increase the time of flight", err)
	}
	if err != nil {
		return err
	}
	m := lambert.Preferred(ms)
	fmt.Fprintf(out, "Vi = %s km/s\nVf = %s km/s\n", fmtVec(m.Vi), fmtVec(m.Vf))
	if o.v1 != nil {
		fmt.Fprintf(out, "Δv departure = %s (%.6f km/s)\n", fmtVec(m.ΔvDeparture), norm(m.ΔvDeparture))
	}
	if o.v2 != nil {
		fmt.Fprintf(out, "Δv arrival = %s (%.6f km/s)\n", fmtVec(m.ΔvArrival), norm(m.ΔvArrival))
	}
	fmt.Fprintf(out, "transfer orbit: %s\n", m.TransferOrbit(o.r1, body))

	if o.all && o.nrev != 0 {
		for i, sol := range ms {
			fmt.Fprintf(out, "solution #%d: Vi = %s Vf = %s Δv = %.6f km/s\n", i, fmtMat(sol.Vi), fmtMat(sol.Vf), sol.Δv())
		}
	}

	if o.verify {
		step := math.Abs(o.tof) * verifyStep
		Rf, Vf, err := lambert.Propagate(body.GM(), o.r1, m.Vi, m.TOF, step)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "RK4 residual: |ΔR| = %.3e km |ΔV| = %.3e km/s\n", dist(Rf, o.r2), dist(Vf, m.Vf))
	}
	return nil
}

func norm(v []float64) float64 {
	return floats.Norm(v, 2)
}

func dist(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

func fmtVec(v []float64) string {
	return fmt.Sprintf("[%.9f, %.9f, %.9f]", v[0], v[1], v[2])
}

func fmtMat(v []float64) string {
	return fmt.Sprintf("%.9f", mat64.Formatted(mat64.NewVector(len(v), v).T(), mat64.Squeeze()))
}
