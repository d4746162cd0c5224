package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/orbitalgo/lambert"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/cobra"
)

type porkchopOptions struct {
	scenario    string
	out         string
	metricsAddr string
	verbose     bool
}

var porkchopOpts porkchopOptions

var porkchopCmd = &cobra.Command{
	Use:   "porkchop",
	Short: "Generate the porkchop data of a scenario",
	Long: `Sweeps the departure and arrival windows of a TOML scenario and writes the C3, the
arrival v-infinity and the time of flight of each pair to a CSV file.
Without --scenario, scenario.toml is read from the $` + lambert.ConfigEnv + ` directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		porkchopOpts.verbose, _ = cmd.Flags().GetBool("verbose")
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runPorkchop(ctx, cmd.OutOrStdout(), porkchopOpts)
	},
}

func init() {
	f := porkchopCmd.Flags()
	f.StringVar(&porkchopOpts.scenario, "scenario", "", "scenario TOML to generate the porkchop from")
	f.StringVar(&porkchopOpts.out, "out", "", "CSV output file (defaults to <fileprefix>.csv)")
	f.StringVar(&porkchopOpts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while computing")
	rootCmd.AddCommand(porkchopCmd)
}

func runPorkchop(ctx context.Context, out io.Writer, o porkchopOptions) error {
	logger := newLogger(os.Stderr, o.verbose)
	s, err := lambert.LoadScenario(o.scenario)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := lambert.NewMetrics(reg)
	if o.metricsAddr != "" {
		shutdown, err := serveMetrics(o.metricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	level.Info(logger).Log("scenario", s.Prefix, "body", s.Body.Name, "departures", len(s.Departure.Epochs()), "arrivals", len(s.Arrival.Epochs()))
	cells, err := lambert.NewPorkchop(s, logger, metrics).Run(ctx)
	if err != nil {
		return err
	}

	fname := o.out
	if fname == "" {
		fname = s.Prefix + ".csv"
	}
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := lambert.WriteCSV(f, cells); err != nil {
		return err
	}

	best, found := lambert.Best(cells)
	if !found {
		return errors.New("no transfer found in the scenario windows")
	}
	fmt.Fprintf(out, "%d cells written to %s\n", len(cells), fname)
	fmt.Fprintf(out, "minimum C3 = %.3f km²/s² departing %s (JD %.2f), arriving %s (JD %.2f), ToF %.1f days, v∞ arrival %.3f km/s\n",
		best.C3, best.Departure.Format("2006-01-02"), julian.TimeToJD(best.Departure),
		best.Arrival.Format("2006-01-02"), julian.TimeToJD(best.Arrival), best.TOF, best.VInfArrival)
	return nil
}

// serveMetrics serves reg on addr until the returned function is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger kitlog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", lambert.MetricsHandler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("subsys", "metrics", "err", err)
		}
	}()
	level.Info(logger).Log("subsys", "metrics", "addr", ln.Addr().String())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}
