package lambert

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/soniakeys/meeus/v3/julian"
)

// Window is a range of epochs at which a body on a Keplerian orbit is sampled.
type Window struct {
	Name        string
	Orbit       Orbit // at Epoch
	Epoch       time.Time
	From, Until time.Time
	Step        time.Duration
}

// StateAt returns the position and velocity of the body at dt.
func (w Window) StateAt(dt time.Time) (R, V []float64, err error) {
	o, err := w.Orbit.After(dt.Sub(w.Epoch).Seconds())
	if err != nil {
		return nil, nil, err
	}
	R, V = o.RV()
	return R, V, nil
}

// Epochs returns the sampled epochs, From and Until included.
func (w Window) Epochs() []time.Time {
	if w.Step <= 0 {
		return []time.Time{w.From}
	}
	var epochs []time.Time
	for dt := w.From; !dt.After(w.Until); dt = dt.Add(w.Step) {
		epochs = append(epochs, dt)
	}
	return epochs
}

// Cell is one departure and arrival pair of a porkchop sweep.
type Cell struct {
	Departure, Arrival time.Time
	TOF                float64 // days
	C3                 float64 // km²/s², NaN without solution
	VInfArrival        float64 // km/s, NaN without solution
	Err                error
}

// Porkchop sweeps the departure and arrival windows and solves the transfer of each pair.
type Porkchop struct {
	Body        CelestialObject
	Departure   Window
	Arrival     Window
	Revolutions int
	Logger      kitlog.Logger
	Metrics     *Metrics
}

// NewPorkchop returns the sweep described by the scenario.
func NewPorkchop(s Scenario, logger kitlog.Logger, metrics *Metrics) Porkchop {
	return Porkchop{Body: s.Body, Departure: s.Departure, Arrival: s.Arrival, Revolutions: s.Revolutions, Logger: logger, Metrics: metrics}
}

// Run computes every cell whose arrival is after its departure. Cells without solution are
// kept with their error. Only the cancellation of ctx or the failure to place a body stops it.
func (p Porkchop) Run(ctx context.Context) ([]Cell, error) {
	logger := p.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "subsys", "porkchop", "from", p.Departure.Name, "to", p.Arrival.Name)
	arrivals := p.Arrival.Epochs()
	var cells []Cell
	failed := 0
	for _, depDT := range p.Departure.Epochs() {
		if err := ctx.Err(); err != nil {
			return cells, err
		}
		R1, V1, err := p.Departure.StateAt(depDT)
		if err != nil {
			level.Error(logger).Log("departure", depDT, "err", err)
			return cells, err
		}
		for _, arrDT := range arrivals {
			if !arrDT.After(depDT) {
				continue
			}
			R2, V2, err := p.Arrival.StateAt(arrDT)
			if err != nil {
				level.Error(logger).Log("arrival", arrDT, "err", err)
				return cells, err
			}
			tof := arrDT.Sub(depDT)
			start := time.Now()
			m, err := Transfer(p.Body, R1, V1, R2, V2, tof.Seconds(), p.Revolutions)
			p.Metrics.Observe(err, time.Since(start))
			cell := Cell{Departure: depDT, Arrival: arrDT, TOF: tof.Hours() / 24, C3: math.NaN(), VInfArrival: math.NaN(), Err: err}
			if err != nil {
				failed++
				if errors.Is(err, ErrNoMinimumTime) {
					level.Error(logger).Log("departure", depDT, "arrival", arrDT, "err", err)
				} else {
					level.Debug(logger).Log("departure", depDT, "arrival", arrDT, "err", err)
				}
			} else {
				cell.C3 = m.C3()
				cell.VInfArrival = m.VInfArrival()
			}
			cells = append(cells, cell)
		}
	}
	level.Info(logger).Log("status", "finished", "cells", len(cells), "failed", failed)
	return cells, nil
}

// Best returns the cell with the lowest departure C3, and false if no cell has a solution.
func Best(cells []Cell) (best Cell, found bool) {
	for _, c := range cells {
		if c.Err != nil {
			continue
		}
		if !found || c.C3 < best.C3 {
			best, found = c, true
		}
	}
	return
}

// WriteCSV writes the cells as CSV, one line per cell, with the epochs as Julian dates.
func WriteCSV(w io.Writer, cells []Cell) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"departure_jd", "arrival_jd", "tof_days", "c3_km2s2", "vinf_arrival_kms"}); err != nil {
		return err
	}
	ff := func(v float64) string {
		return strconv.FormatFloat(v, 'f', 6, 64)
	}
	for _, c := range cells {
		rec := []string{ff(julian.TimeToJD(c.Departure)), ff(julian.TimeToJD(c.Arrival)), ff(c.TOF), ff(c.C3), ff(c.VInfArrival)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
