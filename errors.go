package lambert

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for inputs the solver cannot work with. The caller must fix them.
	ErrInvalidInput = errors.New("invalid input")
	// ErrZeroTimeOfFlight is returned when the time of flight is zero (teleportation is not supported).
	ErrZeroTimeOfFlight = fmt.Errorf("%w: zero time of flight", ErrInvalidInput)
	// ErrNoMinimumTime is returned when the minimum time of a multi-revolution transfer could not be
	// located. It should never happen for valid geometries and denotes a solver bug.
	ErrNoMinimumTime = errors.New("no minimum time of flight found")
	// ErrNoSolution is returned when the requested time of flight is shorter than the minimum time
	// of flight for the requested number of revolutions. Decrease the number of revolutions or
	// increase the time of flight.
	ErrNoSolution = errors.New("no solution for the requested time of flight")
)
