package lambert

import (
	"fmt"
	"strings"
)

// CelestialObject defines a central body. Distances are in km and μ in km³/s².
type CelestialObject struct {
	Name   string
	Radius float64
	μ      float64
}

// NewCelestialObject returns a central body with the provided gravitational parameter.
func NewCelestialObject(name string, radius, μ float64) CelestialObject {
	return CelestialObject{name, radius, μ}
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c CelestialObject) GM() float64 {
	return c.μ
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial object is the same.
func (c CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.μ == b.μ
}

// CelestialObjectFromString returns the object from its name
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "kerbol":
		return Kerbol, nil
	case "kerbin":
		return Kerbin, nil
	case "mun":
		return Mun, nil
	default:
		return CelestialObject{}, fmt.Errorf("undefined celestial object '%s'", name)
	}
}

/* Definitions */

// Sun is our closest star.
var Sun = CelestialObject{"Sun", 695700, 1.32712440017987e11}

// Venus is poisonous.
var Venus = CelestialObject{"Venus", 6051.8, 3.24858599e5}

// Earth is home.
var Earth = CelestialObject{"Earth", 6378.1363, 3.98600433e5}

// Mars is the vacation place.
var Mars = CelestialObject{"Mars", 3396.19, 4.28283100e4}

// Jupiter is big.
var Jupiter = CelestialObject{"Jupiter", 71492.0, 1.266865361e8}

// Kerbol is the star of the Kerbal system.
var Kerbol = CelestialObject{"Kerbol", 261600, 1.1723328e9}

// Kerbin is home, for some.
var Kerbin = CelestialObject{"Kerbin", 600, 3.5316e3}

// Mun is Kerbin's first moon.
var Mun = CelestialObject{"Mun", 200, 6.5138398e1}
