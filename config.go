package lambert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

const (
	// ConfigEnv is the environment variable holding the directory of the default scenario.
	ConfigEnv = "LAMBERT_CONFIG"
	// DefaultScenario is the name (without extension) of the scenario read from ConfigEnv.
	DefaultScenario = "scenario"
	dtFormat        = "2006-01-02 15:04:05"
)

// Scenario is a porkchop sweep read from a TOML file.
type Scenario struct {
	Prefix      string
	Body        CelestialObject
	Revolutions int
	Departure   Window
	Arrival     Window
}

// LoadScenario reads a scenario. An empty path reads DefaultScenario.toml from the directory
// named by $LAMBERT_CONFIG.
func LoadScenario(path string) (Scenario, error) {
	v := viper.New()
	if path == "" {
		confPath := os.Getenv(ConfigEnv)
		if confPath == "" {
			return Scenario{}, fmt.Errorf("environment variable `%s` is missing or empty", ConfigEnv)
		}
		v.SetConfigName(DefaultScenario)
		v.SetConfigType("toml")
		v.AddConfigPath(confPath)
	} else {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	return scenarioFrom(v)
}

func scenarioFrom(v *viper.Viper) (s Scenario, err error) {
	v.SetDefault("general.revolutions", 0)
	v.SetDefault("general.body", "Sun")
	s.Prefix = v.GetString("general.fileprefix")
	if s.Prefix == "" {
		s.Prefix = strings.TrimSuffix(filepath.Base(v.ConfigFileUsed()), filepath.Ext(v.ConfigFileUsed()))
	}
	s.Revolutions = v.GetInt("general.revolutions")
	if s.Body, err = CelestialObjectFromString(v.GetString("general.body")); err != nil {
		return s, err
	}
	if s.Departure, err = windowFrom(v, "departure", s.Body); err != nil {
		return s, err
	}
	if s.Arrival, err = windowFrom(v, "arrival", s.Body); err != nil {
		return s, err
	}
	return s, nil
}

// windowFrom reads the [key] and [key.orbit] tables.
func windowFrom(v *viper.Viper, key string, body CelestialObject) (w Window, err error) {
	w.Name = v.GetString(key + ".name")
	if w.Name == "" {
		w.Name = key
	}
	if w.From, err = readTime(v, key+".from"); err != nil {
		return w, err
	}
	if w.Until, err = readTime(v, key+".until"); err != nil {
		return w, err
	}
	if w.Until.Before(w.From) {
		return w, fmt.Errorf("%s.until is before %s.from", key, key)
	}
	// Resolution is in points per day.
	reso := v.GetFloat64(key + ".resolution")
	if reso <= 0 {
		return w, fmt.Errorf("%s.resolution must be positive", key)
	}
	w.Step = time.Duration(24 * float64(time.Hour) / reso)

	ok := key + ".orbit."
	if !v.IsSet(ok + "sma") {
		return w, fmt.Errorf("%s.orbit.sma is missing", key)
	}
	if w.Epoch, err = readTime(v, ok+"epoch"); err != nil {
		return w, err
	}
	a, e := v.GetFloat64(ok+"sma"), v.GetFloat64(ok+"ecc")
	if a <= 0 || e < 0 || e >= 1 {
		return w, errors.New(key + ".orbit must be elliptical (sma > 0 and 0 <= ecc < 1)")
	}
	w.Orbit = *NewOrbitFromOE(a, e, v.GetFloat64(ok+"inc"), v.GetFloat64(ok+"raan"), v.GetFloat64(ok+"argp"), v.GetFloat64(ok+"nu"), body)
	return w, nil
}

// readTime reads a date either as a Julian date or as a "2006-01-02 15:04:05" UTC string.
func readTime(v *viper.Viper, key string) (time.Time, error) {
	if jd := v.GetFloat64(key); jd != 0 {
		return julian.JDToTime(jd), nil
	}
	dt, err := time.Parse(dtFormat, v.GetString(key))
	if err != nil {
		return time.Time{}, fmt.Errorf("could not read %s: %w", key, err)
	}
	return dt, nil
}
