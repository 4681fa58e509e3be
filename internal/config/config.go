// Package config holds the tunable numbers of the round core. Values are read
// from ROUNDSIM_* environment variables, falling back to the envDefault tags.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Timing holds the round clocks, all in milliseconds
type Timing struct {
	RoundDuration     int64 `env:"ROUND_DURATION_MS" envDefault:"100000"`
	PostPlantDuration int64 `env:"POST_PLANT_DURATION_MS" envDefault:"45000"`
	PlantDuration     int64 `env:"PLANT_DURATION_MS" envDefault:"4000"`
	DefuseDuration    int64 `env:"DEFUSE_DURATION_MS" envDefault:"7000"`
	TradeWindow       int64 `env:"TRADE_WINDOW_MS" envDefault:"3000"`
	ShieldRegenDelay  int64 `env:"SHIELD_REGEN_DELAY_MS" envDefault:"2500"`
}

// HalfDefuse returns the defuse checkpoint that survives an interruption
func (t Timing) HalfDefuse() int64 {
	return t.DefuseDuration / 2
}

// Driver holds the combat resolution tuning. These are opaque weights as far
// as the state machine is concerned.
type Driver struct {
	Tick            int64   `env:"TICK_MS" envDefault:"500"`
	EncounterRate   float64 `env:"ENCOUNTER_RATE" envDefault:"0.12"`
	HeadshotRate    float64 `env:"HEADSHOT_RATE" envDefault:"0.22"`
	LegshotRate     float64 `env:"LEGSHOT_RATE" envDefault:"0.12"`
	AbilityRate     float64 `env:"ABILITY_RATE" envDefault:"0.01"`
	PlantBaseRate   float64 `env:"PLANT_BASE_RATE" envDefault:"0.01"`
	PlantTimeWeight float64 `env:"PLANT_TIME_WEIGHT" envDefault:"0.06"`
	DefuseBaseRate  float64 `env:"DEFUSE_BASE_RATE" envDefault:"0.05"`
	PickupRate      float64 `env:"PICKUP_RATE" envDefault:"0.3"`
	DropRate        float64 `env:"DROP_RATE" envDefault:"0.002"`
	TradeRate       float64 `env:"TRADE_RATE" envDefault:"0.35"`
	MaxExchanges    int     `env:"MAX_EXCHANGES" envDefault:"6"`
	MaxIterations   int     `env:"MAX_ITERATIONS" envDefault:"1000"`
}

// Validation holds the timeline validator tolerances
type Validation struct {
	DamageTolerance    float64 `env:"DAMAGE_TOLERANCE" envDefault:"0.10"`
	DefuseWarnFraction float64 `env:"DEFUSE_WARN_FRACTION" envDefault:"0.05"`
}

// Config bundles every section of the round core configuration
type Config struct {
	Timing     Timing     `envPrefix:"ROUNDSIM_"`
	Driver     Driver     `envPrefix:"ROUNDSIM_"`
	Validation Validation `envPrefix:"ROUNDSIM_"`
}

// ParseEnv loads configuration from environment variables
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the tag defaults, ignoring the process environment
func Default() Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		// the defaults are compile-time constants; failing to parse them is a bug
		panic(fmt.Sprintf("config: parse defaults: %v", err))
	}
	return cfg
}

// Check returns an error if any value would make a round impossible to run
func (c Config) Check() error {
	switch {
	case c.Timing.RoundDuration <= 0:
		return fmt.Errorf("round duration must be positive, got %d", c.Timing.RoundDuration)
	case c.Timing.PostPlantDuration <= 0:
		return fmt.Errorf("post-plant duration must be positive, got %d", c.Timing.PostPlantDuration)
	case c.Timing.PlantDuration < 0 || c.Timing.DefuseDuration < 0:
		return fmt.Errorf("plant and defuse durations must not be negative")
	case c.Timing.TradeWindow < 0:
		return fmt.Errorf("trade window must not be negative, got %d", c.Timing.TradeWindow)
	case c.Driver.Tick <= 0:
		return fmt.Errorf("driver tick must be positive, got %d", c.Driver.Tick)
	case c.Driver.MaxIterations <= 0:
		return fmt.Errorf("driver max iterations must be positive, got %d", c.Driver.MaxIterations)
	case c.Validation.DamageTolerance < 0:
		return fmt.Errorf("damage tolerance must not be negative, got %v", c.Validation.DamageTolerance)
	}
	return nil
}
