// Package config provides Viper-based configuration loading for the
// brawler simulation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// AnxietyConfig holds the player stress estimator tuning.
type AnxietyConfig struct {
	// ProximityRadius bounds the nearby-enemy worth query, in world units.
	ProximityRadius float64 `mapstructure:"proximity_radius"`
	// HealthWeight scales the low-health anxiety contribution.
	HealthWeight float64 `mapstructure:"health_weight"`
	// DamageDecayRate is the per-second linear decay of the
	// damage-inflicted accumulator.
	DamageDecayRate float64 `mapstructure:"damage_decay_rate"`
	// GrowthRate is the smoothing rate while the signal rises.
	GrowthRate float64 `mapstructure:"growth_rate"`
	// DecayRate is the smoothing rate while the signal falls.
	DecayRate float64 `mapstructure:"decay_rate"`
}

// EpochConfig holds the epoch-1 settings the director escalates from.
type EpochConfig struct {
	MaxEnemies          int     `mapstructure:"max_enemies"`
	BuildUpSpawnRate    float64 `mapstructure:"build_up_spawn_rate"`
	PeakFadeDespawnRate float64 `mapstructure:"peak_fade_despawn_rate"`

	SustainPeakMin time.Duration `mapstructure:"sustain_peak_min"`
	SustainPeakMax time.Duration `mapstructure:"sustain_peak_max"`
	RelaxMin       time.Duration `mapstructure:"relax_min"`
	RelaxMax       time.Duration `mapstructure:"relax_max"`

	PeakIntensityThreshold float64 `mapstructure:"peak_intensity_threshold"`
	RelaxUpperBound        float64 `mapstructure:"relax_upper_bound"`
}

// DirectorConfig holds the pacing state machine settings.
type DirectorConfig struct {
	// TickInterval is the control-loop period; the director runs at its
	// own lowered rate, not the frame rate.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// AdaptiveStats enables strength/defense adaptation during PeakFade.
	AdaptiveStats bool `mapstructure:"adaptive_stats"`
	// AdaptiveBehavior enables speed/attack-rate/admission adaptation.
	AdaptiveBehavior bool `mapstructure:"adaptive_behavior"`

	Epoch EpochConfig `mapstructure:"epoch"`
}

// MobConfig holds the enemy group controller settings.
type MobConfig struct {
	// AttackRate is attacker selections per second.
	AttackRate float64 `mapstructure:"attack_rate"`
	// BucketSize is the proximity-index cell size, in world units.
	BucketSize float64 `mapstructure:"bucket_size"`
}

// SpawnConfig holds the off-screen placement policy settings.
type SpawnConfig struct {
	// PreferredDistance is the cell distance ahead of the player tried
	// first.
	PreferredDistance int `mapstructure:"preferred_distance"`
	// SearchBound is how many further cells the placement probe examines.
	SearchBound int `mapstructure:"search_bound"`
}

// PlayerConfig holds the monitored player's stat defaults.
type PlayerConfig struct {
	MaxHealth             float64 `mapstructure:"max_health"`
	Strength              float64 `mapstructure:"strength"`
	Defense               float64 `mapstructure:"defense"`
	Speed                 float64 `mapstructure:"speed"`
	SimultaneousAttackers int     `mapstructure:"simultaneous_attackers"`
	BattleCircleRadius    float64 `mapstructure:"battle_circle_radius"`
}

// Config is the top-level simulation configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Anxiety  AnxietyConfig  `mapstructure:"anxiety"`
	Director DirectorConfig `mapstructure:"director"`
	Mob      MobConfig      `mapstructure:"mob"`
	Spawn    SpawnConfig    `mapstructure:"spawn"`
	Player   PlayerConfig   `mapstructure:"player"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAnxiety(c.Anxiety); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDirector(c.Director); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateMob(c.Mob); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSpawn(c.Spawn); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePlayer(c.Player); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", l.Level)
	}
	switch l.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", l.Format)
	}
	return nil
}

func validateAnxiety(a AnxietyConfig) error {
	if a.ProximityRadius <= 0 {
		return fmt.Errorf("anxiety.proximity_radius must be positive, got %v", a.ProximityRadius)
	}
	if a.GrowthRate <= 0 || a.DecayRate <= 0 {
		return fmt.Errorf("anxiety growth_rate and decay_rate must be positive, got %v and %v", a.GrowthRate, a.DecayRate)
	}
	if a.DamageDecayRate < 0 {
		return fmt.Errorf("anxiety.damage_decay_rate must not be negative, got %v", a.DamageDecayRate)
	}
	return nil
}

func validateDirector(d DirectorConfig) error {
	if d.TickInterval < 0 {
		return fmt.Errorf("director.tick_interval must not be negative, got %v", d.TickInterval)
	}
	e := d.Epoch
	if e.MaxEnemies < 1 {
		return fmt.Errorf("director.epoch.max_enemies must be >= 1, got %d", e.MaxEnemies)
	}
	if e.BuildUpSpawnRate <= 0 {
		return fmt.Errorf("director.epoch.build_up_spawn_rate must be positive, got %v", e.BuildUpSpawnRate)
	}
	if e.PeakFadeDespawnRate < 0 {
		return fmt.Errorf("director.epoch.peak_fade_despawn_rate must not be negative, got %v", e.PeakFadeDespawnRate)
	}
	if e.SustainPeakMin <= 0 || e.SustainPeakMax < e.SustainPeakMin {
		return fmt.Errorf("director.epoch sustain_peak range invalid: [%v, %v]", e.SustainPeakMin, e.SustainPeakMax)
	}
	if e.RelaxMin <= 0 || e.RelaxMax < e.RelaxMin {
		return fmt.Errorf("director.epoch relax range invalid: [%v, %v]", e.RelaxMin, e.RelaxMax)
	}
	if e.PeakIntensityThreshold <= 0 {
		return fmt.Errorf("director.epoch.peak_intensity_threshold must be positive, got %v", e.PeakIntensityThreshold)
	}
	if e.RelaxUpperBound < 0 || e.RelaxUpperBound >= e.PeakIntensityThreshold {
		return fmt.Errorf("director.epoch.relax_upper_bound must be in [0, peak threshold), got %v", e.RelaxUpperBound)
	}
	return nil
}

func validateMob(m MobConfig) error {
	if m.AttackRate <= 0 {
		return fmt.Errorf("mob.attack_rate must be positive, got %v", m.AttackRate)
	}
	if m.BucketSize < 0 {
		return fmt.Errorf("mob.bucket_size must not be negative, got %v", m.BucketSize)
	}
	return nil
}

func validateSpawn(s SpawnConfig) error {
	if s.PreferredDistance < 1 {
		return fmt.Errorf("spawn.preferred_distance must be >= 1, got %d", s.PreferredDistance)
	}
	if s.SearchBound < 0 {
		return fmt.Errorf("spawn.search_bound must not be negative, got %d", s.SearchBound)
	}
	return nil
}

func validatePlayer(p PlayerConfig) error {
	if p.MaxHealth <= 0 {
		return fmt.Errorf("player.max_health must be positive, got %v", p.MaxHealth)
	}
	if p.Defense <= 0 {
		return fmt.Errorf("player.defense must be positive, got %v", p.Defense)
	}
	if p.SimultaneousAttackers < 1 {
		return fmt.Errorf("player.simultaneous_attackers must be >= 1, got %d", p.SimultaneousAttackers)
	}
	return nil
}

// Load reads configuration from the given file path, applying environment
// variable overrides with the BRAWLER_ prefix.
//
// Precondition: path must point to a readable YAML file.
// Postcondition: Returns a validated Config or a non-nil error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("BRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers the default values for all settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("anxiety.proximity_radius", 8.0)
	v.SetDefault("anxiety.health_weight", 15.0)
	v.SetDefault("anxiety.damage_decay_rate", 2.0)
	v.SetDefault("anxiety.growth_rate", 1.5)
	v.SetDefault("anxiety.decay_rate", 0.5)

	v.SetDefault("director.tick_interval", "100ms")
	v.SetDefault("director.adaptive_stats", true)
	v.SetDefault("director.adaptive_behavior", true)
	v.SetDefault("director.epoch.max_enemies", 5)
	v.SetDefault("director.epoch.build_up_spawn_rate", 1.0)
	v.SetDefault("director.epoch.peak_fade_despawn_rate", 0.5)
	v.SetDefault("director.epoch.sustain_peak_min", "5s")
	v.SetDefault("director.epoch.sustain_peak_max", "10s")
	v.SetDefault("director.epoch.relax_min", "8s")
	v.SetDefault("director.epoch.relax_max", "12s")
	v.SetDefault("director.epoch.peak_intensity_threshold", 20.0)
	v.SetDefault("director.epoch.relax_upper_bound", 5.0)

	v.SetDefault("mob.attack_rate", 1.0)
	v.SetDefault("mob.bucket_size", 4.0)

	v.SetDefault("spawn.preferred_distance", 6)
	v.SetDefault("spawn.search_bound", 3)

	v.SetDefault("player.max_health", 100.0)
	v.SetDefault("player.strength", 10.0)
	v.SetDefault("player.defense", 5.0)
	v.SetDefault("player.speed", 4.0)
	v.SetDefault("player.simultaneous_attackers", 3)
	v.SetDefault("player.battle_circle_radius", 2.5)
}
