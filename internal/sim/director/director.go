// Package director provides the intensity phase state machine that paces
// enemy pressure: BuildUp spawns toward the peak, SustainPeak holds it,
// PeakFade adapts difficulty downward and thins the mob, Relax heals the
// player and rolls the epoch over.
package director

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/brawler/internal/sim/character"
	"github.com/cory-johannsen/brawler/internal/sim/event"
	"github.com/cory-johannsen/brawler/internal/sim/mob"
	"github.com/cory-johannsen/brawler/internal/sim/rng"
	"github.com/cory-johannsen/brawler/internal/sim/spawn"
)

// Phase is one state of the director's cycle.
type Phase int

const (
	// PhaseBuildUp spawns enemies until intensity reaches the peak
	// threshold.
	PhaseBuildUp Phase = iota
	// PhaseSustainPeak holds the peak for a sampled duration.
	PhaseSustainPeak
	// PhasePeakFade adapts difficulty and thins the mob off screen.
	PhasePeakFade
	// PhaseRelax heals the player, then advances the epoch.
	PhaseRelax
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseBuildUp:
		return "build_up"
	case PhaseSustainPeak:
		return "sustain_peak"
	case PhasePeakFade:
		return "peak_fade"
	case PhaseRelax:
		return "relax"
	default:
		return "unknown"
	}
}

// PhaseChange is published on every phase transition.
type PhaseChange struct {
	From  Phase
	To    Phase
	Epoch int
}

// IntensitySource supplies the game-intensity scalar the director reads
// each tick. AnxietyMonitor is the production source; tests force the
// signal directly.
type IntensitySource interface {
	Intensity() float64
}

// DefaultTickInterval is the director's control-loop period: 10 Hz,
// deliberately decoupled from the render/physics rate.
const DefaultTickInterval = 100 * time.Millisecond

// Config holds the director's tuning.
type Config struct {
	// TickInterval is the control-loop period. Zero uses
	// DefaultTickInterval.
	TickInterval time.Duration
	// AdaptiveStats enables strength/defense adaptation during PeakFade.
	AdaptiveStats bool
	// AdaptiveBehavior enables speed/attack-rate/admission adaptation
	// during PeakFade.
	AdaptiveBehavior bool
	// Base is the epoch-1 settings bundle.
	Base EpochSettings
	// Escalations overrides the per-epoch table. Nil uses
	// DefaultEscalations.
	Escalations []EscalationStep
}

// Director is the top-level pacing state machine.
//
// Invariant: epoch >= 1 and increases by exactly one per completed cycle;
// enemiesSpawned resets to zero at every rollover.
type Director struct {
	cfg      Config
	settings EpochSettings

	phase          Phase
	epoch          int
	enemiesSpawned int

	paused bool

	player    *character.Character
	enemies   *mob.Mob
	spawner   *spawn.Spawner
	intensity IntensitySource

	accumulator    time.Duration
	sinceSpawn     time.Duration
	sinceDespawn   time.Duration
	phaseRemaining time.Duration
	healPerSecond  float64

	phaseChanges event.Feed[PhaseChange]

	sampler *rng.Sampler
	logger  *zap.Logger
}

// NewDirector creates a Director in BuildUp at epoch 1.
//
// Precondition: player, enemies, spawner, intensity, sampler, and logger
// must be non-nil; cfg.Base.PeakIntensityThreshold > 0.
func NewDirector(cfg Config, player *character.Character, enemies *mob.Mob, spawner *spawn.Spawner, intensity IntensitySource, sampler *rng.Sampler, logger *zap.Logger) *Director {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Escalations == nil {
		cfg.Escalations = DefaultEscalations
	}
	d := &Director{
		cfg:       cfg,
		settings:  cfg.Base,
		phase:     PhaseBuildUp,
		epoch:     1,
		player:    player,
		enemies:   enemies,
		spawner:   spawner,
		intensity: intensity,
		sampler:   sampler,
		logger:    logger,
	}
	// Spawn on the first BuildUp tick rather than one interval in.
	d.sinceSpawn = d.spawnInterval()
	return d
}

// Phase returns the current phase.
func (d *Director) Phase() Phase { return d.phase }

// Epoch returns the current epoch number, starting at 1.
func (d *Director) Epoch() int { return d.epoch }

// EnemiesSpawned returns the worth spawned so far this epoch.
func (d *Director) EnemiesSpawned() int { return d.enemiesSpawned }

// Settings returns the live epoch settings.
func (d *Director) Settings() EpochSettings { return d.settings }

// GameIntensity mirrors the intensity source's current value.
func (d *Director) GameIntensity() float64 { return d.intensity.Intensity() }

// SetPaused gates the control loop. While paused no phase transition,
// spawn, or despawn occurs, and no timer resets.
func (d *Director) SetPaused(paused bool) { d.paused = paused }

// Paused reports whether the control loop is gated.
func (d *Director) Paused() bool { return d.paused }

// OnPhaseChange subscribes fn to phase transitions.
func (d *Director) OnPhaseChange(fn func(PhaseChange)) event.Subscription {
	return d.phaseChanges.Subscribe(fn)
}

// OffPhaseChange detaches a phase-change subscriber.
func (d *Director) OffPhaseChange(sub event.Subscription) {
	d.phaseChanges.Unsubscribe(sub)
}

// Advance accumulates frame time and runs the 10 Hz control loop for every
// whole tick interval elapsed. Pausing freezes the accumulator.
func (d *Director) Advance(dt time.Duration) {
	if d.paused {
		return
	}
	d.accumulator += dt
	for d.accumulator >= d.cfg.TickInterval {
		d.accumulator -= d.cfg.TickInterval
		d.tick(d.cfg.TickInterval)
	}
}

func (d *Director) tick(dt time.Duration) {
	switch d.phase {
	case PhaseBuildUp:
		d.tickBuildUp(dt)
	case PhaseSustainPeak:
		d.phaseRemaining -= dt
		if d.phaseRemaining <= 0 {
			d.transition(PhasePeakFade)
		}
	case PhasePeakFade:
		d.tickPeakFade(dt)
	case PhaseRelax:
		d.tickRelax(dt)
	}
}

func (d *Director) tickBuildUp(dt time.Duration) {
	living := d.enemies.LivingCount()

	// Wave cleared before the peak: skip straight to recovery.
	if d.enemiesSpawned >= d.settings.MaxEnemies && living == 0 {
		d.transition(PhaseRelax)
		return
	}

	if d.enemiesSpawned < d.settings.MaxEnemies && living < d.settings.MaxEnemies {
		d.sinceSpawn += dt
		if d.sinceSpawn >= d.spawnInterval() {
			maxWorth := d.settings.MaxEnemies - d.enemies.LivingWorth()
			if enemy, ok := d.spawner.SpawnEnemy(d.epoch, maxWorth, d.enemies); ok {
				d.enemiesSpawned += enemy.Worth
				d.sinceSpawn = 0
			}
		}
	}

	if d.intensity.Intensity() >= d.settings.PeakIntensityThreshold {
		d.transition(PhaseSustainPeak)
	}
}

func (d *Director) tickPeakFade(dt time.Duration) {
	factor := d.difficultyFactor()

	if d.cfg.AdaptiveStats {
		d.enemies.SetEnemyStrength(1 / factor)
		d.enemies.SetEnemyDefense(1 / factor)
	}
	if d.cfg.AdaptiveBehavior {
		d.enemies.SetEnemySpeed(1 / factor)
		d.enemies.SetSimultaneousAttackers(1 / factor)
		d.enemies.SetAttackRate(factor * 1.7)
		d.enemies.SetBattleCircleRadius(1.1)
	}

	if d.settings.PeakFadeDespawnRate > 0 {
		d.sinceDespawn += dt
		if d.sinceDespawn >= time.Duration(float64(time.Second)/d.settings.PeakFadeDespawnRate) {
			d.sinceDespawn = 0
			d.enemies.DespawnOneOffscreen()
		}
	}

	if d.intensity.Intensity() <= d.settings.RelaxUpperBound || d.enemies.LivingCount() == 0 {
		d.transition(PhaseRelax)
	}
}

func (d *Director) tickRelax(dt time.Duration) {
	if d.healPerSecond > 0 {
		d.player.Stats.Heal(d.healPerSecond * dt.Seconds())
	}
	d.phaseRemaining -= dt
	if d.phaseRemaining <= 0 {
		d.startNextEpoch()
	}
}

// difficultyFactor is intensity over the peak threshold, clamped to a sane
// band so adaptation never divides by a vanishing signal.
func (d *Director) difficultyFactor() float64 {
	f := d.intensity.Intensity() / d.settings.PeakIntensityThreshold
	if f < 0.1 {
		f = 0.1
	}
	if f > 10 {
		f = 10
	}
	return f
}

func (d *Director) spawnInterval() time.Duration {
	if d.settings.BuildUpSpawnRate <= 0 {
		return time.Hour
	}
	return time.Duration(float64(time.Second) / d.settings.BuildUpSpawnRate)
}

// transition switches phase, runs the entry bookkeeping, and publishes the
// change.
func (d *Director) transition(to Phase) {
	from := d.phase
	d.phase = to

	switch to {
	case PhaseBuildUp:
		d.sinceSpawn = d.spawnInterval()
	case PhaseSustainPeak:
		d.phaseRemaining = d.sampler.Duration(d.settings.SustainPeak.Min, d.settings.SustainPeak.Max)
	case PhasePeakFade:
		d.sinceDespawn = 0
	case PhaseRelax:
		d.phaseRemaining = d.sampler.Duration(d.settings.Relax.Min, d.settings.Relax.Max)
		missing := d.player.Stats.MaxHealth() - d.player.Stats.Health()
		if secs := d.phaseRemaining.Seconds(); secs > 0 && missing > 0 {
			d.healPerSecond = missing / secs
		} else {
			d.healPerSecond = 0
		}
	}

	d.logger.Info("director phase change",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int("epoch", d.epoch),
		zap.Float64("intensity", d.intensity.Intensity()),
	)
	d.phaseChanges.Publish(PhaseChange{From: from, To: to, Epoch: d.epoch})
}

// startNextEpoch rolls the cycle over: epoch increments, the spawn counter
// resets, enemy scaling returns to baseline, and the settings escalate per
// the table.
//
// Postcondition: Phase() == PhaseBuildUp; Epoch() has incremented by one;
// EnemiesSpawned() == 0.
func (d *Director) startNextEpoch() {
	d.epoch++
	d.enemiesSpawned = 0
	d.enemies.ResetScales()
	d.settings = escalated(d.cfg.Base, d.epoch, d.cfg.Escalations)
	d.logger.Info("epoch started",
		zap.Int("epoch", d.epoch),
		zap.Int("max_enemies", d.settings.MaxEnemies),
		zap.Float64("peak_threshold", d.settings.PeakIntensityThreshold),
	)
	d.transition(PhaseBuildUp)
}

// Reset returns the director to a fresh epoch-1 BuildUp without touching
// the roster.
func (d *Director) Reset() {
	d.epoch = 1
	d.enemiesSpawned = 0
	d.settings = d.cfg.Base
	d.accumulator = 0
	d.sinceDespawn = 0
	d.healPerSecond = 0
	d.phase = PhaseBuildUp
	d.sinceSpawn = d.spawnInterval()
}
