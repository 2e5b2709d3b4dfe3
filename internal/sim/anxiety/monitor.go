// Package anxiety estimates player stress as a single smoothed scalar: the
// game-intensity signal the director paces difficulty against.
package anxiety

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/brawler/internal/sim/character"
	"github.com/cory-johannsen/brawler/internal/sim/event"
	"github.com/cory-johannsen/brawler/internal/sim/geom"
)

// ProximityQuery answers the bounded-radius worth query around a position.
// EnemyMob implements it with a spatial bucket index so the monitor never
// scans a full roster.
type ProximityQuery interface {
	// LivingWorthWithin returns the summed worth of living enemies within
	// radius of center.
	LivingWorthWithin(center geom.Vec2, radius float64) float64
}

// Config holds the monitor's tuning parameters.
type Config struct {
	// ProximityRadius bounds the nearby-enemy worth query, in world units.
	ProximityRadius float64
	// HealthWeight scales the low-health contribution; the missing health
	// fraction is multiplied by it.
	HealthWeight float64
	// DamageInflictedDecayRate is the linear decay, per second, of the
	// damage-inflicted accumulator.
	DamageInflictedDecayRate float64
	// GrowthRate is the per-second smoothing rate while the target signal
	// is rising.
	GrowthRate float64
	// DecayRate is the per-second smoothing rate while the target signal
	// is falling. Asymmetric rates keep spikes and drops from feeling
	// instantaneous.
	DecayRate float64
}

// DefaultConfig returns the tuning used when the session config leaves the
// monitor section empty.
func DefaultConfig() Config {
	return Config{
		ProximityRadius:          8,
		HealthWeight:             15,
		DamageInflictedDecayRate: 2,
		GrowthRate:               1.5,
		DecayRate:                0.5,
	}
}

// Monitor tracks one character's anxiety.
//
// Invariant: Anxiety() >= 0 after every Update.
type Monitor struct {
	cfg       Config
	proximity ProximityQuery

	monitored *character.Character
	sub       event.Subscription

	damageAccum float64
	anxiety     float64

	logger *zap.Logger
}

// NewMonitor creates a Monitor over proximity with the given tuning.
//
// Precondition: proximity and logger must be non-nil; rates must be >= 0.
func NewMonitor(cfg Config, proximity ProximityQuery, logger *zap.Logger) *Monitor {
	return &Monitor{cfg: cfg, proximity: proximity, logger: logger}
}

// Monitored returns the character currently monitored, which may be nil.
func (m *Monitor) Monitored() *character.Character { return m.monitored }

// SetCharacter points the monitor at c. The previous character's
// damage-dealt subscription is detached first so no stale callback keeps
// feeding the accumulator.
//
// Postcondition: Monitored() == c; at most one damage-dealt subscription is
// live.
func (m *Monitor) SetCharacter(c *character.Character) {
	if m.monitored == c {
		return
	}
	if m.monitored != nil {
		m.monitored.Stats.OffDamageDealt(m.sub)
		m.sub = 0
	}
	m.monitored = c
	if c != nil {
		m.sub = c.Stats.OnDamageDealt(func(e character.DamageEvent) {
			strength := e.Dealer.Stats.Strength()
			if strength <= 0 {
				m.logger.Error("dealer strength must be positive",
					zap.String("character", e.Dealer.Name),
					zap.Float64("strength", strength),
				)
				return
			}
			m.damageAccum += e.Amount / strength
		})
	}
}

// Anxiety returns the current smoothed scalar.
func (m *Monitor) Anxiety() float64 { return m.anxiety }

// Intensity returns the same scalar under the name the director reads it
// by, satisfying its IntensitySource.
func (m *Monitor) Intensity() float64 { return m.anxiety }

// Update recomputes the smoothed anxiety for the elapsed dt. With no
// monitored character the signal decays toward zero.
//
// Postcondition: Anxiety() >= 0.
func (m *Monitor) Update(dt time.Duration) {
	seconds := dt.Seconds()

	// Decay the damage-inflicted accumulator linearly, clamped at zero.
	m.damageAccum -= m.cfg.DamageInflictedDecayRate * seconds
	if m.damageAccum < 0 {
		m.damageAccum = 0
	}

	target := m.enemyProximityAnxiety() + m.healthAnxiety() + m.damageAccum

	rate := m.cfg.GrowthRate
	if target < m.anxiety {
		rate = m.cfg.DecayRate
	}
	// First-order lag toward the target, never overshooting it.
	step := rate * seconds
	if step > 1 {
		step = 1
	}
	m.anxiety += (target - m.anxiety) * step
	if m.anxiety < 0 {
		m.anxiety = 0
	}
}

func (m *Monitor) enemyProximityAnxiety() float64 {
	if m.monitored == nil {
		return 0
	}
	return m.proximity.LivingWorthWithin(m.monitored.Position, m.cfg.ProximityRadius)
}

func (m *Monitor) healthAnxiety() float64 {
	if m.monitored == nil {
		return 0
	}
	frac := m.monitored.Stats.HealthFraction()
	if frac < 0 {
		frac = 0
	}
	return (1 - frac) * m.cfg.HealthWeight
}
