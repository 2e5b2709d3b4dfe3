package character

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawler/internal/sim/event"
)

// StatsConfig holds the designer-supplied stat defaults for one character.
type StatsConfig struct {
	MaxHealth float64
	Strength  float64
	Defense   float64
	Speed     float64
}

// HitInfo describes one connected hit box strike.
type HitInfo struct {
	BaseDamage float64
	KnocksDown bool
}

// DamageEvent is published on the dealer's damage feed after a hit resolves.
type DamageEvent struct {
	Amount float64
	Dealer *Character
	Victim *Character
}

// Stats holds a character's combat numbers. Strength, defense, and speed
// keep their designer defaults alongside the live values so difficulty
// scaling is always relative to the baseline, never cumulative.
//
// Invariant: health <= maxHealth; IsDead() iff health <= 0.
type Stats struct {
	owner *Character

	maxHealth float64
	health    float64

	strength float64
	defense  float64
	speed    float64

	defaultStrength float64
	defaultDefense  float64
	defaultSpeed    float64

	combo int

	damageDealt event.Feed[DamageEvent]
	death       event.Feed[*Character]

	logger *zap.Logger
}

func newStats(owner *Character, cfg StatsConfig, logger *zap.Logger) *Stats {
	return &Stats{
		owner:           owner,
		maxHealth:       cfg.MaxHealth,
		health:          cfg.MaxHealth,
		strength:        cfg.Strength,
		defense:         cfg.Defense,
		speed:           cfg.Speed,
		defaultStrength: cfg.Strength,
		defaultDefense:  cfg.Defense,
		defaultSpeed:    cfg.Speed,
		logger:          logger,
	}
}

// Health returns the current health.
func (s *Stats) Health() float64 { return s.health }

// MaxHealth returns the maximum health.
func (s *Stats) MaxHealth() float64 { return s.maxHealth }

// HealthFraction returns health as a fraction of maximum in [0, 1] for a
// living character; it can be negative after overkill damage.
func (s *Stats) HealthFraction() float64 {
	if s.maxHealth <= 0 {
		return 0
	}
	return s.health / s.maxHealth
}

// SetHealthFraction sets health to fraction * maxHealth. Fractions outside
// [0, 1] are an authoring mistake: logged at error level and clamped.
//
// Postcondition: health is in [0, maxHealth].
func (s *Stats) SetHealthFraction(fraction float64) {
	if fraction < 0 || fraction > 1 {
		s.logger.Error("health fraction out of range",
			zap.String("character", s.owner.Name),
			zap.Float64("fraction", fraction),
		)
		if fraction < 0 {
			fraction = 0
		} else {
			fraction = 1
		}
	}
	s.health = fraction * s.maxHealth
}

// Strength returns the live strength value.
func (s *Stats) Strength() float64 { return s.strength }

// Defense returns the live defense value.
func (s *Stats) Defense() float64 { return s.defense }

// Speed returns the live movement speed.
func (s *Stats) Speed() float64 { return s.speed }

// ScaleStrength sets strength to pct times the designer default.
//
// Postcondition: Calling twice with the same pct leaves the same value as
// calling once.
func (s *Stats) ScaleStrength(pct float64) { s.strength = s.defaultStrength * pct }

// ScaleDefense sets defense to pct times the designer default.
func (s *Stats) ScaleDefense(pct float64) { s.defense = s.defaultDefense * pct }

// ScaleSpeed sets speed to pct times the designer default.
func (s *Stats) ScaleSpeed(pct float64) { s.speed = s.defaultSpeed * pct }

// ResetScales restores strength, defense, and speed to their defaults.
func (s *Stats) ResetScales() {
	s.strength = s.defaultStrength
	s.defense = s.defaultDefense
	s.speed = s.defaultSpeed
}

// Combo returns the current combo counter.
func (s *Stats) Combo() int { return s.combo }

// IncrementCombo adds one to the combo counter.
func (s *Stats) IncrementCombo() { s.combo++ }

// ResetCombo clears the combo counter.
func (s *Stats) ResetCombo() { s.combo = 0 }

// IsDead reports whether health has reached zero.
func (s *Stats) IsDead() bool { return s.health <= 0 }

// TakeDamage subtracts amount from health. No floor is enforced; IsDead is
// the derived predicate. Publishes the death notification exactly once, on
// the hit that crosses zero.
//
// Precondition: amount >= 0.
func (s *Stats) TakeDamage(amount float64) {
	wasDead := s.IsDead()
	s.health -= amount
	if !wasDead && s.IsDead() {
		s.death.Publish(s.owner)
	}
}

// Heal raises health by amount, clamped to maxHealth. Healing a dead
// character is a no-op.
//
// Precondition: amount >= 0.
func (s *Stats) Heal(amount float64) {
	if s.IsDead() {
		return
	}
	s.health += amount
	if s.health > s.maxHealth {
		s.health = s.maxHealth
	}
}

// Kill drops health to zero through TakeDamage, so death observers fire.
func (s *Stats) Kill() {
	if s.IsDead() {
		return
	}
	s.TakeDamage(s.health)
}

// OnHit resolves an incoming strike from adversary against this character.
// Damage is hit.BaseDamage + adversary.strength / defense. A dead victim is
// a stale-reference race and degrades to a no-op. Zero or negative defense
// is an authoring mistake: logged and treated as 1.
//
// Postcondition: Returns the damage applied; the adversary's damage-dealt
// feed has been published; the victim's combo is reset and hit reaction
// (action cancellation, attacker-set detach) has run.
func (s *Stats) OnHit(hit HitInfo, adversary *Character) float64 {
	if s.IsDead() || adversary == nil || adversary.Stats.IsDead() {
		return 0
	}

	def := s.defense
	if def <= 0 {
		s.logger.Error("defense must be positive",
			zap.String("character", s.owner.Name),
			zap.Float64("defense", def),
		)
		def = 1
	}

	dmg := hit.BaseDamage + adversary.Stats.Strength()/def
	s.TakeDamage(dmg)
	s.ResetCombo()
	adversary.Stats.IncrementCombo()
	adversary.Stats.damageDealt.Publish(DamageEvent{
		Amount: dmg,
		Dealer: adversary,
		Victim: s.owner,
	})
	s.owner.reactToHit()
	return dmg
}

// OnDamageDealt subscribes fn to this character's damage-dealt feed.
func (s *Stats) OnDamageDealt(fn func(DamageEvent)) event.Subscription {
	return s.damageDealt.Subscribe(fn)
}

// OffDamageDealt detaches a damage-dealt subscriber.
func (s *Stats) OffDamageDealt(sub event.Subscription) {
	s.damageDealt.Unsubscribe(sub)
}

// OnDeath subscribes fn to this character's death notification.
func (s *Stats) OnDeath(fn func(*Character)) event.Subscription {
	return s.death.Subscribe(fn)
}

// OffDeath detaches a death subscriber.
func (s *Stats) OffDeath(sub event.Subscription) {
	s.death.Unsubscribe(sub)
}
