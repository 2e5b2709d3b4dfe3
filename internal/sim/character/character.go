// Package character provides the combat character aggregate and its facets:
// stats (health/strength/defense/combo), attacker-admission AI, and the
// action-execution control state machine. A Character owns its facets
// exclusively; group controllers hold only non-owning references.
package character

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawler/internal/sim/action"
	"github.com/cory-johannsen/brawler/internal/sim/geom"
	"github.com/cory-johannsen/brawler/internal/sim/rng"
	"github.com/cory-johannsen/brawler/internal/sim/world"
)

// Kind distinguishes player-controlled characters from enemies.
type Kind int

const (
	// KindPlayer marks the monitored player character.
	KindPlayer Kind = iota
	// KindEnemy marks mob-controlled characters.
	KindEnemy
)

// Config assembles one character. Collaborators are injected here; there is
// no ambient lookup.
type Config struct {
	Name        string
	Kind        Kind
	ArchetypeID string
	// Worth is the number of standard enemy slots this character consumes.
	Worth    int
	Position geom.Vec2

	Stats StatsConfig
	// SimultaneousAttackers is the attacker-admission capacity.
	SimultaneousAttackers int
	// BattleCircleRadius is the engagement ring other characters keep.
	BattleCircleRadius float64

	// Actions is the character's bindable/performable action set, keyed by
	// template name.
	Actions map[string]*action.Action
	// AttackActions names the subset of Actions the AI draws from.
	AttackActions []string

	Animator world.Animator
	Mover    world.Mover
	Audio    world.Audio
	Sampler  *rng.Sampler
	Logger   *zap.Logger
}

// Character is the aggregate of one combatant's facets. Facets are
// constructed together and wired by direct reference.
type Character struct {
	// ID uniquely identifies this runtime instance.
	ID          string
	Name        string
	Kind        Kind
	ArchetypeID string
	Worth       int
	Position    geom.Vec2

	Stats   *Stats
	AI      *AI
	Control *Control

	animator world.Animator
	mover    world.Mover
	audio    world.Audio
	sampler  *rng.Sampler
}

// New constructs a Character with all facets wired.
//
// Precondition: cfg.Animator, cfg.Mover, cfg.Audio, cfg.Sampler, and
// cfg.Logger must be non-nil; cfg.Stats.MaxHealth > 0.
// Postcondition: Returns a living character at full health with a unique ID.
func New(cfg Config) *Character {
	c := &Character{
		ID:          uuid.NewString(),
		Name:        cfg.Name,
		Kind:        cfg.Kind,
		ArchetypeID: cfg.ArchetypeID,
		Worth:       cfg.Worth,
		Position:    cfg.Position,
		animator:    cfg.Animator,
		mover:       cfg.Mover,
		audio:       cfg.Audio,
		sampler:     cfg.Sampler,
	}
	logger := cfg.Logger.With(zap.String("character", cfg.Name))
	c.Stats = newStats(c, cfg.Stats, logger)
	c.AI = newAI(c, cfg.SimultaneousAttackers, cfg.BattleCircleRadius, cfg.AttackActions, logger)
	c.Control = newControl(c, cfg.Actions, logger)

	c.Stats.OnDeath(func(dead *Character) {
		dead.Control.CancelCurrentAction()
		dead.AI.handleOwnerDeath()
		dead.mover.Stop(dead.ID)
	})
	return c
}

// Update advances the character's timed state (force and hit-box
// countdowns) by dt.
func (c *Character) Update(dt time.Duration) {
	c.Control.Update(dt)
}

// reactToHit runs the interrupted transition: the in-flight action and its
// pending side effects are cancelled and any attacker slot is released.
// Knock-down hits behave the same at this layer; the reaction animation is
// the collaborator's concern.
func (c *Character) reactToHit() {
	c.Control.CancelCurrentAction()
	c.AI.Disengage()
}
