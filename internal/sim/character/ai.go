package character

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawler/internal/sim/action"
)

// AI holds a character's attacker-admission data: who it is attacking, who
// is attacking it, and how many simultaneous attackers it admits.
//
// Invariant: len(attackers) <= simultaneousAttackers at all times.
// Invariant: a character appears in its target's attacker set iff it is
// actively engaged against that target and the target is alive.
type AI struct {
	owner *Character

	target  *Character
	engaged bool

	attackers []*Character

	simultaneousAttackers        int
	defaultSimultaneousAttackers int

	battleCircleRadius        float64
	defaultBattleCircleRadius float64

	// attackActions are the action names the character draws from when told
	// to attack.
	attackActions []string

	logger *zap.Logger
}

func newAI(owner *Character, simultaneous int, battleCircle float64, attackActions []string, logger *zap.Logger) *AI {
	if simultaneous < 0 {
		logger.Error("simultaneous attackers must not be negative",
			zap.String("character", owner.Name),
			zap.Int("value", simultaneous),
		)
		simultaneous = 0
	}
	return &AI{
		owner:                        owner,
		simultaneousAttackers:        simultaneous,
		defaultSimultaneousAttackers: simultaneous,
		battleCircleRadius:           battleCircle,
		defaultBattleCircleRadius:    battleCircle,
		attackActions:                append([]string(nil), attackActions...),
		logger:                       logger,
	}
}

// CanBeAttacked reports whether the attacker set has spare capacity.
//
// Postcondition: Returns true iff len(attackers) < simultaneousAttackers.
func (a *AI) CanBeAttacked() bool {
	return len(a.attackers) < a.simultaneousAttackers
}

// AddAttacker admits c into the attacker set. At capacity, for a duplicate,
// or for a dead attacker this is a no-op returning false.
//
// Postcondition: len(attackers) <= simultaneousAttackers.
func (a *AI) AddAttacker(c *Character) bool {
	if c == nil || c.Stats.IsDead() || !a.CanBeAttacked() {
		return false
	}
	for _, existing := range a.attackers {
		if existing == c {
			return false
		}
	}
	a.attackers = append(a.attackers, c)
	return true
}

// RemoveAttacker removes c from the attacker set. Unknown attackers are
// ignored.
func (a *AI) RemoveAttacker(c *Character) {
	for i, existing := range a.attackers {
		if existing == c {
			a.attackers = append(a.attackers[:i], a.attackers[i+1:]...)
			return
		}
	}
}

// Attackers returns a snapshot of the attacker set.
func (a *AI) Attackers() []*Character {
	return append([]*Character(nil), a.attackers...)
}

// AttackerCount returns the number of characters currently attacking this one.
func (a *AI) AttackerCount() int { return len(a.attackers) }

// SimultaneousAttackers returns the admission capacity.
func (a *AI) SimultaneousAttackers() int { return a.simultaneousAttackers }

// SetSimultaneousAttackers sets the admission capacity. Negative values are
// an authoring mistake: logged and clamped to zero. Attackers already
// admitted are not evicted; the set drains naturally.
func (a *AI) SetSimultaneousAttackers(n int) {
	if n < 0 {
		a.logger.Error("simultaneous attackers must not be negative",
			zap.String("character", a.owner.Name),
			zap.Int("value", n),
		)
		n = 0
	}
	a.simultaneousAttackers = n
}

// DefaultSimultaneousAttackers returns the designer-default capacity.
func (a *AI) DefaultSimultaneousAttackers() int { return a.defaultSimultaneousAttackers }

// BattleCircleRadius returns the live battle-circle radius.
func (a *AI) BattleCircleRadius() float64 { return a.battleCircleRadius }

// ScaleBattleCircle sets the radius to pct times the designer default, so
// repeated scaling is idempotent against the baseline.
func (a *AI) ScaleBattleCircle(pct float64) {
	a.battleCircleRadius = a.defaultBattleCircleRadius * pct
}

// ResetScales restores the battle-circle radius and admission capacity to
// their defaults.
func (a *AI) ResetScales() {
	a.battleCircleRadius = a.defaultBattleCircleRadius
	a.simultaneousAttackers = a.defaultSimultaneousAttackers
}

// Target returns the character this one is set to attack, which may be nil.
func (a *AI) Target() *Character { return a.target }

// SetAttackTarget points this character at t without engaging. Any active
// engagement against a previous target is released first.
func (a *AI) SetAttackTarget(t *Character) {
	if a.target == t {
		return
	}
	a.Disengage()
	a.target = t
}

// IsAttacking reports whether this character is actively engaged against t.
func (a *AI) IsAttacking(t *Character) bool {
	return a.engaged && a.target == t
}

// Engage registers this character in its target's attacker set. A nil or
// dead target, a dead owner, or a full attacker set makes this a no-op
// returning false.
//
// Postcondition: Returns true iff the owner now occupies an attacker slot.
func (a *AI) Engage() bool {
	if a.engaged {
		return true
	}
	if a.owner.Stats.IsDead() || a.target == nil || a.target.Stats.IsDead() {
		return false
	}
	if !a.target.AI.AddAttacker(a.owner) {
		return false
	}
	a.engaged = true
	return true
}

// Disengage releases the owner's attacker slot, if any. Safe to call when
// not engaged.
func (a *AI) Disengage() {
	if !a.engaged {
		return
	}
	if a.target != nil {
		a.target.AI.RemoveAttacker(a.owner)
	}
	a.engaged = false
}

// StartAttack engages the target and performs one of the character's attack
// actions against it. Failing to claim an attacker slot, or having no
// usable attack action, is a soft failure.
//
// Postcondition: Returns true iff an attack action was admitted or queued.
func (a *AI) StartAttack() bool {
	if !a.Engage() {
		return false
	}
	tmpl := a.pickAttackAction()
	if tmpl == nil {
		a.Disengage()
		return false
	}
	a.owner.Control.PerformAction(tmpl, a.target, a.target.Position)
	return true
}

func (a *AI) pickAttackAction() *action.Action {
	if len(a.attackActions) == 0 {
		return nil
	}
	start := a.owner.sampler.Pick(len(a.attackActions))
	if start < 0 {
		return nil
	}
	for i := 0; i < len(a.attackActions); i++ {
		name := a.attackActions[(start+i)%len(a.attackActions)]
		if tmpl, ok := a.owner.Control.Action(name); ok {
			return tmpl
		}
	}
	a.logger.Error("no registered attack action",
		zap.String("character", a.owner.Name),
		zap.Strings("attack_actions", a.attackActions),
	)
	return nil
}

// handleOwnerDeath releases all admission bookkeeping when the owner dies:
// its own slot on its target, and every attacker engaged against it.
func (a *AI) handleOwnerDeath() {
	a.Disengage()
	for _, attacker := range a.Attackers() {
		attacker.AI.Disengage()
	}
	a.attackers = a.attackers[:0]
}
