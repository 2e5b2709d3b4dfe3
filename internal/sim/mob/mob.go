// Package mob provides the enemy group controller: a roster of enemy
// characters sharing one attack target, attacker selection under the
// target's admission control, off-screen culling, and baseline-relative
// stat scaling.
package mob

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/brawler/internal/sim/character"
	"github.com/cory-johannsen/brawler/internal/sim/event"
	"github.com/cory-johannsen/brawler/internal/sim/geom"
	"github.com/cory-johannsen/brawler/internal/sim/rng"
	"github.com/cory-johannsen/brawler/internal/sim/world"
)

// Config holds the mob's tuning and collaborators.
type Config struct {
	// AttackRate is how many attacker selections run per second.
	AttackRate float64
	// BucketSize is the coarse cell size of the proximity index, in world
	// units. Zero uses 4.
	BucketSize float64

	Visibility world.Visibility
	Sampler    *rng.Sampler
	Logger     *zap.Logger
}

// scales records the live multiplicative percentages applied against member
// baselines, so members joining later receive the same adaptation.
type scales struct {
	strength     float64
	defense      float64
	speed        float64
	battleCircle float64
}

// Mob is the group controller. It holds non-owning references into the
// roster; members are removed automatically on death.
type Mob struct {
	target  *character.Character
	members []*character.Character

	deathSubs   map[*character.Character]event.Subscription
	memberAdded event.Feed[*character.Character]

	attackRate        float64
	defaultAttackRate float64
	cooldown          time.Duration

	scales scales

	bucketSize float64
	buckets    map[geom.Cell][]*character.Character

	visibility world.Visibility
	sampler    *rng.Sampler
	logger     *zap.Logger
}

// NewMob creates a Mob attacking target.
//
// Precondition: cfg.AttackRate > 0; cfg.Visibility, cfg.Sampler, and
// cfg.Logger must be non-nil. target may be nil until SetAttackTarget.
func NewMob(target *character.Character, cfg Config) *Mob {
	bucket := cfg.BucketSize
	if bucket <= 0 {
		bucket = 4
	}
	return &Mob{
		target:            target,
		deathSubs:         make(map[*character.Character]event.Subscription),
		attackRate:        cfg.AttackRate,
		defaultAttackRate: cfg.AttackRate,
		scales:            scales{strength: 1, defense: 1, speed: 1, battleCircle: 1},
		bucketSize:        bucket,
		buckets:           make(map[geom.Cell][]*character.Character),
		visibility:        cfg.Visibility,
		sampler:           cfg.Sampler,
		logger:            cfg.Logger,
	}
}

// Target returns the shared attack target.
func (m *Mob) Target() *character.Character { return m.target }

// SetAttackTarget redirects the whole roster at t.
//
// Postcondition: every member's admission data points at t.
func (m *Mob) SetAttackTarget(t *character.Character) {
	m.target = t
	for _, member := range m.members {
		member.AI.SetAttackTarget(t)
	}
}

// Add joins c to the roster, wires its attack target to the mob's shared
// target, applies the live scaling, and registers death cleanup. Adding a
// dead character or a duplicate is a no-op.
func (m *Mob) Add(c *character.Character) {
	if c == nil || c.Stats.IsDead() {
		return
	}
	if _, exists := m.deathSubs[c]; exists {
		return
	}
	c.AI.SetAttackTarget(m.target)
	c.Stats.ScaleStrength(m.scales.strength)
	c.Stats.ScaleDefense(m.scales.defense)
	c.Stats.ScaleSpeed(m.scales.speed)
	c.AI.ScaleBattleCircle(m.scales.battleCircle)

	m.members = append(m.members, c)
	m.deathSubs[c] = c.Stats.OnDeath(func(dead *character.Character) {
		m.Remove(dead)
	})
	m.memberAdded.Publish(c)
}

// OnMemberAdded subscribes fn to roster joins.
func (m *Mob) OnMemberAdded(fn func(*character.Character)) event.Subscription {
	return m.memberAdded.Subscribe(fn)
}

// OffMemberAdded detaches a roster-join subscriber.
func (m *Mob) OffMemberAdded(sub event.Subscription) {
	m.memberAdded.Unsubscribe(sub)
}

// Remove drops c from the roster and detaches its death subscription.
// Unknown members are ignored.
func (m *Mob) Remove(c *character.Character) {
	sub, ok := m.deathSubs[c]
	if !ok {
		return
	}
	c.Stats.OffDeath(sub)
	delete(m.deathSubs, c)
	for i, member := range m.members {
		if member == c {
			m.members = append(m.members[:i], m.members[i+1:]...)
			break
		}
	}
}

// Members returns a snapshot of the roster.
func (m *Mob) Members() []*character.Character {
	return append([]*character.Character(nil), m.members...)
}

// LivingCount returns how many members are alive.
func (m *Mob) LivingCount() int {
	n := 0
	for _, member := range m.members {
		if !member.Stats.IsDead() {
			n++
		}
	}
	return n
}

// LivingWorth returns the summed worth of living members.
func (m *Mob) LivingWorth() int {
	worth := 0
	for _, member := range m.members {
		if !member.Stats.IsDead() {
			worth += member.Worth
		}
	}
	return worth
}

// Update advances the attacker-selection cooldown and refreshes the
// proximity index. Selection failures are soft: re-evaluated on the next
// cooldown expiry.
func (m *Mob) Update(dt time.Duration) {
	m.rebuildBuckets()

	if m.attackRate <= 0 {
		return
	}
	m.cooldown -= dt
	if m.cooldown > 0 {
		return
	}
	m.cooldown = time.Duration(float64(time.Second) / m.attackRate)
	m.selectAttacker()
}

// selectAttacker probes the roster from a random start for the first living
// member not already attacking the target, honoring the target's admission
// capacity.
func (m *Mob) selectAttacker() {
	if m.target == nil || m.target.Stats.IsDead() || len(m.members) == 0 {
		return
	}
	if !m.target.AI.CanBeAttacked() {
		return
	}
	start := m.sampler.Pick(len(m.members))
	for i := 0; i < len(m.members); i++ {
		member := m.members[(start+i)%len(m.members)]
		if member.Stats.IsDead() || member.AI.IsAttacking(m.target) {
			continue
		}
		if member.AI.StartAttack() {
			m.logger.Debug("attacker selected",
				zap.String("attacker", member.Name),
				zap.String("target", m.target.Name),
			)
			return
		}
	}
}

// DespawnOneOffscreen kills one living member whose position is outside the
// camera frustum, probing from a random start. Visible members are never
// removed. Returns false if every living member is on screen.
func (m *Mob) DespawnOneOffscreen() bool {
	if len(m.members) == 0 {
		return false
	}
	start := m.sampler.Pick(len(m.members))
	for i := 0; i < len(m.members); i++ {
		member := m.members[(start+i)%len(m.members)]
		if member.Stats.IsDead() || m.visibility.PositionViewable(member.Position) {
			continue
		}
		m.logger.Debug("despawning off-screen enemy", zap.String("enemy", member.Name))
		member.Stats.Kill()
		return true
	}
	return false
}

// SetEnemyStrength scales every member's strength to pct of its baseline.
//
// Postcondition: Repeated calls with the same pct are idempotent.
func (m *Mob) SetEnemyStrength(pct float64) {
	m.scales.strength = pct
	for _, member := range m.members {
		member.Stats.ScaleStrength(pct)
	}
}

// SetEnemyDefense scales every member's defense to pct of its baseline.
func (m *Mob) SetEnemyDefense(pct float64) {
	m.scales.defense = pct
	for _, member := range m.members {
		member.Stats.ScaleDefense(pct)
	}
}

// SetEnemySpeed scales every member's speed to pct of its baseline.
func (m *Mob) SetEnemySpeed(pct float64) {
	m.scales.speed = pct
	for _, member := range m.members {
		member.Stats.ScaleSpeed(pct)
	}
}

// SetBattleCircleRadius scales every member's battle-circle radius to pct
// of its baseline.
func (m *Mob) SetBattleCircleRadius(pct float64) {
	m.scales.battleCircle = pct
	for _, member := range m.members {
		member.AI.ScaleBattleCircle(pct)
	}
}

// SetAttackRate scales the selection rate to pct of its configured default.
func (m *Mob) SetAttackRate(pct float64) {
	m.attackRate = m.defaultAttackRate * pct
}

// SetSimultaneousAttackers scales the shared target's admission capacity to
// pct of its default, floored at one so the target never becomes
// unattackable.
func (m *Mob) SetSimultaneousAttackers(pct float64) {
	if m.target == nil {
		return
	}
	def := m.target.AI.DefaultSimultaneousAttackers()
	n := int(math.Round(float64(def) * pct))
	if n < 1 {
		n = 1
	}
	m.target.AI.SetSimultaneousAttackers(n)
}

// ResetScales restores all member baselines, the attack rate, and the
// target's admission capacity.
func (m *Mob) ResetScales() {
	m.scales = scales{strength: 1, defense: 1, speed: 1, battleCircle: 1}
	for _, member := range m.members {
		member.Stats.ResetScales()
		member.AI.ScaleBattleCircle(1)
	}
	m.attackRate = m.defaultAttackRate
	if m.target != nil {
		m.target.AI.SetSimultaneousAttackers(m.target.AI.DefaultSimultaneousAttackers())
	}
}

// AttackRate returns the live selection rate.
func (m *Mob) AttackRate() float64 { return m.attackRate }

func (m *Mob) bucketFor(pos geom.Vec2) geom.Cell {
	return geom.Cell{
		Col: int(math.Floor(pos.X / m.bucketSize)),
		Row: int(math.Floor(pos.Y / m.bucketSize)),
	}
}

func (m *Mob) rebuildBuckets() {
	for k := range m.buckets {
		delete(m.buckets, k)
	}
	for _, member := range m.members {
		if member.Stats.IsDead() {
			continue
		}
		b := m.bucketFor(member.Position)
		m.buckets[b] = append(m.buckets[b], member)
	}
}

// LivingWorthWithin returns the summed worth of living members within
// radius of center. Only buckets overlapping the query circle are
// inspected.
func (m *Mob) LivingWorthWithin(center geom.Vec2, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	min := m.bucketFor(geom.Vec2{X: center.X - radius, Y: center.Y - radius})
	max := m.bucketFor(geom.Vec2{X: center.X + radius, Y: center.Y + radius})

	var worth float64
	for col := min.Col; col <= max.Col; col++ {
		for row := min.Row; row <= max.Row; row++ {
			for _, member := range m.buckets[geom.Cell{Col: col, Row: row}] {
				if member.Stats.IsDead() {
					continue
				}
				if member.Position.Dist(center) <= radius {
					worth += float64(member.Worth)
				}
			}
		}
	}
	return worth
}
