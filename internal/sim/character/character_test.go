package character_test

import (
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/brawler/internal/sim/action"
	"github.com/cory-johannsen/brawler/internal/sim/character"
	"github.com/cory-johannsen/brawler/internal/sim/geom"
	"github.com/cory-johannsen/brawler/internal/sim/rng"
	"github.com/cory-johannsen/brawler/internal/sim/world"
)

// harness bundles one test character with its recording collaborators.
type harness struct {
	char     *character.Character
	animator *world.RecordingAnimator
	mover    *world.RecordingMover
}

type charOpts struct {
	name          string
	maxHealth     float64
	strength      float64
	defense       float64
	simultaneous  int
	battleCircle  float64
	actions       map[string]*action.Action
	attackActions []string
}

func defaultOpts() charOpts {
	return charOpts{
		name:         "fighter",
		maxHealth:    100,
		strength:     10,
		defense:      5,
		simultaneous: 3,
		battleCircle: 2.5,
	}
}

func newHarness(t rapid.TB, opts charOpts) *harness {
	t.Helper()
	animator := &world.RecordingAnimator{}
	mover := &world.RecordingMover{}
	c := character.New(character.Config{
		Name:     opts.name,
		Kind:     character.KindEnemy,
		Position: geom.Vec2{X: 1, Y: 1},
		Stats: character.StatsConfig{
			MaxHealth: opts.maxHealth,
			Strength:  opts.strength,
			Defense:   opts.defense,
			Speed:     4,
		},
		SimultaneousAttackers: opts.simultaneous,
		BattleCircleRadius:    opts.battleCircle,
		Actions:               opts.actions,
		AttackActions:         opts.attackActions,
		Animator:              animator,
		Mover:                 mover,
		Audio:                 world.NullAudio{},
		Sampler:               rng.NewSampler(rng.NewSeededSource(1), zap.NewNop()),
		Logger:                zap.NewNop(),
	})
	return &harness{char: c, animator: animator, mover: mover}
}

func attackAction(name string, damage float64) *action.Action {
	return &action.Action{
		Name:      name,
		Sequences: []string{name + "_seq"},
		HitBoxes: []action.HitBox{
			{Anchor: "hand_r", Activation: action.ActivationForced, OpenFrame: 4, CloseFrame: 8, BaseDamage: damage},
		},
	}
}
