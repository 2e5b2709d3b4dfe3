package director_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawler/internal/sim/action"
	"github.com/cory-johannsen/brawler/internal/sim/character"
	"github.com/cory-johannsen/brawler/internal/sim/director"
	"github.com/cory-johannsen/brawler/internal/sim/geom"
	"github.com/cory-johannsen/brawler/internal/sim/mob"
	"github.com/cory-johannsen/brawler/internal/sim/rng"
	"github.com/cory-johannsen/brawler/internal/sim/spawn"
	"github.com/cory-johannsen/brawler/internal/sim/world"
)

// stubIntensity replaces the anxiety monitor with a directly settable signal.
type stubIntensity struct{ v float64 }

func (s *stubIntensity) Intensity() float64 { return s.v }

type directorFixture struct {
	director  *director.Director
	intensity *stubIntensity
	player    *character.Character
	enemies   *mob.Mob
	camera    *world.FixedCamera
}

func baseSettings() director.EpochSettings {
	return director.EpochSettings{
		MaxEnemies:             5,
		BuildUpSpawnRate:       1,
		PeakFadeDespawnRate:    0,
		SustainPeak:            director.DurationRange{Min: time.Second, Max: time.Second},
		Relax:                  director.DurationRange{Min: 2 * time.Second, Max: 2 * time.Second},
		PeakIntensityThreshold: 20,
		RelaxUpperBound:        5,
	}
}

func testArchetype() *spawn.Archetype {
	return &spawn.Archetype{
		ID:                    "street_tough",
		Name:                  "Street Tough",
		Worth:                 1,
		DifficultyRequirement: 1,
		MaxHealth:             30,
		Strength:              6,
		Defense:               3,
		Speed:                 3,
		SimultaneousAttackers: 1,
		BattleCircleRadius:    2,
		Actions:               []string{"claw"},
		AttackActions:         []string{"claw"},
	}
}

// newFixture assembles a director over a 20x6 grid. The camera views x in
// [0, 8), the player stands at column 4, and spawns land off screen at
// column 8.
func newFixture(t testing.TB, cfg director.Config) *directorFixture {
	t.Helper()
	grid := world.NewHeadlessGrid(20, 6, 1)
	camera := world.NewFixedCamera(geom.Vec2{}, geom.Vec2{X: 7.9, Y: 6}, grid)
	sampler := rng.NewSampler(rng.NewSeededSource(23), zap.NewNop())

	claw := &action.Action{
		Name:      "claw",
		Sequences: []string{"claw"},
		HitBoxes: []action.HitBox{{
			Anchor:     "hand_r",
			Activation: action.ActivationForced,
			OpenFrame:  2,
			CloseFrame: 5,
			BaseDamage: 4,
		}},
	}
	registry, err := action.NewRegistry([]*action.Action{claw})
	require.NoError(t, err)

	player := character.New(character.Config{
		Name:                  "player",
		Kind:                  character.KindPlayer,
		Position:              geom.Vec2{X: 4.5, Y: 2.5},
		Stats:                 character.StatsConfig{MaxHealth: 100, Strength: 10, Defense: 5, Speed: 4},
		SimultaneousAttackers: 3,
		BattleCircleRadius:    2.5,
		Animator:              &world.RecordingAnimator{},
		Mover:                 &world.RecordingMover{},
		Audio:                 world.NullAudio{},
		Sampler:               sampler,
		Logger:                zap.NewNop(),
	})

	enemies := mob.NewMob(player, mob.Config{
		AttackRate: 1,
		Visibility: camera,
		Sampler:    sampler,
		Logger:     zap.NewNop(),
	})

	spawner := spawn.NewSpawner([]*spawn.Archetype{testArchetype()}, player, spawn.Config{
		PreferredDistance: 3,
		SearchBound:       3,
		Grid:              grid,
		Visibility:        camera,
		Actions:           registry,
		Animator:          &world.RecordingAnimator{},
		Mover:             &world.RecordingMover{},
		Audio:             world.NullAudio{},
		Sampler:           sampler,
		Logger:            zap.NewNop(),
	})

	intensity := &stubIntensity{}
	d := director.NewDirector(cfg, player, enemies, spawner, intensity, sampler, zap.NewNop())
	return &directorFixture{director: d, intensity: intensity, player: player, enemies: enemies, camera: camera}
}

func defaultConfig() director.Config {
	return director.Config{
		AdaptiveStats:    true,
		AdaptiveBehavior: true,
		Base:             baseSettings(),
	}
}

func TestDirector_StartsInBuildUpEpochOne(t *testing.T) {
	f := newFixture(t, defaultConfig())
	assert.Equal(t, director.PhaseBuildUp, f.director.Phase())
	assert.Equal(t, 1, f.director.Epoch())
	assert.Equal(t, 0, f.director.EnemiesSpawned())
}

func TestDirector_FirstTickSpawns(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.director.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, f.director.EnemiesSpawned(), "spawn timer is pre-armed at session start")
	assert.Equal(t, 1, f.enemies.LivingCount())
}

func TestDirector_SpawnIntervalFollowsRate(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.director.Advance(100 * time.Millisecond) // first spawn
	f.director.Advance(800 * time.Millisecond)
	assert.Equal(t, 1, f.director.EnemiesSpawned(), "one-per-second rate gates the second spawn")
	f.director.Advance(200 * time.Millisecond)
	assert.Equal(t, 2, f.director.EnemiesSpawned())
}

func TestDirector_SpawningStopsAtWorthBudget(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.director.Advance(20 * time.Second)
	assert.Equal(t, director.PhaseBuildUp, f.director.Phase(), "intensity never reached the peak")
	assert.Equal(t, 5, f.director.EnemiesSpawned())
	assert.Equal(t, 5, f.enemies.LivingCount())
}

func TestDirector_SpawnQuotaIsPerEpoch(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.director.Advance(10 * time.Second)
	require.Equal(t, 5, f.director.EnemiesSpawned())

	f.enemies.Members()[0].Stats.Kill()
	f.director.Advance(2 * time.Second)
	assert.Equal(t, 5, f.director.EnemiesSpawned(), "a death does not reopen the epoch's quota")
	assert.Equal(t, 4, f.enemies.LivingCount())
}

func TestDirector_WaveClearedSkipsToRelax(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.director.Advance(10 * time.Second)
	require.Equal(t, 5, f.director.EnemiesSpawned())

	for _, m := range f.enemies.Members() {
		m.Stats.Kill()
	}
	f.director.Advance(100 * time.Millisecond)
	assert.Equal(t, director.PhaseRelax, f.director.Phase())
}

func TestDirector_PeakThresholdEntersSustain(t *testing.T) {
	f := newFixture(t, defaultConfig())
	var changes []director.PhaseChange
	f.director.OnPhaseChange(func(c director.PhaseChange) { changes = append(changes, c) })

	f.intensity.v = 19.9
	f.director.Advance(100 * time.Millisecond)
	assert.Equal(t, director.PhaseBuildUp, f.director.Phase())

	f.intensity.v = 20
	f.director.Advance(100 * time.Millisecond)
	assert.Equal(t, director.PhaseSustainPeak, f.director.Phase())
	require.Len(t, changes, 1)
	assert.Equal(t, director.PhaseBuildUp, changes[0].From)
	assert.Equal(t, director.PhaseSustainPeak, changes[0].To)
	assert.Equal(t, 1, changes[0].Epoch)
}

func TestDirector_SustainHoldsForSampledDuration(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.intensity.v = 25
	f.director.Advance(100 * time.Millisecond)
	require.Equal(t, director.PhaseSustainPeak, f.director.Phase())

	f.director.Advance(900 * time.Millisecond)
	assert.Equal(t, director.PhaseSustainPeak, f.director.Phase())
	f.director.Advance(100 * time.Millisecond)
	assert.Equal(t, director.PhasePeakFade, f.director.Phase())
}

func enterPeakFade(t *testing.T, f *directorFixture) {
	t.Helper()
	f.intensity.v = 25
	f.director.Advance(100 * time.Millisecond)
	f.director.Advance(time.Second)
	require.Equal(t, director.PhasePeakFade, f.director.Phase())
}

func TestDirector_PeakFadeAdaptsDifficultyDown(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.director.Advance(2 * time.Second) // seed a couple of enemies
	member := f.enemies.Members()[0]
	require.Equal(t, 6.0, member.Stats.Strength())

	enterPeakFade(t, f)
	f.intensity.v = 40 // twice the peak threshold
	f.director.Advance(100 * time.Millisecond)

	assert.Equal(t, 3.0, member.Stats.Strength(), "strength halves at double intensity")
	assert.Equal(t, 1.5, member.Stats.Defense())
	assert.Equal(t, 1.5, member.Stats.Speed())
	assert.InDelta(t, 2*1.7, f.enemies.AttackRate(), 1e-9)
	assert.Equal(t, 2.2, member.AI.BattleCircleRadius(), "circle widens to back enemies off")
	assert.Equal(t, 2, f.player.AI.SimultaneousAttackers())
}

func TestDirector_AdaptationRespectsConfigGates(t *testing.T) {
	cfg := defaultConfig()
	cfg.AdaptiveStats = false
	cfg.AdaptiveBehavior = false
	f := newFixture(t, cfg)
	f.director.Advance(2 * time.Second)
	member := f.enemies.Members()[0]

	enterPeakFade(t, f)
	f.intensity.v = 40
	f.director.Advance(100 * time.Millisecond)

	assert.Equal(t, 6.0, member.Stats.Strength())
	assert.Equal(t, 1.0, f.enemies.AttackRate())
	assert.Equal(t, 3, f.player.AI.SimultaneousAttackers())
}

func TestDirector_PeakFadeDespawnsUntilEmptyThenRelaxes(t *testing.T) {
	cfg := defaultConfig()
	cfg.Base.PeakFadeDespawnRate = 10
	f := newFixture(t, cfg)
	f.director.Advance(3 * time.Second)
	spawned := f.enemies.LivingCount()
	require.Greater(t, spawned, 0)

	enterPeakFade(t, f)
	// Every spawn landed off screen, so at ten despawns per second the mob
	// thins by one per tick until empty, which ends the phase.
	f.director.Advance(time.Duration(spawned+1) * 100 * time.Millisecond)
	assert.Equal(t, 0, f.enemies.LivingCount())
	assert.Equal(t, director.PhaseRelax, f.director.Phase())
}

func TestDirector_PeakFadeEndsWhenIntensityDrops(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.director.Advance(2 * time.Second)
	enterPeakFade(t, f)

	f.intensity.v = 10
	f.director.Advance(100 * time.Millisecond)
	assert.Equal(t, director.PhasePeakFade, f.director.Phase(), "still above the relax bound")

	f.intensity.v = 5
	f.director.Advance(100 * time.Millisecond)
	assert.Equal(t, director.PhaseRelax, f.director.Phase())
}

func TestDirector_RelaxHealsPlayerToFull(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.player.Stats.TakeDamage(40)
	f.director.Advance(2 * time.Second)
	enterPeakFade(t, f)
	f.intensity.v = 0
	f.director.Advance(100 * time.Millisecond)
	require.Equal(t, director.PhaseRelax, f.director.Phase())

	f.director.Advance(time.Second)
	assert.InDelta(t, 80, f.player.Stats.Health(), 2.5, "healing is spread across the phase")
	f.director.Advance(time.Second)
	assert.Equal(t, 100.0, f.player.Stats.Health())
}

func TestDirector_EpochRolloverEscalatesAndResets(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.director.Advance(2 * time.Second)
	member := f.enemies.Members()[0]
	enterPeakFade(t, f)
	f.intensity.v = 40
	f.director.Advance(100 * time.Millisecond)
	require.Less(t, member.Stats.Strength(), 6.0)

	f.intensity.v = 0
	f.director.Advance(100*time.Millisecond + 2*time.Second)

	assert.Equal(t, 2, f.director.Epoch())
	assert.Equal(t, director.PhaseBuildUp, f.director.Phase())
	assert.Equal(t, 0, f.director.EnemiesSpawned())
	assert.Equal(t, 8, f.director.Settings().MaxEnemies)
	assert.Equal(t, 23.0, f.director.Settings().PeakIntensityThreshold)
	assert.Equal(t, 6.0, member.Stats.Strength(), "adaptation resets at rollover")
}

func TestDirector_PauseFreezesControlLoop(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.director.SetPaused(true)
	f.intensity.v = 50
	f.director.Advance(30 * time.Second)

	assert.Equal(t, director.PhaseBuildUp, f.director.Phase())
	assert.Equal(t, 0, f.director.EnemiesSpawned())

	f.director.SetPaused(false)
	f.director.Advance(100 * time.Millisecond)
	assert.Equal(t, director.PhaseSustainPeak, f.director.Phase())
}

func TestDirector_Reset(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.director.Advance(2 * time.Second)
	enterPeakFade(t, f)
	f.intensity.v = 0
	f.director.Advance(100*time.Millisecond + 2*time.Second)
	require.Equal(t, 2, f.director.Epoch())

	f.director.Reset()
	assert.Equal(t, 1, f.director.Epoch())
	assert.Equal(t, director.PhaseBuildUp, f.director.Phase())
	assert.Equal(t, 0, f.director.EnemiesSpawned())
	assert.Equal(t, 5, f.director.Settings().MaxEnemies)

	f.intensity.v = 0
	f.director.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, f.director.EnemiesSpawned(), "spawn timer re-arms on reset")
}

// TestDirector_FullCycle drives one complete session epoch end to end: five
// staggered spawns, the peak, the fade, recovery, and the escalated second
// epoch.
func TestDirector_FullCycle(t *testing.T) {
	f := newFixture(t, defaultConfig())
	var transitions []string
	f.director.OnPhaseChange(func(c director.PhaseChange) {
		transitions = append(transitions, c.From.String()+"->"+c.To.String())
	})

	// BuildUp: one worth-1 enemy per second until the budget of five fills.
	for i := 1; i <= 5; i++ {
		f.director.Advance(time.Second)
		assert.Equal(t, i, f.director.EnemiesSpawned(), "second %d", i)
	}
	assert.Equal(t, 5, f.enemies.LivingCount())
	assert.Equal(t, director.PhaseBuildUp, f.director.Phase())

	// Pressure builds until intensity crosses the peak threshold.
	f.intensity.v = 21
	f.director.Advance(100 * time.Millisecond)
	require.Equal(t, director.PhaseSustainPeak, f.director.Phase())

	// The peak holds for its sampled duration, then fades.
	f.director.Advance(time.Second)
	require.Equal(t, director.PhasePeakFade, f.director.Phase())

	// The fade thins the off-screen mob and the signal dies down.
	f.intensity.v = 3
	f.director.Advance(100 * time.Millisecond)
	require.Equal(t, director.PhaseRelax, f.director.Phase())

	// Recovery runs its course and the next epoch opens escalated.
	f.director.Advance(2 * time.Second)
	assert.Equal(t, 2, f.director.Epoch())
	assert.Equal(t, director.PhaseBuildUp, f.director.Phase())
	assert.Equal(t, 8, f.director.Settings().MaxEnemies)

	assert.Equal(t, []string{
		"build_up->sustain_peak",
		"sustain_peak->peak_fade",
		"peak_fade->relax",
		"relax->build_up",
	}, transitions)
}
