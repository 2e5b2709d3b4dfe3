package spawn

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawler/internal/sim/action"
	"github.com/cory-johannsen/brawler/internal/sim/character"
	"github.com/cory-johannsen/brawler/internal/sim/geom"
	"github.com/cory-johannsen/brawler/internal/sim/mob"
	"github.com/cory-johannsen/brawler/internal/sim/rng"
	"github.com/cory-johannsen/brawler/internal/sim/world"
)

// Config holds the spawner's tuning and collaborators.
type Config struct {
	// PreferredDistance is the cell distance ahead of the player where
	// placement is attempted first.
	PreferredDistance int
	// SearchBound is how many additional cells beyond PreferredDistance
	// the placement probe examines, ahead then behind.
	SearchBound int

	Grid       world.Grid
	Visibility world.Visibility
	Actions    *action.Registry

	Animator world.Animator
	Mover    world.Mover
	Audio    world.Audio
	Sampler  *rng.Sampler
	Logger   *zap.Logger
}

// Spawner selects enemies from a fixed archetype roster and places them in
// off-screen traversable cells relative to the player.
type Spawner struct {
	roster []*Archetype
	player *character.Character
	cfg    Config

	spawned int

	logger *zap.Logger
}

// NewSpawner creates a Spawner over the given roster, placing enemies
// relative to player.
//
// Precondition: roster must be non-empty; player and all Config
// collaborators must be non-nil; cfg.PreferredDistance >= 1.
func NewSpawner(roster []*Archetype, player *character.Character, cfg Config) *Spawner {
	return &Spawner{
		roster: roster,
		player: player,
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// SpawnEnemy selects an archetype satisfying difficultyLevel and maxWorth
// via randomized linear probing, places an instance off screen, and joins
// it to enemies. Both "no qualifying archetype" and "no valid placement"
// are soft failures returning (nil, false); the director simply retries on
// a later tick.
//
// Postcondition: On success the returned character is alive, a member of
// enemies, and positioned in a traversable, non-viewable cell.
func (s *Spawner) SpawnEnemy(difficultyLevel, maxWorth int, enemies *mob.Mob) (*character.Character, bool) {
	arch := s.selectArchetype(difficultyLevel, maxWorth)
	if arch == nil {
		s.logger.Debug("no spawn candidate",
			zap.Int("difficulty", difficultyLevel),
			zap.Int("max_worth", maxWorth),
		)
		return nil, false
	}

	pos, ok := s.placement()
	if !ok {
		s.logger.Debug("no off-screen placement found", zap.String("archetype", arch.ID))
		return nil, false
	}

	enemy := s.build(arch, pos)
	enemies.Add(enemy)
	s.spawned++
	s.logger.Info("enemy spawned",
		zap.String("archetype", arch.ID),
		zap.Int("worth", arch.Worth),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y),
	)
	return enemy, true
}

// TotalSpawned returns how many enemies this spawner has produced over the
// session.
func (s *Spawner) TotalSpawned() int { return s.spawned }

// selectArchetype probes the roster from a random start index for the
// first archetype whose difficulty requirement and worth fit the bounds.
func (s *Spawner) selectArchetype(difficultyLevel, maxWorth int) *Archetype {
	if len(s.roster) == 0 {
		return nil
	}
	start := s.cfg.Sampler.Pick(len(s.roster))
	for i := 0; i < len(s.roster); i++ {
		a := s.roster[(start+i)%len(s.roster)]
		if a.DifficultyRequirement <= difficultyLevel && a.Worth <= maxWorth {
			return a
		}
	}
	return nil
}

// placement finds a traversable, non-viewable cell at the preferred
// distance ahead of the player, widening the probe up to the search bound,
// then repeats the probe behind the player.
func (s *Spawner) placement() (geom.Vec2, bool) {
	playerCell, ok := s.cfg.Grid.CellFromPosition(s.player.Position)
	if !ok {
		s.logger.Error("player position outside level",
			zap.Float64("x", s.player.Position.X),
			zap.Float64("y", s.player.Position.Y),
		)
		return geom.Vec2{}, false
	}

	for _, sign := range []int{1, -1} {
		for extra := 0; extra <= s.cfg.SearchBound; extra++ {
			dist := (s.cfg.PreferredDistance + extra) * sign
			cell, ok := s.cfg.Grid.CellAtDistance(playerCell, dist)
			if !ok {
				break
			}
			if !s.cfg.Grid.Traversable(cell) || s.cfg.Visibility.CellViewable(cell) {
				continue
			}
			return s.cfg.Grid.PositionForCell(cell), true
		}
	}
	return geom.Vec2{}, false
}

// build constructs a live character from arch at pos, granting its action
// set from the registry. Action names missing from the registry are an
// authoring mistake: logged and skipped.
func (s *Spawner) build(arch *Archetype, pos geom.Vec2) *character.Character {
	actions := make(map[string]*action.Action, len(arch.Actions))
	for _, name := range arch.Actions {
		tmpl, ok := s.cfg.Actions.Get(name)
		if !ok {
			s.logger.Error("unregistered action on archetype",
				zap.String("archetype", arch.ID),
				zap.String("action", name),
			)
			continue
		}
		actions[name] = tmpl
	}

	return character.New(character.Config{
		Name:        arch.Name,
		Kind:        character.KindEnemy,
		ArchetypeID: arch.ID,
		Worth:       arch.Worth,
		Position:    pos,
		Stats: character.StatsConfig{
			MaxHealth: arch.MaxHealth,
			Strength:  arch.Strength,
			Defense:   arch.Defense,
			Speed:     arch.Speed,
		},
		SimultaneousAttackers: arch.SimultaneousAttackers,
		BattleCircleRadius:    arch.BattleCircleRadius,
		Actions:               actions,
		AttackActions:         arch.AttackActions,
		Animator:              s.cfg.Animator,
		Mover:                 s.cfg.Mover,
		Audio:                 s.cfg.Audio,
		Sampler:               s.cfg.Sampler,
		Logger:                s.cfg.Logger,
	})
}
