// Package main provides the headless simulation server: it assembles one
// play session (player, mob, monitor, spawner, director, scripts) and
// drives the fixed-step loop for a configurable duration.
package main

import (
	"flag"
	"log"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawler/internal/config"
	"github.com/cory-johannsen/brawler/internal/observability"
	"github.com/cory-johannsen/brawler/internal/scripting"
	"github.com/cory-johannsen/brawler/internal/sim/action"
	"github.com/cory-johannsen/brawler/internal/sim/anxiety"
	"github.com/cory-johannsen/brawler/internal/sim/character"
	"github.com/cory-johannsen/brawler/internal/sim/director"
	"github.com/cory-johannsen/brawler/internal/sim/geom"
	"github.com/cory-johannsen/brawler/internal/sim/mob"
	"github.com/cory-johannsen/brawler/internal/sim/rng"
	"github.com/cory-johannsen/brawler/internal/sim/spawn"
	"github.com/cory-johannsen/brawler/internal/sim/world"
)

// actionPlayTime is how long the headless host lets an animation "play"
// before signaling natural completion back into character control.
const actionPlayTime = 600 * time.Millisecond

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	actionsDir := flag.String("actions-dir", "content/actions", "path to action template YAML directory")
	enemiesDir := flag.String("enemies-dir", "content/enemies", "path to enemy archetype YAML directory")
	scriptDir := flag.String("scripts", "content/scripts/arena", "directory of arena Lua hooks; empty = scripting disabled")
	seed := flag.Int64("seed", 0, "deterministic randomness seed; 0 = crypto source")
	duration := flag.Duration("duration", 60*time.Second, "simulated session length")
	step := flag.Duration("step", 16*time.Millisecond, "fixed frame step")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src rng.Source
	if *seed != 0 {
		src = rng.NewSeededSource(*seed)
		logger.Info("using seeded randomness", zap.Int64("seed", *seed))
	} else {
		src = rng.NewCryptoSource()
	}
	sampler := rng.NewSampler(src, logger)

	// Headless collaborators: a side-view strip level with a camera over
	// its left end.
	grid := world.NewHeadlessGrid(64, 8, 1)
	camera := world.NewFixedCamera(geom.Vec2{}, geom.Vec2{X: 16, Y: 8}, grid)
	animator := &world.RecordingAnimator{}
	mover := &world.RecordingMover{}
	audio := world.NullAudio{}

	// Load content.
	contentStart := time.Now()
	templates, err := action.LoadFromDir(*actionsDir)
	if err != nil {
		logger.Fatal("loading action templates", zap.Error(err))
	}
	registry, err := action.NewRegistry(templates)
	if err != nil {
		logger.Fatal("building action registry", zap.Error(err))
	}
	archetypes, err := spawn.LoadArchetypesFromDir(*enemiesDir)
	if err != nil {
		logger.Fatal("loading enemy archetypes", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("actions", len(templates)),
		zap.Int("archetypes", len(archetypes)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// The player gets the full action set; its attack actions are every
	// template carrying a hit box.
	playerActions := make(map[string]*action.Action, len(templates))
	var playerAttacks []string
	for _, t := range templates {
		playerActions[t.Name] = t
		if len(t.HitBoxes) > 0 {
			playerAttacks = append(playerAttacks, t.Name)
		}
	}

	player := character.New(character.Config{
		Name:     "player",
		Kind:     character.KindPlayer,
		Position: geom.Vec2{X: 8, Y: 4},
		Stats: character.StatsConfig{
			MaxHealth: cfg.Player.MaxHealth,
			Strength:  cfg.Player.Strength,
			Defense:   cfg.Player.Defense,
			Speed:     cfg.Player.Speed,
		},
		SimultaneousAttackers: cfg.Player.SimultaneousAttackers,
		BattleCircleRadius:    cfg.Player.BattleCircleRadius,
		Actions:               playerActions,
		AttackActions:         playerAttacks,
		Animator:              animator,
		Mover:                 mover,
		Audio:                 audio,
		Sampler:               sampler,
		Logger:                logger,
	})

	enemies := mob.NewMob(player, mob.Config{
		AttackRate: cfg.Mob.AttackRate,
		BucketSize: cfg.Mob.BucketSize,
		Visibility: camera,
		Sampler:    sampler,
		Logger:     logger,
	})

	monitor := anxiety.NewMonitor(anxiety.Config{
		ProximityRadius:          cfg.Anxiety.ProximityRadius,
		HealthWeight:             cfg.Anxiety.HealthWeight,
		DamageInflictedDecayRate: cfg.Anxiety.DamageDecayRate,
		GrowthRate:               cfg.Anxiety.GrowthRate,
		DecayRate:                cfg.Anxiety.DecayRate,
	}, enemies, logger)
	monitor.SetCharacter(player)

	spawner := spawn.NewSpawner(archetypes, player, spawn.Config{
		PreferredDistance: cfg.Spawn.PreferredDistance,
		SearchBound:       cfg.Spawn.SearchBound,
		Grid:              grid,
		Visibility:        camera,
		Actions:           registry,
		Animator:          animator,
		Mover:             mover,
		Audio:             audio,
		Sampler:           sampler,
		Logger:            logger,
	})

	pacing := director.NewDirector(director.Config{
		TickInterval:     cfg.Director.TickInterval,
		AdaptiveStats:    cfg.Director.AdaptiveStats,
		AdaptiveBehavior: cfg.Director.AdaptiveBehavior,
		Base: director.EpochSettings{
			MaxEnemies:          cfg.Director.Epoch.MaxEnemies,
			BuildUpSpawnRate:    cfg.Director.Epoch.BuildUpSpawnRate,
			PeakFadeDespawnRate: cfg.Director.Epoch.PeakFadeDespawnRate,
			SustainPeak: director.DurationRange{
				Min: cfg.Director.Epoch.SustainPeakMin,
				Max: cfg.Director.Epoch.SustainPeakMax,
			},
			Relax: director.DurationRange{
				Min: cfg.Director.Epoch.RelaxMin,
				Max: cfg.Director.Epoch.RelaxMax,
			},
			PeakIntensityThreshold: cfg.Director.Epoch.PeakIntensityThreshold,
			RelaxUpperBound:        cfg.Director.Epoch.RelaxUpperBound,
		},
	}, player, enemies, spawner, monitor, sampler, logger)

	scripts := wireScripting(*scriptDir, logger, player, enemies, monitor, pacing)
	if scripts != nil {
		defer scripts.Close()
	}

	logger.Info("session assembled", zap.Duration("elapsed", time.Since(start)))

	runSession(*duration, *step, player, enemies, monitor, pacing, logger)

	logger.Info("session complete",
		zap.Int("epoch", pacing.Epoch()),
		zap.String("phase", pacing.Phase().String()),
		zap.Float64("intensity", monitor.Anxiety()),
		zap.Float64("player_health", player.Stats.Health()),
		zap.Int("living_enemies", enemies.LivingCount()),
	)
}

// wireScripting loads the arena hook VM and subscribes the combat and
// pacing feeds to it. Returns nil when scripting is disabled.
func wireScripting(scriptDir string, logger *zap.Logger, player *character.Character, enemies *mob.Mob, monitor *anxiety.Monitor, pacing *director.Director) *scripting.Manager {
	if scriptDir == "" {
		return nil
	}
	scripts := scripting.NewManager(logger)
	if err := scripts.LoadArena("arena", scriptDir, 0); err != nil {
		logger.Fatal("loading arena scripts", zap.Error(err))
	}

	scripts.Intensity = monitor.Intensity
	scripts.GetCharacter = func(uid string) *scripting.CharacterInfo {
		c := findCharacter(uid, player, enemies)
		if c == nil {
			return nil
		}
		return &scripting.CharacterInfo{
			UID:       c.ID,
			Name:      c.Name,
			Health:    c.Stats.Health(),
			MaxHealth: c.Stats.MaxHealth(),
			Strength:  c.Stats.Strength(),
			Defense:   c.Stats.Defense(),
			Combo:     c.Stats.Combo(),
		}
	}

	hookHit := func(e character.DamageEvent) {
		scripts.CallHook("arena", "on_character_hit",
			lua.LString(e.Dealer.ID), lua.LString(e.Victim.ID), lua.LNumber(e.Amount))
	}
	hookDeath := func(c *character.Character) {
		scripts.CallHook("arena", "on_character_death", lua.LString(c.ID))
	}

	player.Stats.OnDamageDealt(hookHit)
	player.Stats.OnDeath(hookDeath)
	enemies.OnMemberAdded(func(c *character.Character) {
		scripts.CallHook("arena", "on_enemy_spawned", lua.LString(c.ID))
		c.Stats.OnDamageDealt(hookHit)
		c.Stats.OnDeath(hookDeath)
	})
	pacing.OnPhaseChange(func(pc director.PhaseChange) {
		scripts.CallHook("arena", "on_phase_change",
			lua.LString(pc.From.String()), lua.LString(pc.To.String()), lua.LNumber(pc.Epoch))
	})
	return scripts
}

func findCharacter(uid string, player *character.Character, enemies *mob.Mob) *character.Character {
	if player.ID == uid {
		return player
	}
	for _, m := range enemies.Members() {
		if m.ID == uid {
			return m
		}
	}
	return nil
}

// runSession drives the fixed-step loop: character timers, mob selection,
// the anxiety signal, and the director's own 10 Hz accumulator. It also
// plays the host's part of the collaborator contract, signaling animation
// completion and delivering in-range hit-box strikes.
func runSession(duration, step time.Duration, player *character.Character, enemies *mob.Mob, monitor *anxiety.Monitor, pacing *director.Director, logger *zap.Logger) {
	playTime := make(map[*character.Character]time.Duration)

	for elapsed := time.Duration(0); elapsed < duration; elapsed += step {
		roster := enemies.Members()

		player.Update(step)
		for _, enemy := range roster {
			enemy.Update(step)
		}

		// Host glue: finish animations after their nominal play time and
		// land any open hit boxes on targets inside the battle circle.
		advanceActor(player, step, playTime)
		for _, enemy := range roster {
			advanceActor(enemy, step, playTime)
		}
		deliverHits(player, roster)

		enemies.Update(step)
		monitor.Update(step)
		pacing.Advance(step)
	}
}

func advanceActor(c *character.Character, step time.Duration, playTime map[*character.Character]time.Duration) {
	if c.Control.CurrentAction() == nil {
		delete(playTime, c)
		return
	}
	playTime[c] += step
	if playTime[c] >= actionPlayTime {
		delete(playTime, c)
		c.Control.OnAnimationComplete()
	}
}

// deliverHits lands every open hit box on its action's bound target when
// the target stands inside the attacker's battle circle.
func deliverHits(player *character.Character, roster []*character.Character) {
	all := append([]*character.Character{player}, roster...)
	byID := make(map[string]*character.Character, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	for _, attacker := range all {
		current := attacker.Control.CurrentAction()
		if current == nil || !current.HasTarget || attacker.Stats.IsDead() {
			continue
		}
		victim := byID[current.TargetID]
		if victim == nil || victim.Stats.IsDead() {
			continue
		}
		if attacker.Position.Dist(victim.Position) > attacker.AI.BattleCircleRadius() {
			continue
		}
		for _, hb := range attacker.Control.ActiveHitBoxes() {
			victim.Stats.OnHit(character.HitInfo{
				BaseDamage: hb.BaseDamage,
				KnocksDown: hb.KnocksDown,
			}, attacker)
		}
	}
}
