// Package main provides the simulation binary: it loads the content
// catalogs, builds an encounter from a scenario file, drives every
// AI-controlled turn to a terminal state, and reports the result.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/duskfall/engine/internal/config"
	"github.com/duskfall/engine/internal/game/ability"
	"github.com/duskfall/engine/internal/game/ai"
	"github.com/duskfall/engine/internal/game/combat"
	"github.com/duskfall/engine/internal/game/dice"
	"github.com/duskfall/engine/internal/game/effect"
	"github.com/duskfall/engine/internal/game/session"
	"github.com/duskfall/engine/internal/observability"
	"github.com/duskfall/engine/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses defaults")
	scenarioPath := flag.String("scenario", "content/scenarios/demo.yaml", "path to scenario YAML file")
	expectedRounds := flag.Int("expected-rounds", 10, "content author's round estimate for difficulty tuning")
	flag.Parse()

	var cfg config.Config
	var err error
	if *configPath == "" {
		cfg = config.Defaults()
	} else {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	newSource := func() dice.Source { return dice.NewCryptoSource() }
	if cfg.Engine.Seed != 0 {
		seed := cfg.Engine.Seed
		newSource = func() dice.Source {
			s := dice.NewSeededSource(seed)
			seed++
			return s
		}
	}

	effects, err := effect.LoadDirectory(cfg.Content.EffectsDir)
	if err != nil {
		logger.Fatal("loading effects", zap.Error(err))
	}
	abilities, err := ability.LoadDirectory(cfg.Content.AbilitiesDir)
	if err != nil {
		logger.Fatal("loading abilities", zap.Error(err))
	}
	if err := abilities.ValidateEffectRefs(effects); err != nil {
		logger.Fatal("validating ability effect references", zap.Error(err))
	}
	profiles := ai.NewRegistry()
	if _, statErr := os.Stat(cfg.Content.ProfilesDir); statErr == nil {
		if err := profiles.LoadDirectory(cfg.Content.ProfilesDir); err != nil {
			logger.Fatal("loading profiles", zap.Error(err))
		}
	}

	var hooks effect.HookRunner
	if cfg.Content.ScriptsDir != "" {
		runner := scripting.NewRunner(logger)
		if err := runner.LoadDirectory(cfg.Content.ScriptsDir, cfg.Engine.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading effect scripts", zap.Error(err))
		}
		hooks = runner
	}

	tuning := combat.DefaultTuning()
	tuning.VarianceSpread = cfg.Engine.VarianceSpread
	tuning.RoundLimit = cfg.Engine.RoundLimit

	logger.Info("catalogs loaded",
		zap.Int("effects", len(effects.All())),
		zap.Int("abilities", len(abilities.All())),
		zap.Int("profiles", len(profiles.All())),
		zap.Duration("elapsed", time.Since(start)),
	)

	name, participants, terrain, err := loadScenario(*scenarioPath)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}

	mgr := session.NewManager(session.Config{
		Abilities:      abilities,
		Effects:        effects,
		Profiles:       profiles,
		Hooks:          hooks,
		Logger:         logger,
		Tuning:         tuning,
		NewSource:      newSource,
		BaseDifficulty: cfg.Engine.BaseDifficulty,
		DifficultyStep: cfg.Engine.DifficultyStep,
		TopK:           cfg.Engine.TopK,
	})

	id, err := mgr.CreateEncounter(participants, terrain)
	if err != nil {
		logger.Fatal("creating encounter", zap.Error(err))
	}
	logger.Info("scenario started",
		zap.String("scenario", name),
		zap.String("encounter", id.String()),
	)

	// Every scenario participant is AI-driven, so one AdvanceIfAI loop
	// carries the encounter to its terminal state. The iteration cap is a
	// backstop; the round limit is what normally ends a stalemate.
	for i := 0; i < 100_000; i++ {
		_, acted, err := mgr.AdvanceIfAI(id)
		if err != nil {
			logger.Fatal("advancing encounter", zap.Error(err))
		}
		if !acted {
			break
		}
	}

	state, err := mgr.State(id)
	if err != nil {
		logger.Fatal("reading final state", zap.Error(err))
	}
	report(logger, state)

	perf := summarize(state, *expectedRounds)
	next, err := mgr.ReportPerformance(id, perf)
	if err != nil {
		logger.Fatal("reporting performance", zap.Error(err))
	}
	logger.Info("difficulty after encounter", zap.Float64("difficulty", next))

	if err := mgr.CloseEncounter(id); err != nil {
		logger.Fatal("closing encounter", zap.Error(err))
	}
	logger.Info("simulation complete", zap.Duration("elapsed", time.Since(start)))
}

// summarize folds the final state into the performance summary the
// difficulty model consumes.
func summarize(state *session.EncounterStateView, expectedRounds int) ai.PerformanceSummary {
	perf := ai.PerformanceSummary{
		RoundsTaken:    state.Round,
		ExpectedRounds: expectedRounds,
		PlayerWon:      state.Outcome == combat.OutcomePlayerVictory.String(),
	}
	if perf.PlayerWon {
		var health, max int
		for _, p := range state.Participants {
			if p.Faction == "enemy" {
				continue
			}
			health += p.Health
			max += p.MaxHealth
		}
		if max > 0 {
			perf.PlayerHealthFraction = float64(health) / float64(max)
		}
	}
	return perf
}

func report(logger *zap.Logger, state *session.EncounterStateView) {
	logger.Info("encounter finished",
		zap.String("outcome", state.Outcome),
		zap.Int("rounds", state.Round),
		zap.Int("log_entries", len(state.Log)),
	)
	for _, p := range state.Participants {
		logger.Info("participant",
			zap.String("id", p.ID),
			zap.String("faction", p.Faction),
			zap.Int("health", p.Health),
			zap.Int("max_health", p.MaxHealth),
			zap.Bool("down", p.Down),
		)
	}
	for _, entry := range state.Log {
		fields := []zap.Field{
			zap.Int("seq", entry.Seq),
			zap.Int("round", entry.Round),
			zap.String("kind", entry.Kind.String()),
		}
		if entry.ActorID != "" {
			fields = append(fields,
				zap.String("actor", entry.ActorName),
				zap.String("action", entry.ActionType.String()),
			)
		}
		if entry.AbilityID != "" {
			fields = append(fields, zap.String("ability", entry.AbilityID))
		}
		for _, t := range entry.Targets {
			fields = append(fields,
				zap.String("target", t.TargetID),
				zap.Int("damage", t.Damage),
				zap.Int("healing", t.Healing),
			)
		}
		logger.Debug("combat log", fields...)
	}
}
