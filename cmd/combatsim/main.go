// Package main provides the combat simulator binary that resolves a scenario
// repeatedly and reports the outcome distribution.
package main

import (
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/helios/internal/config"
	"github.com/cory-johannsen/helios/internal/game/combat"
	"github.com/cory-johannsen/helios/internal/game/decision"
	"github.com/cory-johannsen/helios/internal/game/dice"
	"github.com/cory-johannsen/helios/internal/game/scenario"
	"github.com/cory-johannsen/helios/internal/game/unit"
	"github.com/cory-johannsen/helios/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	unitsDir := flag.String("units-dir", "", "path to unit template YAML directory; empty = content.units_dir from config")
	scenariosDir := flag.String("scenarios-dir", "", "path to scenario YAML directory; empty = content.scenarios_dir from config")
	scenarioID := flag.String("scenario", "", "scenario ID to simulate; empty = simulator.scenario from config")
	iterations := flag.Int("iterations", 0, "number of combats to resolve; 0 = simulator.iterations from config")
	seed := flag.Int64("seed", 0, "dice seed; 0 = simulator.seed from config (0 there selects the crypto source)")
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

	if *unitsDir == "" {
		*unitsDir = cfg.Content.UnitsDir
	}
	if *scenariosDir == "" {
		*scenariosDir = cfg.Content.ScenariosDir
	}
	if *scenarioID == "" {
		*scenarioID = cfg.Simulator.Scenario
	}
	if *iterations <= 0 {
		*iterations = cfg.Simulator.Iterations
	}
	if *seed == 0 {
		*seed = cfg.Simulator.Seed
	}

	var src dice.Source
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	} else {
		src = dice.NewCryptoSource()
	}

	templates, err := unit.LoadTemplates(*unitsDir)
	if err != nil {
		logger.Fatal("loading unit templates", zap.Error(err))
	}
	index, err := unit.Index(templates)
	if err != nil {
		logger.Fatal("indexing unit templates", zap.Error(err))
	}
	logger.Info("loaded unit templates", zap.Int("count", len(templates)))

	scenarios, err := scenario.LoadAll(*scenariosDir)
	if err != nil {
		logger.Fatal("loading scenarios", zap.Error(err))
	}
	sc, ok := scenarios[*scenarioID]
	if !ok {
		logger.Fatal("unknown scenario", zap.String("scenario", *scenarioID))
	}
	logger.Info("simulating scenario",
		zap.String("scenario", sc.ID),
		zap.String("variant", sc.Combat.Variant),
		zap.Int("iterations", *iterations),
		zap.Int64("seed", *seed),
	)

	wins := make(map[string]int)
	draws := 0
	totalRounds := 0

	for i := 0; i < *iterations; i++ {
		gs, err := sc.Build(index)
		if err != nil {
			logger.Fatal("building scenario state", zap.Error(err))
		}
		engine := combat.NewEngine(gs, src, cfg.Combat.DieSides, logger)

		var result *combat.Result
		if sc.Combat.Variant == "space" {
			result, err = engine.ResolveSpaceCombat(sc.Combat.System, sc.Combat.Attacker, decision.NewPolicy(), decision.NewPolicy())
		} else {
			result, err = engine.ResolveGroundCombat(sc.Combat.Planet, sc.Combat.System, sc.Combat.Attacker, decision.NewPolicy(), decision.NewPolicy())
		}
		if err != nil {
			logger.Fatal("resolving combat", zap.Int("iteration", i), zap.Error(err))
		}
		if result == nil {
			logger.Fatal("scenario produced no combat", zap.String("scenario", sc.ID))
		}

		totalRounds += result.Rounds
		if result.IsDraw {
			draws++
		} else {
			wins[result.Winner]++
		}
	}

	fields := []zap.Field{
		zap.Int("iterations", *iterations),
		zap.Int("draws", draws),
		zap.Float64("avg_rounds", float64(totalRounds)/float64(*iterations)),
		zap.Duration("elapsed", time.Since(start)),
	}
	for side, count := range wins {
		fields = append(fields, zap.Int("wins_"+side, count))
	}
	logger.Info("simulation complete", fields...)
}
