package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/game"
	"github.com/pthm-cable/slimeworks/room"
	"github.com/pthm-cable/slimeworks/systems"
	"github.com/pthm-cable/slimeworks/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mapPath := flag.String("map", "", "Map file (empty = config map, or generated)")
	seed := flag.Uint("seed", 0, "Map generator seed (0 = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = run until the goal is decided)")
	players := flag.Int("players", 2, "Bot players to join")
	logEvery := flag.Int("log-every", 0, "Log world state every N ticks (0 = every stats window)")
	realtime := flag.Bool("realtime", false, "Run in a room at tick_rate instead of as fast as possible")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *mapPath != "" {
		cfg.Map.Path = *mapPath
	}
	if *seed != 0 {
		cfg.Map.Seed = uint32(*seed)
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *realtime {
		runRoom(cfg, *players, *maxTicks)
		return
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	sim, err := game.New(cfg, nil, game.Options{
		StatsWindow: *statsWindow,
		LogStats:    *logStats,
		Output:      output,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	bots := &game.Bots{Workers: 3, Reserve: 0.5, Interval: cfg.TickRate}
	for i := range *players {
		owner := fmt.Sprintf("bot-%d", i+1)
		bots.Owners = append(bots.Owners, owner)
		sim.Join(owner)
	}

	every := *logEvery
	if every <= 0 {
		every = cfg.Telemetry.StatsWindow
		if *statsWindow > 0 {
			every = *statsWindow
		}
	}

	slog.Info("starting headless simulation",
		"map_seed", cfg.Map.Seed,
		"players", *players,
		"max_ticks", *maxTicks,
	)

	for sim.GoalResult() == systems.ResultNone {
		sim.Step()
		bots.Update(sim)

		if sim.Tick()%every == 0 {
			sim.LogState()
		}
		if *maxTicks > 0 && sim.Tick() >= *maxTicks {
			slog.Info("max ticks reached", "tick", sim.Tick())
			break
		}
	}

	digest, err := sim.Digest()
	if err != nil {
		slog.Error("failed to compute digest", "error", err)
	}
	slog.Info("simulation finished",
		"tick", sim.Tick(),
		"result", sim.GoalResult(),
		"collapses", sim.Collapses(),
		"digest", digest,
	)
	sim.Perf().LogStats()

	if err := output.WriteSnapshot("final_snapshot.json", sim.Snapshot()); err != nil {
		slog.Error("failed to write snapshot", "error", err)
	}
}

// runRoom plays the simulation in real time inside a room. Players get
// automation only; the run ends on interrupt, a decided goal or maxTicks.
func runRoom(cfg *config.Config, players, maxTicks int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logEvery := max(1, cfg.TickRate*10)
	mgr := room.NewManager(cfg, slog.Default())
	defer mgr.StopAll()

	code, err := mgr.CreateRoom(ctx, nil, func(code string, s game.Snapshot) {
		if s.Tick%logEvery == 0 {
			slog.Info("room state",
				"room", code,
				"tick", s.Tick,
				"workers", len(s.Workers),
				"bases", len(s.Bases),
				"band", s.Band,
				"progress", s.Goal.Progress,
			)
		}
		if s.Goal.Result != "" || (maxTicks > 0 && s.Tick >= maxTicks) {
			stop()
		}
	})
	if err != nil {
		slog.Error("failed to create room", "error", err)
		os.Exit(1)
	}
	r, _ := mgr.Room(code)
	for i := range players {
		r.Send(room.Join{Owner: fmt.Sprintf("bot-%d", i+1)})
	}

	slog.Info("room running", "room", code, "players", players, "tick_rate", cfg.TickRate)
	<-ctx.Done()
}
