// Package room runs simulations on their own goroutines. Commands arrive on
// an inbox and are applied between ticks, so a simulation is never touched by
// two goroutines at once.
package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/game"
	"github.com/pthm-cable/slimeworks/world"
)

// Options configures a room.
type Options struct {
	Code      string              // Identifies the room in logs and to OnEmpty
	Logger    *slog.Logger        // nil uses slog.Default()
	Broadcast func(game.Snapshot) // Called every broadcast_every ticks
	OnEmpty   func(code string)   // Called when the last player leaves
	Sim       game.Options        // Passed through to the simulation
}

// Room owns one simulation and the players connected to it.
type Room struct {
	Inbox chan any

	code      string
	sim       *game.Simulation
	cfg       config.RoomConfig
	tickRate  int
	logger    *slog.Logger
	broadcast func(game.Snapshot)
	onEmpty   func(code string)

	limiters map[string]*rate.Limiter
	players  atomic.Int32
	dropped  atomic.Int64

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a room around a fresh simulation. A nil map uses the
// configured start map.
func New(cfg *config.Config, m *world.Map, opts Options) (*Room, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("room", opts.Code)
	simOpts := opts.Sim
	if simOpts.Logger == nil {
		simOpts.Logger = logger
	}
	sim, err := game.New(cfg, m, simOpts)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	rc := sim.Config().Room
	return &Room{
		Inbox:     make(chan any, max(1, rc.InboxSize)),
		code:      opts.Code,
		sim:       sim,
		cfg:       rc,
		tickRate:  max(1, sim.Config().TickRate),
		logger:    logger,
		broadcast: opts.Broadcast,
		onEmpty:   opts.OnEmpty,
		limiters:  make(map[string]*rate.Limiter),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Code returns the room's code.
func (r *Room) Code() string {
	return r.code
}

// NumPlayers returns the number of joined players. Safe from any goroutine.
func (r *Room) NumPlayers() int {
	return int(r.players.Load())
}

// Dropped returns how many commands were discarded by rate limiting or a full inbox.
func (r *Room) Dropped() int64 {
	return r.dropped.Load()
}

// Send queues a command without blocking. It reports false and counts a drop
// when the inbox is full.
func (r *Room) Send(cmd any) bool {
	select {
	case r.Inbox <- cmd:
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

// Stop ends Run. It may be called more than once and from any goroutine.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// Done is closed when Run returns.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Run ticks the simulation at tick_rate until Stop is called or ctx ends.
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(time.Second / time.Duration(r.tickRate))
	defer ticker.Stop()

	r.logger.Info("room started", "tick_rate", r.tickRate)
	defer func() { r.logger.Info("room stopped", "tick", r.sim.Tick()) }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handle(cmd)
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Room) tick() {
	r.sim.Step()
	every := max(1, r.cfg.BroadcastEvery)
	if r.broadcast != nil && r.sim.Tick()%every == 0 {
		r.broadcast(r.sim.Snapshot())
	}
}

func (r *Room) handle(cmd any) {
	if owner, ok := owner(cmd); ok && !r.allow(owner) {
		r.dropped.Add(1)
		r.logger.Debug("command dropped", "owner", owner, "command", fmt.Sprintf("%T", cmd))
		return
	}

	switch c := cmd.(type) {
	case Join:
		res := r.join(c.Owner)
		if c.Reply != nil && !trySend(c.Reply, res) {
			r.logger.Debug("join reply dropped", "owner", res.Owner)
		}
	case Leave:
		r.leave(c.Owner)
	case Spawn:
		r.sim.SpawnWorker(c.Owner)
	case Move:
		r.sim.MoveWorker(c.Owner, c.WorkerID, c.X, c.Y)
	case Steer:
		r.sim.SetVelocity(c.Owner, c.WorkerID, c.DX, c.DY)
	case Build:
		r.sim.BuildColony(c.Owner, c.WorkerID)
	case AutoMode:
		r.sim.SetAutoMode(c.Owner, c.Enabled)
	case SetMap:
		if c.Map != nil {
			r.sim.SetMap(c.Map)
		}
	case Query:
		if c.Reply != nil && !trySend(c.Reply, r.sim.Snapshot()) {
			r.logger.Debug("query reply dropped")
		}
	default:
		r.logger.Warn("unknown command", "command", fmt.Sprintf("%T", cmd))
	}
}

// trySend delivers a reply without blocking the tick loop.
func trySend[T any](ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	default:
		return false
	}
}

// allow reports whether a joined player may issue another command now.
// Commands from unknown players are left to the simulation to reject.
func (r *Room) allow(owner string) bool {
	lim, ok := r.limiters[owner]
	if !ok {
		return true
	}
	return lim.Allow()
}

func (r *Room) join(owner string) JoinResult {
	if owner == "" {
		owner = uuid.New().String()
	}
	if _, ok := r.limiters[owner]; ok {
		return JoinResult{Owner: owner}
	}
	if r.cfg.MaxPlayers > 0 && len(r.limiters) >= r.cfg.MaxPlayers {
		r.logger.Info("room full", "owner", owner, "max_players", r.cfg.MaxPlayers)
		return JoinResult{Owner: owner}
	}

	r.limiters[owner] = rate.NewLimiter(rate.Limit(r.cfg.CommandsPerSecond), max(1, r.cfg.CommandBurst))
	r.players.Store(int32(len(r.limiters)))
	id, _ := r.sim.Join(owner)
	return JoinResult{Owner: owner, WorkerID: id, Accepted: true}
}

func (r *Room) leave(owner string) {
	if _, ok := r.limiters[owner]; !ok {
		return
	}
	delete(r.limiters, owner)
	r.players.Store(int32(len(r.limiters)))
	r.sim.Leave(owner)

	if len(r.limiters) == 0 && r.onEmpty != nil {
		r.onEmpty(r.code)
	}
}
