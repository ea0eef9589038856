package room

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/game"
	"github.com/pthm-cable/slimeworks/world"
)

// RoomInfo describes a room for listings.
type RoomInfo struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
}

// Manager holds rooms by code. Rooms are removed when their last player leaves.
type Manager struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	cfg    *config.Config
	logger *slog.Logger
}

// NewManager creates a manager whose rooms start from cfg.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		rooms:  make(map[string]*Room),
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRoom starts a room on its own goroutine and returns its code. A nil
// map uses the configured start map. The room stops when ctx ends.
func (m *Manager) CreateRoom(ctx context.Context, mapDef *world.Map, broadcast func(code string, s game.Snapshot)) (string, error) {
	code := uuid.New().String()
	opts := Options{
		Code:    code,
		Logger:  m.logger,
		OnEmpty: m.removeRoom,
	}
	if broadcast != nil {
		opts.Broadcast = func(s game.Snapshot) { broadcast(code, s) }
	}
	r, err := New(m.cfg, mapDef, opts)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.rooms[code] = r
	m.mu.Unlock()

	go r.Run(ctx)
	return code, nil
}

// Room returns the room with the given code.
func (m *Manager) Room(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

// ListRooms returns every room sorted by code.
func (m *Manager) ListRooms() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for code, r := range m.rooms {
		out = append(out, RoomInfo{Code: code, Players: r.NumPlayers()})
	}
	slices.SortFunc(out, func(a, b RoomInfo) int { return strings.Compare(a.Code, b.Code) })
	return out
}

// StopAll stops and forgets every room.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, r := range m.rooms {
		r.Stop()
		delete(m.rooms, code)
	}
}

func (m *Manager) removeRoom(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[code]; ok {
		r.Stop()
		delete(m.rooms, code)
		m.logger.Info("room removed", "room", code)
	}
}
