package engine

import (
	"log"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type idAllocator struct {
	room        atomic.Uint64
	session     atomic.Uint64
	participant atomic.Uint64
}

func (a *idAllocator) nextRoom() uint        { return uint(a.room.Add(1)) }
func (a *idAllocator) nextSession() uint     { return uint(a.session.Add(1)) }
func (a *idAllocator) nextParticipant() uint { return uint(a.participant.Add(1)) }

// bump keeps allocation ahead of ids restored from the store.
func bump(c *atomic.Uint64, seen uint) {
	for {
		cur := c.Load()
		if uint64(seen) <= cur || c.CompareAndSwap(cur, uint64(seen)) {
			return
		}
	}
}

// Registry owns every room and runs one scheduling goroutine per room.
// Rooms are created once at deployment (or restored at startup) and never
// deleted while the process runs.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[uint]*Room
	tuning Tuning
	deps   Deps
	ids    idAllocator
	tick   time.Duration

	stop    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
}

func NewRegistry(tuning Tuning, deps Deps, tick time.Duration) *Registry {
	if tick <= 0 {
		tick = 250 * time.Millisecond
	}
	return &Registry{
		rooms:  make(map[uint]*Room),
		tuning: tuning,
		deps:   deps,
		tick:   tick,
		stop:   make(chan struct{}),
	}
}

// Restore loads persisted room configs so rooms survive restarts.
func (g *Registry) Restore() error {
	configs, err := g.deps.Store.LoadRooms()
	if err != nil {
		return err
	}
	for _, cfg := range configs {
		bump(&g.ids.room, cfg.ID)
		g.addRoom(cfg)
	}
	if len(configs) > 0 {
		log.Printf("registry: restored %d rooms", len(configs))
	}
	return nil
}

// CreateRoom deploys a new perpetual room and starts its loop.
func (g *Registry) CreateRoom(cfg RoomConfig) (*Room, error) {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 6
	}
	if cfg.Variant == "" {
		cfg.Variant = VariantMatching
	}
	if cfg.Variant == VariantMatching && cfg.GridPairs <= 0 {
		cfg.GridPairs = 8
	}
	if cfg.Variant == VariantQuiz && cfg.QuestionCount <= 0 {
		cfg.QuestionCount = 10
	}
	if cfg.DistractorStrategy == "" {
		cfg.DistractorStrategy = DistractorRandom
	}
	cfg.ID = g.ids.nextRoom()

	room := g.addRoom(cfg)
	if err := g.deps.Store.SaveRoomConfig(cfg, room.Snapshot()); err != nil {
		return nil, &RetryableError{Op: "save room", Err: err}
	}
	log.Printf("registry: room %d (%s) created", cfg.ID, cfg.Name)
	return room, nil
}

func (g *Registry) addRoom(cfg RoomConfig) *Room {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(cfg.ID)))
	room := NewRoom(cfg, g.tuning, g.deps, &g.ids, rng)

	g.mu.Lock()
	g.rooms[cfg.ID] = room
	g.mu.Unlock()

	g.wg.Add(1)
	go g.run(room)
	return room
}

// Room looks a room up by id.
func (g *Registry) Room(id uint) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[id]
	return room, ok
}

// RoomBySession finds the room hosting the given live session.
func (g *Registry) RoomBySession(sessionID uint) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, room := range g.rooms {
		if room.CurrentSessionID() == sessionID {
			return room, true
		}
	}
	return nil, false
}

// Snapshots lists every room, ordered by id.
func (g *Registry) Snapshots() []RoomSnapshot {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID() < rooms[j].ID() })
	snaps := make([]RoomSnapshot, len(rooms))
	for i, room := range rooms {
		snaps[i] = room.Snapshot()
	}
	return snaps
}

func (g *Registry) run(room *Room) {
	defer g.wg.Done()
	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			room.Tick()
		}
	}
}

// Stop joins every room loop. Rooms themselves are perpetual; this only
// exists for graceful process shutdown.
func (g *Registry) Stop() {
	g.stopped.Do(func() { close(g.stop) })
	g.wg.Wait()
}
