// Package gamesvc hosts live games behind a per-game mutual-exclusion
// boundary and persists a snapshot after every mutation.
//
// Every game operation runs as one critical section under its game's
// lock; operations on different games share nothing.
package gamesvc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/hexvale/frontier/internal/game"
	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/infra/pgutils"
	"github.com/hexvale/frontier/internal/repos/games"
	"github.com/hexvale/frontier/internal/repos/settlements"
)

// ErrGameNotFound reports a game identifier that does not resolve to
// a live game.
var ErrGameNotFound = errors.New("game not found")

// GameID identifies one live game.
type GameID = uuid.UUID

type entry struct {
	mu   sync.Mutex
	game *game.Game
	rev  int64
	feed *feed
}

// Service owns the registry of live games.
type Service struct {
	db          *sql.DB // nil in memory mode
	games       games.Games
	settlements settlements.Settlements

	mu   sync.RWMutex
	live map[GameID]*entry
}

// New returns a service backed by the given repositories. db may be
// nil when the repositories do not need transactions (memory mode).
func New(db *sql.DB, gamesRepo games.Games, settlementsRepo settlements.Settlements) *Service {
	return &Service{
		db:          db,
		games:       gamesRepo,
		settlements: settlementsRepo,
		live:        make(map[GameID]*entry),
	}
}

// Create builds a new game for the given parties, persists its first
// snapshot, and registers it.
func (s *Service) Create(ctx context.Context, colours []player.Colour) (GameID, json.RawMessage, error) {
	g, err := game.New(colours...)
	if err != nil {
		return GameID{}, nil, fmt.Errorf("create game: %w", err)
	}

	id := uuid.New()

	raw, err := json.Marshal(g)
	if err != nil {
		return GameID{}, nil, fmt.Errorf("encode game: %w", err)
	}

	err = s.games.SaveSnapshot(nil, id, raw, 1)
	if err != nil {
		return GameID{}, nil, fmt.Errorf("persist game: %w", err)
	}

	e := &entry{game: g, rev: 1, feed: newFeed()}

	s.mu.Lock()
	s.live[id] = e
	s.mu.Unlock()

	s.publish(e, Event{Type: EventGameCreated, GameID: id, Payload: map[string]any{
		"colours": colours,
	}})

	slog.Info("game created", "game_id", id, "players", len(colours))

	return id, raw, nil
}

// LoadAll re-hydrates every stored game into the live registry. Games
// already live are left alone. It returns the number restored.
func (s *Service) LoadAll(ctx context.Context) (int, error) {
	snapshots, err := s.games.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list games: %w", err)
	}

	restored := 0

	for _, snap := range snapshots {
		s.mu.Lock()
		_, alive := s.live[snap.ID]
		s.mu.Unlock()

		if alive {
			continue
		}

		g := new(game.Game)

		err = json.Unmarshal(snap.State, g)
		if err != nil {
			return restored, fmt.Errorf("restore game %s: %w", snap.ID, err)
		}

		s.mu.Lock()
		s.live[snap.ID] = &entry{game: g, rev: snap.Revision, feed: newFeed()}
		s.mu.Unlock()

		restored++
	}

	if restored > 0 {
		slog.Info("games restored", "count", restored)
	}

	return restored, nil
}

// State returns the current snapshot of one game.
func (s *Service) State(ctx context.Context, id GameID) (json.RawMessage, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	raw, err := json.Marshal(e.game)
	if err != nil {
		return nil, fmt.Errorf("encode game: %w", err)
	}

	return raw, nil
}

// Subscribe attaches to a game's event feed. The returned cancel
// function detaches; slow subscribers miss events rather than block
// the game.
func (s *Service) Subscribe(id GameID) (<-chan Event, func(), error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, nil, err
	}

	ch, cancel := e.feed.subscribe()

	return ch, cancel, nil
}

func (s *Service) entry(id GameID) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.live[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}

	return e, nil
}

// mutate runs fn against a staged copy of the game under the game's
// lock. The copy is persisted at the next revision and only then
// installed as the live state, so a failed save leaves the live game
// exactly as it was. Events are published before the lock is
// released, which keeps the feed ordered with the state changes.
func (s *Service) mutate(id GameID, fn func(g *game.Game) error, events ...func() Event) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	staged, err := cloneGame(e.game)
	if err != nil {
		return err
	}

	err = fn(staged)
	if err != nil {
		return err
	}

	err = s.saveSnapshot(nil, id, staged, e.rev+1)
	if err != nil {
		return err
	}

	e.game = staged
	e.rev++

	for _, ev := range events {
		s.publish(e, ev())
	}

	return nil
}

// cloneGame deep-copies a game through its snapshot codec.
func cloneGame(g *game.Game) (*game.Game, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode game: %w", err)
	}

	clone := new(game.Game)

	err = json.Unmarshal(raw, clone)
	if err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}

	return clone, nil
}

// saveSnapshot persists one game state at the given revision. With a
// non-nil tx the write joins the caller's transaction; the caller must
// then install the staged state only after the transaction commits.
func (s *Service) saveSnapshot(tx *sql.Tx, id GameID, g *game.Game, revision int64) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game: %w", err)
	}

	err = s.games.SaveSnapshot(tx, id, raw, revision)
	if err != nil {
		return fmt.Errorf("persist game: %w", err)
	}

	return nil
}

// withTx runs fn inside a DB transaction when a DB is configured, or
// directly with a nil tx otherwise.
func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if s.db == nil {
		return fn(nil)
	}

	return pgutils.WithTx(ctx, s.db, fn)
}

func (s *Service) publish(e *entry, ev Event) {
	e.feed.publish(ev)
}
