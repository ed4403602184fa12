// Package games provides an in-memory Games repository for dev mode
// and service tests.
package games

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hexvale/frontier/internal/repos/games"
)

var _ games.Games = (*gamesRepo)(nil)

type entry struct {
	state    json.RawMessage
	revision int64
	seq      int
}

type gamesRepo struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	nextSeq int
}

func New() *gamesRepo {
	return &gamesRepo{entries: make(map[uuid.UUID]*entry)}
}

func (r *gamesRepo) SaveSnapshot(_ *sql.Tx, id uuid.UUID, state json.RawMessage, revision int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.entries[id]
	if !ok {
		existing = &entry{seq: r.nextSeq}
		r.nextSeq++
		r.entries[id] = existing
	}

	existing.state = append(json.RawMessage(nil), state...)
	existing.revision = revision

	return nil
}

func (r *gamesRepo) Get(_ context.Context, id uuid.UUID) (games.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing, ok := r.entries[id]
	if !ok {
		return games.Snapshot{}, games.ErrGameNotFound
	}

	return games.Snapshot{
		ID:       id,
		State:    append(json.RawMessage(nil), existing.state...),
		Revision: existing.revision,
	}, nil
}

func (r *gamesRepo) List(_ context.Context) ([]games.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshots := make([]games.Snapshot, 0, len(r.entries))
	for id, existing := range r.entries {
		snapshots = append(snapshots, games.Snapshot{
			ID:       id,
			State:    append(json.RawMessage(nil), existing.state...),
			Revision: existing.revision,
		})
	}

	// Creation order, matching the postgres ORDER BY created_at.
	seq := func(id uuid.UUID) int { return r.entries[id].seq }
	sort.Slice(snapshots, func(i, j int) bool {
		return seq(snapshots[i].ID) < seq(snapshots[j].ID)
	})

	return snapshots, nil
}
