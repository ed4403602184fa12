// Package settlements provides an in-memory Settlements repository
// for dev mode and service tests.
package settlements

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/hexvale/frontier/internal/repos/settlements"
)

var _ settlements.Settlements = (*settlementsRepo)(nil)

type settlementsRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]settlements.Record
}

func New() *settlementsRepo {
	return &settlementsRepo{records: make(map[uuid.UUID]settlements.Record)}
}

func (r *settlementsRepo) Insert(_ *sql.Tx, rec settlements.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.records[rec.TradeID]; dup {
		return settlements.ErrAlreadySettled
	}

	r.records[rec.TradeID] = rec

	return nil
}

func (r *settlementsRepo) Has(_ context.Context, tradeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.records[tradeID]

	return ok, nil
}

// Records returns all stored settlements; test helper.
func (r *settlementsRepo) Records() []settlements.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]settlements.Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}

	return out
}
