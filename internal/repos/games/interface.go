package games

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

var ErrGameNotFound = errors.New("game not found")

// Snapshot is one stored game state. State is the game's JSON
// snapshot; Revision increments with every saved mutation.
type Snapshot struct {
	ID       uuid.UUID
	State    json.RawMessage
	Revision int64
}

type Games interface {
	// SaveSnapshot upserts a snapshot inside a caller-owned DB
	// transaction. A nil tx is the non-transactional path.
	SaveSnapshot(tx *sql.Tx, id uuid.UUID, state json.RawMessage, revision int64) error
	Get(ctx context.Context, id uuid.UUID) (Snapshot, error)
	List(ctx context.Context) ([]Snapshot, error)
}
