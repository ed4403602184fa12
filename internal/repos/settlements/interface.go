package settlements

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
)

// ErrAlreadySettled reports a settlement record for a trade that was
// already settled once. Trade identifiers are unique per settlement.
var ErrAlreadySettled = errors.New("trade already settled")

// Record is the durable ledger row for one settled trade.
type Record struct {
	TradeID uuid.UUID
	GameID  uuid.UUID
	From    player.Colour
	To      player.Colour
	Gave    resource.Pool
	Got     resource.Pool
}

type Settlements interface {
	// Insert appends a settlement row inside a caller-owned DB
	// transaction. A nil tx is the non-transactional path.
	Insert(tx *sql.Tx, rec Record) error

	// Has reports whether a settlement row exists for the trade.
	Has(ctx context.Context, tradeID uuid.UUID) (bool, error)
}
