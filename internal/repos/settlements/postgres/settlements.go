package settlements

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hexvale/frontier/internal/repos/settlements"
)

var _ settlements.Settlements = (*settlementsRepo)(nil)

type settlementsRepo struct{ db *sql.DB }

func New(db *sql.DB) *settlementsRepo {
	return &settlementsRepo{db: db}
}

func (r *settlementsRepo) Insert(tx *sql.Tx, rec settlements.Record) error {
	gave, err := json.Marshal(rec.Gave)
	if err != nil {
		return fmt.Errorf("encode gave bundle: %w", err)
	}

	got, err := json.Marshal(rec.Got)
	if err != nil {
		return fmt.Errorf("encode got bundle: %w", err)
	}

	const query = `
		INSERT INTO settlements (trade_id, game_id, from_colour, to_colour, gave, got)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if tx != nil {
		_, err = tx.Exec(query, rec.TradeID, rec.GameID, string(rec.From), string(rec.To), gave, got)
	} else {
		_, err = r.db.Exec(query, rec.TradeID, rec.GameID, string(rec.From), string(rec.To), gave, got)
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return settlements.ErrAlreadySettled
			}
		}

		return fmt.Errorf("insert settlement: %w", err)
	}

	return nil
}

func (r *settlementsRepo) Has(ctx context.Context, tradeID uuid.UUID) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM settlements WHERE trade_id = $1)
	`, tradeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check settlement: %w", err)
	}

	return exists, nil
}
