package games

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hexvale/frontier/internal/repos/games"
)

var _ games.Games = (*gamesRepo)(nil)

type gamesRepo struct{ db *sql.DB }

func New(db *sql.DB) *gamesRepo {
	return &gamesRepo{db: db}
}

const upsertQuery = `
	INSERT INTO games (id, state, revision)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE
	SET state = EXCLUDED.state,
	    revision = EXCLUDED.revision,
	    updated_at = now()
`

func (r *gamesRepo) SaveSnapshot(tx *sql.Tx, id uuid.UUID, state json.RawMessage, revision int64) error {
	var err error
	if tx != nil {
		_, err = tx.Exec(upsertQuery, id, []byte(state), revision)
	} else {
		_, err = r.db.Exec(upsertQuery, id, []byte(state), revision)
	}

	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

func (r *gamesRepo) Get(ctx context.Context, id uuid.UUID) (games.Snapshot, error) {
	var (
		state    []byte
		revision int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT state, revision
		FROM games
		WHERE id = $1
	`, id).Scan(&state, &revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return games.Snapshot{}, games.ErrGameNotFound
		}

		return games.Snapshot{}, fmt.Errorf("get game: %w", err)
	}

	return games.Snapshot{ID: id, State: state, Revision: revision}, nil
}

func (r *gamesRepo) List(ctx context.Context) ([]games.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, state, revision
		FROM games
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var snapshots []games.Snapshot

	for rows.Next() {
		var snap games.Snapshot

		err = rows.Scan(&snap.ID, (*[]byte)(&snap.State), &snap.Revision)
		if err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}

		snapshots = append(snapshots, snap)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate game rows: %w", err)
	}

	return snapshots, nil
}
