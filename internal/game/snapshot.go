package game

import (
	"encoding/json"
	"fmt"

	"github.com/hexvale/frontier/internal/game/bank"
	"github.com/hexvale/frontier/internal/game/board"
	"github.com/hexvale/frontier/internal/game/devcard"
	"github.com/hexvale/frontier/internal/game/player"
)

type gameJSON struct {
	Players    map[player.Colour]*player.Player `json:"players"`
	Order      []player.Colour                  `json:"order"`
	Bank       *bank.Bank                       `json:"bank"`
	Board      board.Board                      `json:"board"`
	Placements []Placement                      `json:"placements"`
	Played     []devcard.Kind                   `json:"played_cards"`
}

// MarshalJSON encodes the full game state: ledgers, bank (trade
// registry included), board, placements, and the discard log. The
// snapshot restores to a game that continues play seamlessly.
func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(gameJSON{
		Players:    g.players,
		Order:      g.order,
		Bank:       g.bank,
		Board:      g.board,
		Placements: g.placements,
		Played:     g.played,
	})
}

// UnmarshalJSON restores a game snapshot exactly.
func (g *Game) UnmarshalJSON(raw []byte) error {
	var decoded gameJSON

	err := json.Unmarshal(raw, &decoded)
	if err != nil {
		return fmt.Errorf("decode game: %w", err)
	}

	if decoded.Bank == nil {
		return fmt.Errorf("game snapshot missing bank")
	}

	if len(decoded.Order) < minPlayers || len(decoded.Order) > maxPlayers {
		return fmt.Errorf("game snapshot has %d players", len(decoded.Order))
	}

	for _, colour := range decoded.Order {
		if decoded.Players[colour] == nil {
			return fmt.Errorf("game snapshot missing ledger for %q", colour)
		}
	}

	g.players = decoded.Players
	g.order = decoded.Order
	g.bank = decoded.Bank
	g.board = decoded.Board
	g.placements = decoded.Placements
	g.played = decoded.Played

	return nil
}
