// Package game owns the full state of one running game: the player
// ledgers, the bank, the board, and the building placements. All
// mutation goes through Game methods; callers never hold live
// references into the state.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/hexvale/frontier/internal/game/bank"
	"github.com/hexvale/frontier/internal/game/board"
	"github.com/hexvale/frontier/internal/game/devcard"
	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
)

const (
	minPlayers = 2
	maxPlayers = 4
)

var (
	// ErrUnknownPlayer reports a colour that is not part of this game.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrInsufficientFunds reports a ledger that cannot cover a bundle
	// it owes.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownTile reports a tile id outside the board.
	ErrUnknownTile = errors.New("unknown tile")

	// ErrNoSettlement reports a city upgrade without a settlement to
	// upgrade.
	ErrNoSettlement = errors.New("no settlement to upgrade")

	// ErrCardNotHeld reports playing a development card that is not in
	// the player's hand.
	ErrCardNotHeld = errors.New("development card not held")

	// ErrUnplayable reports a development card kind that cannot be
	// played.
	ErrUnplayable = errors.New("development card cannot be played")

	// ErrBadRoll reports a production roll outside 2..12.
	ErrBadRoll = errors.New("roll outside 2..12")
)

// Placement is a settlement or city on a tile.
type Placement struct {
	Tile  int           `json:"tile"`
	Owner player.Colour `json:"owner"`
	City  bool          `json:"city"`
}

// Game is the authoritative state of one game.
type Game struct {
	players    map[player.Colour]*player.Player
	order      []player.Colour
	bank       *bank.Bank
	board      board.Board
	placements []Placement
	played     []devcard.Kind
}

// New creates a game for 2 to 4 distinct parties with a freshly
// randomized board and a bank at canonical totals.
func New(colours ...player.Colour) (*Game, error) {
	if len(colours) < minPlayers || len(colours) > maxPlayers {
		return nil, fmt.Errorf("need %d to %d players, got %d", minPlayers, maxPlayers, len(colours))
	}

	players := make(map[player.Colour]*player.Player, len(colours))
	order := make([]player.Colour, 0, len(colours))

	for _, colour := range colours {
		if _, dup := players[colour]; dup {
			return nil, fmt.Errorf("duplicate player colour %q", colour)
		}

		players[colour] = player.New(colour)
		order = append(order, colour)
	}

	return &Game{
		players: players,
		order:   order,
		bank:    bank.New(),
		board:   board.New(),
	}, nil
}

// Player returns a snapshot of one party's ledger.
func (g *Game) Player(colour player.Colour) (player.Player, error) {
	p, ok := g.players[colour]
	if !ok {
		return player.Player{}, fmt.Errorf("player %q: %w", colour, ErrUnknownPlayer)
	}

	return *p.Clone(), nil
}

// Players returns ledger snapshots in seating order.
func (g *Game) Players() []player.Player {
	snapshots := make([]player.Player, 0, len(g.order))
	for _, colour := range g.order {
		snapshots = append(snapshots, *g.players[colour].Clone())
	}

	return snapshots
}

// Colours returns the seating order.
func (g *Game) Colours() []player.Colour {
	return append([]player.Colour(nil), g.order...)
}

// Board returns the tile layout.
func (g *Game) Board() board.Board {
	return g.board
}

// Placements returns the settlements and cities placed so far.
func (g *Game) Placements() []Placement {
	return append([]Placement(nil), g.placements...)
}

// Reserve returns a snapshot of the bank's resource pool.
func (g *Game) Reserve() resource.Pool {
	return g.bank.Reserve()
}

// CardsRemaining returns the development cards left in the bank.
func (g *Game) CardsRemaining() int {
	return g.bank.CardsRemaining()
}

// PlayedCards returns the discard log of played development cards.
func (g *Game) PlayedCards() []devcard.Kind {
	return append([]devcard.Kind(nil), g.played...)
}

// DistributeResource mints amount units of kind out of the bank
// reserve into a player's ledger. Production and setup grants both
// land here; a reserve that cannot cover the amount fails with
// bank.ErrInsufficientSupply and nothing moves.
func (g *Game) DistributeResource(colour player.Colour, kind resource.Kind, amount int) error {
	p, err := g.ledger(colour)
	if err != nil {
		return err
	}

	bundle, err := g.bank.DistributeResource(kind, amount)
	if err != nil {
		return err
	}

	p.Resources.AddAssign(bundle)

	return nil
}

// SweepTrades removes trades proposed before cutoff.
func (g *Game) SweepTrades(cutoff time.Time) []bank.TradeID {
	return g.bank.SweepTrades(cutoff)
}

func (g *Game) ledger(colour player.Colour) (*player.Player, error) {
	p, ok := g.players[colour]
	if !ok {
		return nil, fmt.Errorf("player %q: %w", colour, ErrUnknownPlayer)
	}

	return p, nil
}
