package game

import (
	"fmt"

	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
)

// Building is something a player can pay the bank to place.
type Building int

const (
	Road Building = iota
	Settlement
	City
)

func (b Building) String() string {
	switch b {
	case Road:
		return "road"
	case Settlement:
		return "settlement"
	case City:
		return "city"
	default:
		panic(fmt.Sprintf("game: building out of range: %d", int(b)))
	}
}

// ParseBuilding parses an external building name.
func ParseBuilding(s string) (Building, error) {
	switch s {
	case "road":
		return Road, nil
	case "settlement":
		return Settlement, nil
	case "city":
		return City, nil
	default:
		return 0, fmt.Errorf("unknown building %q", s)
	}
}

// Cost returns the resource bundle the building costs.
func (b Building) Cost() resource.Pool {
	switch b {
	case Road:
		return resource.Explicit(0, 0, 0, 1, 1)
	case Settlement:
		return resource.Explicit(0, 1, 1, 1, 1)
	case City:
		return resource.Explicit(3, 2, 0, 0, 0)
	default:
		panic(fmt.Sprintf("game: building out of range: %d", int(b)))
	}
}

// Build debits the building's cost from the player's ledger, returns
// it to the bank reserve, and records the placement. Roads are tallied
// per player; settlements and cities sit on tiles. A city upgrades an
// existing settlement of the same colour. Placement legality beyond
// existence is not checked.
func (g *Game) Build(colour player.Colour, building Building, tileID int) error {
	p, err := g.ledger(colour)
	if err != nil {
		return err
	}

	cost := building.Cost()

	after, err := p.Resources.Sub(cost)
	if err != nil {
		return fmt.Errorf("build %s: %w", building, ErrInsufficientFunds)
	}

	switch building {
	case Road:
		// Roads are a per-player tally; the tile id is not used.
	case Settlement:
		_, err := g.board.Tile(tileID)
		if err != nil {
			return fmt.Errorf("build settlement: %w", ErrUnknownTile)
		}
	case City:
		if g.settlementIndex(colour, tileID) < 0 {
			_, err := g.board.Tile(tileID)
			if err != nil {
				return fmt.Errorf("build city: %w", ErrUnknownTile)
			}

			return fmt.Errorf("build city on tile %d: %w", tileID, ErrNoSettlement)
		}
	}

	err = g.bank.ReturnResources(cost)
	if err != nil {
		return fmt.Errorf("return building cost: %w", err)
	}

	p.Resources = after

	switch building {
	case Road:
		p.Roads++
	case Settlement:
		g.placements = append(g.placements, Placement{Tile: tileID, Owner: colour})
	case City:
		g.placements[g.settlementIndex(colour, tileID)].City = true
	}

	return nil
}

// settlementIndex finds an un-upgraded settlement of colour on tileID.
func (g *Game) settlementIndex(colour player.Colour, tileID int) int {
	for i, placement := range g.placements {
		if placement.Tile == tileID && placement.Owner == colour && !placement.City {
			return i
		}
	}

	return -1
}
