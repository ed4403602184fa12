package game

import (
	"errors"
	"fmt"

	"github.com/hexvale/frontier/internal/game/bank"
	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
)

// Produce pays out production for a dice roll. Every tile whose token
// matches the roll yields one unit per settlement and two per city to
// the placement's owner, minted from the bank reserve. If the reserve
// cannot cover a tile's full payout that tile pays nobody this roll;
// other tiles still pay. A roll of 7 produces nothing. The returned
// map holds each colour's total payout.
func (g *Game) Produce(roll int) (map[player.Colour]resource.Pool, error) {
	if roll < 2 || roll > 12 {
		return nil, fmt.Errorf("roll %d: %w", roll, ErrBadRoll)
	}

	payouts := make(map[player.Colour]resource.Pool)

	for _, tile := range g.board.Tiles {
		if tile.Resource == nil || tile.Token != roll {
			continue
		}

		owed := g.tilePayout(tile.ID)
		if len(owed) == 0 {
			continue
		}

		total := 0
		for _, units := range owed {
			total += units
		}

		_, err := g.bank.DistributeResource(*tile.Resource, total)
		if err != nil {
			if errors.Is(err, bank.ErrInsufficientSupply) {
				// Short tile: nobody is paid for it.
				continue
			}

			return nil, fmt.Errorf("produce tile %d: %w", tile.ID, err)
		}

		for colour, units := range owed {
			payout := resource.Single(*tile.Resource, units)
			g.players[colour].Resources.AddAssign(payout)
			payouts[colour] = payouts[colour].Add(payout)
		}
	}

	return payouts, nil
}

// tilePayout returns the units each colour is owed for one tile.
func (g *Game) tilePayout(tileID int) map[player.Colour]int {
	owed := make(map[player.Colour]int)

	for _, placement := range g.placements {
		if placement.Tile != tileID {
			continue
		}

		units := 1
		if placement.City {
			units = 2
		}

		owed[placement.Owner] += units
	}

	return owed
}
