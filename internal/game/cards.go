package game

import (
	"fmt"

	"github.com/hexvale/frontier/internal/game/devcard"
	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
)

// devCardCost is the bundle a development card costs.
func devCardCost() resource.Pool {
	return resource.Explicit(1, 1, 1, 0, 0)
}

// BuyDevelopmentCard debits the card cost from the player's ledger,
// returns it to the reserve, and deals a random card into the hand.
// The ledger is checked before the draw, so an exhausted deck leaves
// it untouched.
func (g *Game) BuyDevelopmentCard(colour player.Colour) (devcard.Kind, error) {
	p, err := g.ledger(colour)
	if err != nil {
		return 0, err
	}

	cost := devCardCost()

	after, err := p.Resources.Sub(cost)
	if err != nil {
		return 0, fmt.Errorf("buy development card: %w", ErrInsufficientFunds)
	}

	kind, err := g.bank.DrawDevelopmentCard()
	if err != nil {
		return 0, fmt.Errorf("buy development card: %w", err)
	}

	err = g.bank.ReturnResources(cost)
	if err != nil {
		return 0, fmt.Errorf("return card cost: %w", err)
	}

	p.Resources = after
	p.DevCards = append(p.DevCards, kind)

	return kind, nil
}

// PlayDevelopmentCard plays a card from the player's hand. Picks vary
// by kind: YearOfPlenty takes two resource kinds to draw from the
// bank, Monopoly one kind to collect from every other player; the
// rest take none. Played cards leave the hand for the discard log and
// never return to the stock. HiddenVictoryPoint is never playable.
func (g *Game) PlayDevelopmentCard(colour player.Colour, kind devcard.Kind, picks ...resource.Kind) error {
	p, err := g.ledger(colour)
	if err != nil {
		return err
	}

	if !p.HoldsCard(kind) {
		return fmt.Errorf("play %s: %w", kind, ErrCardNotHeld)
	}

	switch kind {
	case devcard.YearOfPlenty:
		err = g.playYearOfPlenty(p, picks)
	case devcard.Monopoly:
		err = g.playMonopoly(p, picks)
	case devcard.RoadBuilding:
		err = expectPicks(picks, 0)
		if err == nil {
			p.Roads += 2
		}
	case devcard.Knight:
		err = expectPicks(picks, 0)
		if err == nil {
			p.KnightsPlayed++
		}
	case devcard.HiddenVictoryPoint:
		err = fmt.Errorf("play %s: %w", kind, ErrUnplayable)
	}

	if err != nil {
		return err
	}

	p.RemoveCard(kind)
	g.played = append(g.played, kind)

	return nil
}

func (g *Game) playYearOfPlenty(p *player.Player, picks []resource.Kind) error {
	err := expectPicks(picks, 2)
	if err != nil {
		return err
	}

	want := resource.Single(picks[0], 1).Add(resource.Single(picks[1], 1))

	bundle, err := g.bank.DistributeBundle(want)
	if err != nil {
		return fmt.Errorf("year of plenty: %w", err)
	}

	p.Resources.AddAssign(bundle)

	return nil
}

func (g *Game) playMonopoly(p *player.Player, picks []resource.Kind) error {
	err := expectPicks(picks, 1)
	if err != nil {
		return err
	}

	kind := picks[0]

	for _, colour := range g.order {
		other := g.players[colour]
		if other == p {
			continue
		}

		taken := other.Resources.Get(kind)
		if taken == 0 {
			continue
		}

		other.Resources.Set(kind, 0)
		p.Resources.Set(kind, p.Resources.Get(kind)+taken)
	}

	return nil
}

func expectPicks(picks []resource.Kind, want int) error {
	if len(picks) != want {
		return fmt.Errorf("want %d resource picks, got %d", want, len(picks))
	}

	return nil
}

// MaritimeTrade trades four units of one kind straight to the bank
// for one unit of another, with no negotiation record. Both legs move
// or neither does.
func (g *Game) MaritimeTrade(colour player.Colour, give, want resource.Kind) error {
	p, err := g.ledger(colour)
	if err != nil {
		return err
	}

	cost := resource.Single(give, 4)

	after, err := p.Resources.Sub(cost)
	if err != nil {
		return fmt.Errorf("maritime trade: %w", ErrInsufficientFunds)
	}

	minted, err := g.bank.DistributeResource(want, 1)
	if err != nil {
		return fmt.Errorf("maritime trade: %w", err)
	}

	err = g.bank.ReturnResources(cost)
	if err != nil {
		return fmt.Errorf("return maritime cost: %w", err)
	}

	p.Resources = after.Add(minted)

	return nil
}
