package game

import (
	"fmt"

	"github.com/hexvale/frontier/internal/game/bank"
	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
	"github.com/hexvale/frontier/internal/game/trade"
)

// ProposeTrade opens a new trade offering `offering` in exchange for
// `wants` on behalf of `from`.
func (g *Game) ProposeTrade(from player.Colour, offering, wants resource.Pool) (bank.TradeID, error) {
	_, err := g.ledger(from)
	if err != nil {
		return bank.TradeID{}, err
	}

	return g.bank.ProposeTrade(from, offering, wants), nil
}

// AcceptTrade records that party is willing to make the trade.
func (g *Game) AcceptTrade(id bank.TradeID, party player.Colour) error {
	_, err := g.ledger(party)
	if err != nil {
		return err
	}

	return g.bank.AcceptTrade(id, party)
}

// ConfirmTrade locks in party as the trade's counter-party.
func (g *Game) ConfirmTrade(id bank.TradeID, party player.Colour) error {
	_, err := g.ledger(party)
	if err != nil {
		return err
	}

	return g.bank.ConfirmTrade(id, party)
}

// CancelTrade withdraws an unsettled trade. Only the proposer may
// cancel.
func (g *Game) CancelTrade(id bank.TradeID, by player.Colour) error {
	_, err := g.ledger(by)
	if err != nil {
		return err
	}

	return g.bank.CancelTrade(id, by)
}

// Trade returns a snapshot of one live trade.
func (g *Game) Trade(id bank.TradeID) (trade.Trade, bool) {
	return g.bank.Trade(id)
}

// Trades returns snapshots of all live trades.
func (g *Game) Trades() map[bank.TradeID]trade.Trade {
	return g.bank.Trades()
}

// FinalizeTrade settles a LockedIn trade: the proposer gives the
// offered bundle and receives the wanted one, the confirmed partner
// the reverse. Both parties' sufficiency is verified before either
// ledger is touched; on ErrInsufficientFunds the trade stays LockedIn
// and no resources move. On success the trade is retired (Accepted,
// removed from the registry) and the settled record is returned.
func (g *Game) FinalizeTrade(id bank.TradeID) (trade.Trade, error) {
	tr, ok := g.bank.Trade(id)
	if !ok {
		return trade.Trade{}, fmt.Errorf("finalize trade %s: %w", id, bank.ErrTradeNotFound)
	}

	if tr.State != trade.LockedIn {
		return trade.Trade{}, fmt.Errorf("finalize trade %s in %s: %w", id, tr.State, trade.ErrInvalidState)
	}

	partner, err := tr.Partner()
	if err != nil {
		return trade.Trade{}, fmt.Errorf("finalize trade %s: %w", id, err)
	}

	from, err := g.ledger(tr.From)
	if err != nil {
		return trade.Trade{}, fmt.Errorf("finalize trade %s: %w", id, err)
	}

	to, err := g.ledger(partner)
	if err != nil {
		return trade.Trade{}, fmt.Errorf("finalize trade %s: %w", id, err)
	}

	// Verify both legs before applying either.
	fromAfter, err := from.Resources.Sub(tr.Offering)
	if err != nil {
		return trade.Trade{}, fmt.Errorf("offering party %s: %w", tr.From, ErrInsufficientFunds)
	}

	toAfter, err := to.Resources.Sub(tr.Wants)
	if err != nil {
		return trade.Trade{}, fmt.Errorf("partner %s: %w", partner, ErrInsufficientFunds)
	}

	final, err := g.bank.RetireTrade(id)
	if err != nil {
		return trade.Trade{}, fmt.Errorf("finalize trade %s: %w", id, err)
	}

	from.Resources = fromAfter.Add(tr.Wants)
	to.Resources = toAfter.Add(tr.Offering)

	return final, nil
}
