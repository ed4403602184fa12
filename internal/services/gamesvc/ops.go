package gamesvc

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hexvale/frontier/internal/game"
	"github.com/hexvale/frontier/internal/game/bank"
	"github.com/hexvale/frontier/internal/game/devcard"
	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
	"github.com/hexvale/frontier/internal/game/trade"
	"github.com/hexvale/frontier/internal/repos/settlements"
)

// Roll pays out dice production and returns the per-colour payouts.
func (s *Service) Roll(ctx context.Context, id GameID, roll int) (map[player.Colour]resource.Pool, error) {
	var payouts map[player.Colour]resource.Pool

	err := s.mutate(id, func(g *game.Game) error {
		var err error
		payouts, err = g.Produce(roll)

		return err
	}, func() Event {
		return Event{Type: EventDiceRolled, GameID: id, Payload: map[string]any{
			"roll":    roll,
			"payouts": payouts,
		}}
	})
	if err != nil {
		return nil, err
	}

	return payouts, nil
}

// Build places a building for a player.
func (s *Service) Build(ctx context.Context, id GameID, colour player.Colour, building game.Building, tile int) error {
	return s.mutate(id, func(g *game.Game) error {
		return g.Build(colour, building, tile)
	}, func() Event {
		return Event{Type: EventBuilt, GameID: id, Payload: map[string]any{
			"colour":   colour,
			"building": building.String(),
			"tile":     tile,
		}}
	})
}

// BuyCard deals a random development card to a player.
func (s *Service) BuyCard(ctx context.Context, id GameID, colour player.Colour) (devcard.Kind, error) {
	var kind devcard.Kind

	err := s.mutate(id, func(g *game.Game) error {
		var err error
		kind, err = g.BuyDevelopmentCard(colour)

		return err
	}, func() Event {
		// The drawn kind stays private to the buyer.
		return Event{Type: EventCardBought, GameID: id, Payload: map[string]any{
			"colour": colour,
		}}
	})
	if err != nil {
		return 0, err
	}

	return kind, nil
}

// PlayCard plays a development card from a player's hand.
func (s *Service) PlayCard(ctx context.Context, id GameID, colour player.Colour, kind devcard.Kind, picks ...resource.Kind) error {
	return s.mutate(id, func(g *game.Game) error {
		return g.PlayDevelopmentCard(colour, kind, picks...)
	}, func() Event {
		return Event{Type: EventCardPlayed, GameID: id, Payload: map[string]any{
			"colour": colour,
			"card":   kind.String(),
		}}
	})
}

// MaritimeTrade trades four of one kind to the bank for one of
// another.
func (s *Service) MaritimeTrade(ctx context.Context, id GameID, colour player.Colour, give, want resource.Kind) error {
	return s.mutate(id, func(g *game.Game) error {
		return g.MaritimeTrade(colour, give, want)
	}, func() Event {
		return Event{Type: EventBankTrade, GameID: id, Payload: map[string]any{
			"colour": colour,
			"give":   give.String(),
			"want":   want.String(),
		}}
	})
}

// ProposeTrade opens a trade between players.
func (s *Service) ProposeTrade(ctx context.Context, id GameID, from player.Colour, offering, wants resource.Pool) (bank.TradeID, error) {
	var tradeID bank.TradeID

	err := s.mutate(id, func(g *game.Game) error {
		var err error
		tradeID, err = g.ProposeTrade(from, offering, wants)

		return err
	}, func() Event {
		return Event{Type: EventTradeProposed, GameID: id, Payload: map[string]any{
			"trade_id": tradeID,
			"from":     from,
			"offering": offering,
			"wants":    wants,
		}}
	})
	if err != nil {
		return bank.TradeID{}, err
	}

	return tradeID, nil
}

// AcceptTrade records a party's willingness to trade.
func (s *Service) AcceptTrade(ctx context.Context, id GameID, tradeID bank.TradeID, party player.Colour) error {
	return s.mutate(id, func(g *game.Game) error {
		return g.AcceptTrade(tradeID, party)
	}, func() Event {
		return Event{Type: EventTradeAccepted, GameID: id, Payload: map[string]any{
			"trade_id": tradeID,
			"party":    party,
		}}
	})
}

// ConfirmTrade locks in the trade's counter-party.
func (s *Service) ConfirmTrade(ctx context.Context, id GameID, tradeID bank.TradeID, party player.Colour) error {
	return s.mutate(id, func(g *game.Game) error {
		return g.ConfirmTrade(tradeID, party)
	}, func() Event {
		return Event{Type: EventTradeLocked, GameID: id, Payload: map[string]any{
			"trade_id": tradeID,
			"party":    party,
		}}
	})
}

// CancelTrade withdraws an unsettled trade.
func (s *Service) CancelTrade(ctx context.Context, id GameID, tradeID bank.TradeID, by player.Colour) error {
	return s.mutate(id, func(g *game.Game) error {
		return g.CancelTrade(tradeID, by)
	}, func() Event {
		return Event{Type: EventTradeCancelled, GameID: id, Payload: map[string]any{
			"trade_id": tradeID,
			"by":       by,
		}}
	})
}

// SettleTrade settles a LockedIn trade. The bundle movement runs on a
// staged copy of the game: the settlement row and the snapshot commit
// in one transaction, and the live game advances only after the commit
// succeeds, so a failed settle leaves the served state exactly as it
// was. A duplicate trade id fails with settlements.ErrAlreadySettled
// before anything moves.
func (s *Service) SettleTrade(ctx context.Context, id GameID, tradeID bank.TradeID) (trade.Trade, error) {
	e, err := s.entry(id)
	if err != nil {
		return trade.Trade{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	staged, err := cloneGame(e.game)
	if err != nil {
		return trade.Trade{}, err
	}

	tr, ok := staged.Trade(tradeID)
	if !ok {
		// Settling retires the trade from the registry, so a replayed
		// settle misses here. The settlements ledger tells it apart
		// from a trade that never existed.
		settled, herr := s.settlements.Has(ctx, tradeID)
		if herr != nil {
			return trade.Trade{}, fmt.Errorf("check settlement %s: %w", tradeID, herr)
		}

		if settled {
			return trade.Trade{}, fmt.Errorf("settle trade %s: %w", tradeID, settlements.ErrAlreadySettled)
		}

		return trade.Trade{}, fmt.Errorf("settle trade %s: %w", tradeID, bank.ErrTradeNotFound)
	}

	partner, err := tr.Partner()
	if err != nil {
		return trade.Trade{}, fmt.Errorf("settle trade %s: %w", tradeID, trade.ErrInvalidState)
	}

	var final trade.Trade

	next := e.rev + 1

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		err := s.settlements.Insert(tx, settlements.Record{
			TradeID: tradeID,
			GameID:  id,
			From:    tr.From,
			To:      partner,
			Gave:    tr.Offering,
			Got:     tr.Wants,
		})
		if err != nil {
			return fmt.Errorf("record settlement: %w", err)
		}

		final, err = staged.FinalizeTrade(tradeID)
		if err != nil {
			return err
		}

		return s.saveSnapshot(tx, id, staged, next)
	})
	if err != nil {
		return trade.Trade{}, err
	}

	e.game = staged
	e.rev = next

	s.publish(e, Event{Type: EventTradeSettled, GameID: id, Payload: map[string]any{
		"trade_id": tradeID,
		"from":     final.From,
		"to":       final.To,
	}})

	return final, nil
}

// Trades returns snapshots of a game's live trades.
func (s *Service) Trades(ctx context.Context, id GameID) (map[bank.TradeID]trade.Trade, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.game.Trades(), nil
}

// TradeByID returns a snapshot of one live trade.
func (s *Service) TradeByID(ctx context.Context, id GameID, tradeID bank.TradeID) (trade.Trade, error) {
	e, err := s.entry(id)
	if err != nil {
		return trade.Trade{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.game.Trade(tradeID)
	if !ok {
		return trade.Trade{}, fmt.Errorf("trade %s: %w", tradeID, bank.ErrTradeNotFound)
	}

	return tr, nil
}
