// Package bank implements the shared supply of resources and
// development cards, and the registry of in-flight trades.
//
// One Bank exists per game. It is the only authority that mints or
// burns resources, and trades are only ever mutated through the
// registry so that no caller can act on a stale copy.
package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hexvale/frontier/internal/game/devcard"
	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
	"github.com/hexvale/frontier/internal/game/trade"
)

// ReservePerKind is the canonical reserve of each resource kind; the
// closed economy holds 5 * 19 = 95 resource units in total.
const ReservePerKind = 19

// TradeID uniquely identifies a live trade in the registry.
type TradeID = uuid.UUID

var (
	// ErrInsufficientSupply reports a distribution the reserve cannot
	// cover.
	ErrInsufficientSupply = errors.New("bank cannot cover requested distribution")

	// ErrTradeNotFound reports a trade identifier that does not
	// resolve to a live trade.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrOverReturn reports a resource return that would push the
	// reserve above its canonical total.
	ErrOverReturn = errors.New("resource return exceeds canonical reserve")

	// ErrNotProposer reports a cancellation attempted by a party other
	// than the trade's initiator.
	ErrNotProposer = errors.New("only the proposing party may cancel a trade")
)

// Bank owns the reserve, the development-card stock, and the trade
// registry. Not safe for concurrent use; callers serialize access per
// game.
type Bank struct {
	reserve resource.Pool
	cards   *devcard.Stock
	trades  map[TradeID]*trade.Trade
}

// New returns a bank seeded with the canonical totals and an empty
// trade registry.
func New() *Bank {
	return &Bank{
		reserve: resource.Uniform(ReservePerKind),
		cards:   devcard.NewStock(),
		trades:  make(map[TradeID]*trade.Trade),
	}
}

// Reserve returns a snapshot of the bank's resource pool.
func (b *Bank) Reserve() resource.Pool {
	return b.reserve
}

// CardsRemaining returns the number of development cards left in the
// stock.
func (b *Bank) CardsRemaining() int {
	return b.cards.Remaining()
}

// DistributeResource removes amount units of kind from the reserve and
// returns them as a freshly minted single-kind pool. If the reserve
// cannot cover the amount it fails with ErrInsufficientSupply and the
// reserve is unchanged; there is no partial distribution.
func (b *Bank) DistributeResource(kind resource.Kind, amount int) (resource.Pool, error) {
	if amount < 0 {
		return resource.Pool{}, fmt.Errorf("negative amount %d", amount)
	}

	bundle := resource.Single(kind, amount)

	err := b.reserve.SubAssign(bundle)
	if err != nil {
		return resource.Pool{}, fmt.Errorf("distribute %d %s: %w", amount, kind, ErrInsufficientSupply)
	}

	return bundle, nil
}

// DistributeBundle removes a multi-kind bundle from the reserve,
// all-or-nothing.
func (b *Bank) DistributeBundle(bundle resource.Pool) (resource.Pool, error) {
	err := b.reserve.SubAssign(bundle)
	if err != nil {
		return resource.Pool{}, fmt.Errorf("distribute bundle: %w", ErrInsufficientSupply)
	}

	return bundle, nil
}

// ReturnResources adds a bundle back into the reserve. A return that
// would push any kind above the canonical total fails with
// ErrOverReturn and the reserve is unchanged.
func (b *Bank) ReturnResources(bundle resource.Pool) error {
	result := b.reserve.Add(bundle)
	for _, kind := range resource.Kinds() {
		if result.Get(kind) > ReservePerKind {
			return fmt.Errorf("return %d %s onto %d: %w",
				bundle.Get(kind), kind, b.reserve.Get(kind), ErrOverReturn)
		}
	}

	b.reserve = result

	return nil
}

// DrawDevelopmentCard removes and returns a random card from the
// stock, failing with devcard.ErrExhausted when none remain.
func (b *Bank) DrawDevelopmentCard() (devcard.Kind, error) {
	kind, err := b.cards.DrawRandom()
	if err != nil {
		return 0, fmt.Errorf("draw development card: %w", err)
	}

	return kind, nil
}

// ReturnDevelopmentCard puts a drawn card back into the stock.
func (b *Bank) ReturnDevelopmentCard(kind devcard.Kind) error {
	err := b.cards.Return(kind)
	if err != nil {
		return fmt.Errorf("return development card: %w", err)
	}

	return nil
}

// ProposeTrade creates a new Proposed trade and registers it under a
// fresh identifier. Identifiers are 128-bit random and never reused
// across live trades.
func (b *Bank) ProposeTrade(from player.Colour, offering, wants resource.Pool) TradeID {
	id := uuid.New()
	for b.trades[id] != nil {
		id = uuid.New()
	}

	b.trades[id] = trade.New(from, offering, wants)

	return id
}

// AcceptTrade records that party is willing to make the trade.
func (b *Bank) AcceptTrade(id TradeID, party player.Colour) error {
	t, ok := b.trades[id]
	if !ok {
		return fmt.Errorf("accept trade %s: %w", id, ErrTradeNotFound)
	}

	err := t.Accept(party)
	if err != nil {
		return fmt.Errorf("accept trade %s: %w", id, err)
	}

	return nil
}

// ConfirmTrade locks in party as the trade's counter-party.
func (b *Bank) ConfirmTrade(id TradeID, party player.Colour) error {
	t, ok := b.trades[id]
	if !ok {
		return fmt.Errorf("confirm trade %s: %w", id, ErrTradeNotFound)
	}

	err := t.ConfirmPartner(party)
	if err != nil {
		return fmt.Errorf("confirm trade %s: %w", id, err)
	}

	return nil
}

// CancelTrade removes an unsettled trade from the registry. Only the
// proposing party may cancel; an Accepted trade is already gone.
func (b *Bank) CancelTrade(id TradeID, by player.Colour) error {
	t, ok := b.trades[id]
	if !ok {
		return fmt.Errorf("cancel trade %s: %w", id, ErrTradeNotFound)
	}

	if t.From != by {
		return fmt.Errorf("cancel trade %s by %s: %w", id, by, ErrNotProposer)
	}

	delete(b.trades, id)

	return nil
}

// RetireTrade settles a LockedIn trade: marks it Accepted, removes it
// from the registry, and returns the final record. The caller moves
// the bundles; the bank only retires the record.
func (b *Bank) RetireTrade(id TradeID) (trade.Trade, error) {
	t, ok := b.trades[id]
	if !ok {
		return trade.Trade{}, fmt.Errorf("retire trade %s: %w", id, ErrTradeNotFound)
	}

	err := t.Complete()
	if err != nil {
		return trade.Trade{}, fmt.Errorf("retire trade %s: %w", id, err)
	}

	delete(b.trades, id)

	return *t.Clone(), nil
}

// SweepTrades removes every live trade created before cutoff and
// returns the removed identifiers.
func (b *Bank) SweepTrades(cutoff time.Time) []TradeID {
	var swept []TradeID

	for id, t := range b.trades {
		if t.CreatedAt.Before(cutoff) {
			delete(b.trades, id)
			swept = append(swept, id)
		}
	}

	return swept
}

// Trade returns a snapshot of the trade with the given identifier. A
// miss is a normal empty result, not an error.
func (b *Bank) Trade(id TradeID) (trade.Trade, bool) {
	t, ok := b.trades[id]
	if !ok {
		return trade.Trade{}, false
	}

	return *t.Clone(), true
}

// Trades returns a snapshot of all live trades.
func (b *Bank) Trades() map[TradeID]trade.Trade {
	snapshot := make(map[TradeID]trade.Trade, len(b.trades))
	for id, t := range b.trades {
		snapshot[id] = *t.Clone()
	}

	return snapshot
}

// LiveTrades returns the number of trades in the registry.
func (b *Bank) LiveTrades() int {
	return len(b.trades)
}

type bankJSON struct {
	Resources        resource.Pool            `json:"resources"`
	DevelopmentCards *devcard.Stock           `json:"development_cards"`
	Trades           map[TradeID]*trade.Trade `json:"trades"`
}

// MarshalJSON encodes the bank with a string-keyed trade registry.
func (b *Bank) MarshalJSON() ([]byte, error) {
	return json.Marshal(bankJSON{
		Resources:        b.reserve,
		DevelopmentCards: b.cards,
		Trades:           b.trades,
	})
}

// UnmarshalJSON restores a bank snapshot exactly, counts and trade
// states included.
func (b *Bank) UnmarshalJSON(raw []byte) error {
	var decoded bankJSON

	err := json.Unmarshal(raw, &decoded)
	if err != nil {
		return fmt.Errorf("decode bank: %w", err)
	}

	for _, kind := range resource.Kinds() {
		if decoded.Resources.Get(kind) > ReservePerKind {
			return fmt.Errorf("%s reserve %d above canonical %d",
				kind, decoded.Resources.Get(kind), ReservePerKind)
		}
	}

	if decoded.DevelopmentCards == nil {
		return errors.New("bank snapshot missing development cards")
	}

	if decoded.Trades == nil {
		decoded.Trades = make(map[TradeID]*trade.Trade)
	}

	b.reserve = decoded.Resources
	b.cards = decoded.DevelopmentCards
	b.trades = decoded.Trades

	return nil
}
