package gamesvc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hexvale/frontier/internal/game"
	"github.com/hexvale/frontier/internal/game/bank"
	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
	"github.com/hexvale/frontier/internal/game/trade"
	"github.com/hexvale/frontier/internal/repos/games"
	memgames "github.com/hexvale/frontier/internal/repos/games/memory"
	"github.com/hexvale/frontier/internal/repos/settlements"
	memsettlements "github.com/hexvale/frontier/internal/repos/settlements/memory"
)

func newTestService() *Service {
	return New(nil, memgames.New(), memsettlements.New())
}

func createTestGame(t *testing.T, s *Service) GameID {
	t.Helper()

	id, _, err := s.Create(t.Context(), []player.Colour{player.Red, player.Blue})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	return id
}

// settleReadyTrade funds both parties via production-free grants and
// walks a trade to LockedIn.
func settleReadyTrade(t *testing.T, s *Service, id GameID) bank.TradeID {
	t.Helper()

	ctx := t.Context()

	fund(t, s, id, player.Red, resource.Wool, 1)
	fund(t, s, id, player.Red, resource.Lumber, 1)
	fund(t, s, id, player.Blue, resource.Ore, 2)

	tradeID, err := s.ProposeTrade(ctx, id, player.Red,
		resource.Explicit(0, 0, 1, 0, 1),
		resource.Single(resource.Ore, 2),
	)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	err = s.AcceptTrade(ctx, id, tradeID, player.Blue)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	err = s.ConfirmTrade(ctx, id, tradeID, player.Blue)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	return tradeID
}

// fund moves reserve units into a ledger through the game's own
// distribute operation.
func fund(t *testing.T, s *Service, id GameID, colour player.Colour, kind resource.Kind, amount int) {
	t.Helper()

	err := s.mutate(id, func(g *game.Game) error {
		return g.DistributeResource(colour, kind, amount)
	})
	if err != nil {
		t.Fatalf("fund %s: %v", colour, err)
	}
}

func TestCreateAndState(t *testing.T) {
	t.Parallel()

	s := newTestService()
	id := createTestGame(t, s)

	raw, err := s.State(t.Context(), id)
	if err != nil {
		t.Fatalf("state: %v", err)
	}

	restored := new(game.Game)

	err = json.Unmarshal(raw, restored)
	if err != nil {
		t.Fatalf("state snapshot does not decode: %v", err)
	}

	if len(restored.Colours()) != 2 {
		t.Fatalf("players: want 2, got %d", len(restored.Colours()))
	}

	_, err = s.State(t.Context(), GameID{})
	if !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("unknown game: want ErrGameNotFound, got %v", err)
	}
}

func TestSettleTrade_FullFlow(t *testing.T) {
	t.Parallel()

	s := newTestService()
	id := createTestGame(t, s)
	tradeID := settleReadyTrade(t, s, id)

	final, err := s.SettleTrade(t.Context(), id, tradeID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	if final.State != trade.Accepted {
		t.Fatalf("final state: want accepted, got %s", final.State)
	}

	// The trade is gone from the registry.
	_, err = s.TradeByID(t.Context(), id, tradeID)
	if !errors.Is(err, bank.ErrTradeNotFound) {
		t.Fatalf("want ErrTradeNotFound, got %v", err)
	}
}

func TestSettleTrade_DuplicateRejected(t *testing.T) {
	t.Parallel()

	repo := memsettlements.New()
	s := New(nil, memgames.New(), repo)

	id, _, err := s.Create(t.Context(), []player.Colour{player.Red, player.Blue})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tradeID := settleReadyTrade(t, s, id)

	// Seed a settlement row with the same trade id; the settle must
	// then refuse and leave the trade live.
	err = repo.Insert(nil, settlements.Record{TradeID: tradeID, GameID: id})
	if err != nil {
		t.Fatalf("seed settlement: %v", err)
	}

	_, err = s.SettleTrade(t.Context(), id, tradeID)
	if !errors.Is(err, settlements.ErrAlreadySettled) {
		t.Fatalf("want ErrAlreadySettled, got %v", err)
	}

	tr, err := s.TradeByID(t.Context(), id, tradeID)
	if err != nil {
		t.Fatalf("trade lookup: %v", err)
	}

	if tr.State != trade.LockedIn {
		t.Fatalf("state after refused settle: want locked_in, got %s", tr.State)
	}
}

func TestSettleTrade_SecondSettleReportsAlreadySettled(t *testing.T) {
	t.Parallel()

	s := newTestService()
	id := createTestGame(t, s)
	tradeID := settleReadyTrade(t, s, id)

	_, err := s.SettleTrade(t.Context(), id, tradeID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	// The replay must surface the settlement, not a missing trade.
	_, err = s.SettleTrade(t.Context(), id, tradeID)
	if !errors.Is(err, settlements.ErrAlreadySettled) {
		t.Fatalf("second settle: want ErrAlreadySettled, got %v", err)
	}
}

// flakyGames wraps a games repo and fails snapshot saves on demand.
type flakyGames struct {
	games.Games
	failSaves bool
}

var errSaveFailed = errors.New("save failed")

func (f *flakyGames) SaveSnapshot(tx *sql.Tx, id uuid.UUID, state json.RawMessage, revision int64) error {
	if f.failSaves {
		return errSaveFailed
	}

	return f.Games.SaveSnapshot(tx, id, state, revision)
}

func TestMutate_PersistFailureLeavesLiveStateUntouched(t *testing.T) {
	t.Parallel()

	repo := &flakyGames{Games: memgames.New()}
	s := New(nil, repo, memsettlements.New())

	id, _, err := s.Create(t.Context(), []player.Colour{player.Red, player.Blue})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	repo.failSaves = true

	err = s.mutate(id, func(g *game.Game) error {
		return g.DistributeResource(player.Red, resource.Ore, 1)
	})
	if !errors.Is(err, errSaveFailed) {
		t.Fatalf("want save failure, got %v", err)
	}

	raw, err := s.State(t.Context(), id)
	if err != nil {
		t.Fatalf("state: %v", err)
	}

	g := new(game.Game)

	err = json.Unmarshal(raw, g)
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}

	p, err := g.Player(player.Red)
	if err != nil {
		t.Fatalf("player: %v", err)
	}

	if p.Resources.Get(resource.Ore) != 0 {
		t.Fatalf("ledger after failed save: want 0 ore, got %d", p.Resources.Get(resource.Ore))
	}
}

func TestSettleTrade_PersistFailureLeavesLiveStateUntouched(t *testing.T) {
	t.Parallel()

	repo := &flakyGames{Games: memgames.New()}
	s := New(nil, repo, memsettlements.New())

	id, _, err := s.Create(t.Context(), []player.Colour{player.Red, player.Blue})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tradeID := settleReadyTrade(t, s, id)

	repo.failSaves = true

	_, err = s.SettleTrade(t.Context(), id, tradeID)
	if !errors.Is(err, errSaveFailed) {
		t.Fatalf("want save failure, got %v", err)
	}

	// The served state still holds the trade locked in with both
	// ledgers unmoved.
	tr, err := s.TradeByID(t.Context(), id, tradeID)
	if err != nil {
		t.Fatalf("trade lookup: %v", err)
	}

	if tr.State != trade.LockedIn {
		t.Fatalf("state after failed settle: want locked_in, got %s", tr.State)
	}

	raw, err := s.State(t.Context(), id)
	if err != nil {
		t.Fatalf("state: %v", err)
	}

	g := new(game.Game)

	err = json.Unmarshal(raw, g)
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}

	red, err := g.Player(player.Red)
	if err != nil {
		t.Fatalf("player: %v", err)
	}

	if red.Resources.Get(resource.Wool) != 1 || red.Resources.Get(resource.Lumber) != 1 {
		t.Fatalf("red ledger moved after failed settle: %+v", red.Resources)
	}

	blue, err := g.Player(player.Blue)
	if err != nil {
		t.Fatalf("player: %v", err)
	}

	if blue.Resources.Get(resource.Ore) != 2 {
		t.Fatalf("blue ledger moved after failed settle: want 2 ore, got %d", blue.Resources.Get(resource.Ore))
	}
}

func TestSettleTrade_WhileProposedFails(t *testing.T) {
	t.Parallel()

	s := newTestService()
	id := createTestGame(t, s)

	tradeID, err := s.ProposeTrade(t.Context(), id, player.Red,
		resource.Single(resource.Wool, 1),
		resource.Single(resource.Ore, 1),
	)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	_, err = s.SettleTrade(t.Context(), id, tradeID)
	if !errors.Is(err, trade.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestEventsFanOut(t *testing.T) {
	t.Parallel()

	s := newTestService()
	id := createTestGame(t, s)

	events, cancel, err := s.Subscribe(id)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	_, err = s.ProposeTrade(t.Context(), id, player.Red,
		resource.Single(resource.Wool, 1),
		resource.Single(resource.Ore, 1),
	)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != EventTradeProposed {
			t.Fatalf("event type: want %s, got %s", EventTradeProposed, ev.Type)
		}

		if ev.GameID != id {
			t.Fatalf("event game: want %s, got %s", id, ev.GameID)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event received")
	}
}

// Events are published while the game lock is still held, so each
// event sits in the subscriber's buffer before its operation returns
// and the feed stays in mutation order.
func TestEventsOrderedWithMutations(t *testing.T) {
	t.Parallel()

	s := newTestService()
	id := createTestGame(t, s)

	events, cancel, err := s.Subscribe(id)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	nextEvent := func(want string) {
		t.Helper()

		select {
		case ev := <-events:
			if ev.Type != want {
				t.Fatalf("event type: want %s, got %s", want, ev.Type)
			}
		default:
			t.Fatalf("no %s event buffered after the operation returned", want)
		}
	}

	tradeID, err := s.ProposeTrade(t.Context(), id, player.Red,
		resource.Single(resource.Wool, 1),
		resource.Single(resource.Ore, 1),
	)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	nextEvent(EventTradeProposed)

	err = s.AcceptTrade(t.Context(), id, tradeID, player.Blue)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	nextEvent(EventTradeAccepted)

	err = s.ConfirmTrade(t.Context(), id, tradeID, player.Blue)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	nextEvent(EventTradeLocked)
}

func TestSweepExpiresStaleTrades(t *testing.T) {
	t.Parallel()

	s := newTestService()
	id := createTestGame(t, s)

	_, err := s.ProposeTrade(t.Context(), id, player.Red,
		resource.Single(resource.Wool, 1),
		resource.Single(resource.Ore, 1),
	)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	events, cancel, err := s.Subscribe(id)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	// A cutoff in the future sweeps everything live.
	s.sweepOnce(time.Now().Add(time.Minute))

	trades, err := s.Trades(t.Context(), id)
	if err != nil {
		t.Fatalf("trades: %v", err)
	}

	if len(trades) != 0 {
		t.Fatalf("trades after sweep: want 0, got %d", len(trades))
	}

	select {
	case ev := <-events:
		if ev.Type != EventTradeExpired {
			t.Fatalf("event type: want %s, got %s", EventTradeExpired, ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatalf("no expiry event received")
	}
}

func TestLoadAllRestoresGames(t *testing.T) {
	t.Parallel()

	repo := memgames.New()
	s := New(nil, repo, memsettlements.New())

	id, _, err := s.Create(t.Context(), []player.Colour{player.Red, player.Blue})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fund(t, s, id, player.Red, resource.Ore, 3)

	// A second service over the same store picks the game up.
	restoredSvc := New(nil, repo, memsettlements.New())

	n, err := restoredSvc.LoadAll(t.Context())
	if err != nil {
		t.Fatalf("load all: %v", err)
	}

	if n != 1 {
		t.Fatalf("restored: want 1, got %d", n)
	}

	raw, err := restoredSvc.State(t.Context(), id)
	if err != nil {
		t.Fatalf("state after restore: %v", err)
	}

	restored := new(game.Game)

	err = json.Unmarshal(raw, restored)
	if err != nil {
		t.Fatalf("decode restored state: %v", err)
	}

	p, err := restored.Player(player.Red)
	if err != nil {
		t.Fatalf("restored player: %v", err)
	}

	if p.Resources.Get(resource.Ore) != 3 {
		t.Fatalf("restored ledger: want 3 ore, got %d", p.Resources.Get(resource.Ore))
	}
}

// Concurrent mixed operations on one game must serialize cleanly;
// run with -race.
func TestConcurrentOperationsOneGame(t *testing.T) {
	t.Parallel()

	s := newTestService()
	id := createTestGame(t, s)

	ctx := context.Background()

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 20 {
				_, _ = s.ProposeTrade(ctx, id, player.Red,
					resource.Single(resource.Wool, 1),
					resource.Single(resource.Ore, 1),
				)
				_, _ = s.State(ctx, id)
				_, _ = s.Trades(ctx, id)
			}
		}()
	}

	wg.Wait()

	trades, err := s.Trades(ctx, id)
	if err != nil {
		t.Fatalf("trades: %v", err)
	}

	if len(trades) != 8*20 {
		t.Fatalf("trades: want %d, got %d", 8*20, len(trades))
	}
}
