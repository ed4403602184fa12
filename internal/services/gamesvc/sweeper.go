package gamesvc

import (
	"context"
	"log/slog"
	"time"
)

// RunSweeper expires abandoned trades older than ttl, checking every
// interval, until ctx is cancelled. Each game is swept under its own
// lock; an expired trade is published on the game's feed and the
// pruned state persisted.
func (s *Service) RunSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(time.Now().Add(-ttl))
		}
	}
}

func (s *Service) sweepOnce(cutoff time.Time) {
	s.mu.RLock()

	ids := make([]GameID, 0, len(s.live))
	for id := range s.live {
		ids = append(ids, id)
	}

	s.mu.RUnlock()

	for _, id := range ids {
		e, err := s.entry(id)
		if err != nil {
			continue
		}

		e.mu.Lock()

		staged, err := cloneGame(e.game)
		if err != nil {
			slog.Error("stage game for trade sweep", "game_id", id, "error", err)
			e.mu.Unlock()

			continue
		}

		swept := staged.SweepTrades(cutoff)
		if len(swept) == 0 {
			e.mu.Unlock()

			continue
		}

		err = s.saveSnapshot(nil, id, staged, e.rev+1)
		if err != nil {
			slog.Error("persist after trade sweep", "game_id", id, "error", err)
			e.mu.Unlock()

			continue
		}

		e.game = staged
		e.rev++

		for _, tradeID := range swept {
			s.publish(e, Event{Type: EventTradeExpired, GameID: id, Payload: map[string]any{
				"trade_id": tradeID,
			}})
		}

		e.mu.Unlock()

		slog.Info("trades expired", "game_id", id, "count", len(swept))
	}
}
