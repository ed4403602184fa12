package gamesvc

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types published on a game's feed.
const (
	EventGameCreated    = "game_created"
	EventTradeProposed  = "trade_proposed"
	EventTradeAccepted  = "trade_accepted"
	EventTradeLocked    = "trade_locked"
	EventTradeSettled   = "trade_settled"
	EventTradeCancelled = "trade_cancelled"
	EventTradeExpired   = "trade_expired"
	EventDiceRolled     = "dice_rolled"
	EventBuilt          = "built"
	EventCardBought     = "card_bought"
	EventCardPlayed     = "card_played"
	EventBankTrade      = "bank_trade"
)

// Event is one game lifecycle notification.
type Event struct {
	Type    string    `json:"type"`
	GameID  uuid.UUID `json:"game_id"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

const subscriberBuffer = 32

// feed fans events out to a game's subscribers. Publishing never
// blocks; a subscriber with a full buffer misses the event.
type feed struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newFeed() *feed {
	return &feed{subs: make(map[int]chan Event)}
}

func (f *feed) publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (f *feed) subscribe() (<-chan Event, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++

	ch := make(chan Event, subscriberBuffer)
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		if _, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(ch)
		}
	}

	return ch, cancel
}
