// Package trade implements the negotiation state machine for a single
// proposed exchange between two parties.
//
// A trade moves Proposed -> LockedIn -> Accepted and never leaves
// Accepted. Proposed is the solicitation phase: any number of parties
// may signal acceptance. LockedIn fixes exactly one counter-party.
// Accepted means the bundles have already moved.
package trade

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
)

// State is the trade lifecycle phase.
type State int

const (
	Proposed State = iota
	LockedIn
	Accepted
)

func (s State) String() string {
	switch s {
	case Proposed:
		return "proposed"
	case LockedIn:
		return "locked_in"
	case Accepted:
		return "accepted"
	default:
		panic(fmt.Sprintf("trade: state out of range: %d", int(s)))
	}
}

// ParseState parses an external state name.
func ParseState(s string) (State, error) {
	switch s {
	case "proposed":
		return Proposed, nil
	case "locked_in":
		return LockedIn, nil
	case "accepted":
		return Accepted, nil
	default:
		return 0, fmt.Errorf("unknown trade state %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	parsed, err := ParseState(string(b))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

var (
	// ErrInvalidState reports a trade operation attempted outside its
	// legal state.
	ErrInvalidState = errors.New("trade operation not legal in current state")

	// ErrNoPartner reports a partner query on a trade that has not
	// been locked in.
	ErrNoPartner = errors.New("no trade partner confirmed")

	// ErrNotAccepted reports a confirmation of a party that never
	// signalled acceptance.
	ErrNotAccepted = errors.New("party has not accepted the trade")

	// ErrSelfParty reports the proposer trying to take the other side
	// of their own trade.
	ErrSelfParty = errors.New("proposer cannot be the counter-party")
)

// Trade is one proposed exchange. The offering party gives Offering
// and receives Wants; the confirmed partner does the reverse.
type Trade struct {
	From       player.Colour   `json:"from"`
	Offering   resource.Pool   `json:"offering"`
	Wants      resource.Pool   `json:"wants"`
	AcceptedBy []player.Colour `json:"accepted_by"`
	To         *player.Colour  `json:"to,omitempty"`
	State      State           `json:"state"`
	CreatedAt  time.Time       `json:"created_at"`
}

// New returns a freshly proposed trade with an empty acceptance log
// and no confirmed partner.
func New(from player.Colour, offering, wants resource.Pool) *Trade {
	return &Trade{
		From:      from,
		Offering:  offering,
		Wants:     wants,
		State:     Proposed,
		CreatedAt: time.Now().UTC(),
	}
}

// Accept records that party is willing to make this trade. The log is
// append-only; repeated accepts from one party are harmless and kept.
// The proposer already sits on the giving side and cannot accept; a
// trade settled against a single ledger would move bundles twice over
// the same resources. Legal only while Proposed.
func (t *Trade) Accept(party player.Colour) error {
	if t.State != Proposed {
		return fmt.Errorf("accept in %s: %w", t.State, ErrInvalidState)
	}

	if party == t.From {
		return fmt.Errorf("accept by proposer %s: %w", party, ErrSelfParty)
	}

	t.AcceptedBy = append(t.AcceptedBy, party)

	return nil
}

// ConfirmPartner locks in party as the counter-party and moves the
// trade to LockedIn. The party must already appear in the acceptance
// log; confirming a silent party fails with ErrNotAccepted. Legal only
// while Proposed.
func (t *Trade) ConfirmPartner(party player.Colour) error {
	if t.State != Proposed {
		return fmt.Errorf("confirm partner in %s: %w", t.State, ErrInvalidState)
	}

	if party == t.From {
		return fmt.Errorf("confirm proposer %s: %w", party, ErrSelfParty)
	}

	if !t.hasAccepted(party) {
		return fmt.Errorf("confirm %s: %w", party, ErrNotAccepted)
	}

	t.To = &party
	t.State = LockedIn

	return nil
}

func (t *Trade) hasAccepted(party player.Colour) bool {
	for _, accepted := range t.AcceptedBy {
		if accepted == party {
			return true
		}
	}

	return false
}

// Partner returns the confirmed counter-party. While the trade is
// still Proposed there is none and ErrNoPartner is returned.
func (t *Trade) Partner() (player.Colour, error) {
	if t.State == Proposed || t.To == nil {
		return "", ErrNoPartner
	}

	return *t.To, nil
}

// Complete marks the bundles as moved. Legal only while LockedIn; a
// trade can never be settled twice.
func (t *Trade) Complete() error {
	switch t.State {
	case LockedIn:
		t.State = Accepted

		return nil
	case Proposed:
		return fmt.Errorf("complete without a confirmed partner: %w", ErrInvalidState)
	default:
		return fmt.Errorf("complete an already settled trade: %w", ErrInvalidState)
	}
}

// Clone returns an independent copy of the trade.
func (t *Trade) Clone() *Trade {
	clone := *t
	clone.AcceptedBy = append([]player.Colour(nil), t.AcceptedBy...)

	if t.To != nil {
		to := *t.To
		clone.To = &to
	}

	return &clone
}

// UnmarshalJSON decodes a trade, rejecting state/partner combinations
// that the machine cannot produce.
func (t *Trade) UnmarshalJSON(b []byte) error {
	type plain Trade

	var decoded plain

	err := json.Unmarshal(b, &decoded)
	if err != nil {
		return fmt.Errorf("decode trade: %w", err)
	}

	if decoded.State != Proposed && decoded.To == nil {
		return fmt.Errorf("state %s requires a confirmed partner", decoded.State)
	}

	if decoded.State == Proposed && decoded.To != nil {
		return fmt.Errorf("proposed trade cannot have a confirmed partner")
	}

	if decoded.To != nil && *decoded.To == decoded.From {
		return fmt.Errorf("trade partner cannot be the proposer")
	}

	*t = Trade(decoded)

	return nil
}
