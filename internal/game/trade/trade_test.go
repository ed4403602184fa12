package trade

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hexvale/frontier/internal/game/player"
	"github.com/hexvale/frontier/internal/game/resource"
)

func newTestTrade() *Trade {
	return New(player.Red,
		resource.Explicit(0, 0, 1, 0, 1),
		resource.Single(resource.Ore, 2),
	)
}

func TestNew_StartsProposed(t *testing.T) {
	t.Parallel()

	tr := newTestTrade()

	if tr.State != Proposed {
		t.Fatalf("state: want proposed, got %s", tr.State)
	}

	if len(tr.AcceptedBy) != 0 {
		t.Fatalf("acceptance log should start empty, got %v", tr.AcceptedBy)
	}

	if tr.To != nil {
		t.Fatalf("partner should start unset, got %v", *tr.To)
	}

	_, err := tr.Partner()
	if !errors.Is(err, ErrNoPartner) {
		t.Fatalf("partner query: want ErrNoPartner, got %v", err)
	}
}

func TestAccept_AppendsWhileProposed(t *testing.T) {
	t.Parallel()

	tr := newTestTrade()

	err := tr.Accept(player.Blue)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if tr.State != Proposed {
		t.Fatalf("accept changed state to %s", tr.State)
	}

	// Duplicate accepts are kept; the log is append-only.
	err = tr.Accept(player.Blue)
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}

	if len(tr.AcceptedBy) != 2 {
		t.Fatalf("log length: want 2, got %d", len(tr.AcceptedBy))
	}
}

func TestAccept_ProposerCannotTakeOtherSide(t *testing.T) {
	t.Parallel()

	tr := newTestTrade()

	err := tr.Accept(player.Red)
	if !errors.Is(err, ErrSelfParty) {
		t.Fatalf("self accept: want ErrSelfParty, got %v", err)
	}

	if len(tr.AcceptedBy) != 0 {
		t.Fatalf("self accept must not be logged, got %v", tr.AcceptedBy)
	}

	// Confirming the proposer directly is rejected too, even if the
	// acceptance log were tampered with.
	tr.AcceptedBy = append(tr.AcceptedBy, player.Red)

	err = tr.ConfirmPartner(player.Red)
	if !errors.Is(err, ErrSelfParty) {
		t.Fatalf("self confirm: want ErrSelfParty, got %v", err)
	}

	if tr.State != Proposed {
		t.Fatalf("state after rejected self confirm: want proposed, got %s", tr.State)
	}
}

func TestConfirmPartner_LocksIn(t *testing.T) {
	t.Parallel()

	tr := newTestTrade()

	err := tr.Accept(player.Blue)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	err = tr.ConfirmPartner(player.Blue)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if tr.State != LockedIn {
		t.Fatalf("state: want locked_in, got %s", tr.State)
	}

	partner, err := tr.Partner()
	if err != nil {
		t.Fatalf("partner: %v", err)
	}

	if partner != player.Blue {
		t.Fatalf("partner: want blue, got %s", partner)
	}
}

func TestConfirmPartner_RequiresPriorAccept(t *testing.T) {
	t.Parallel()

	tr := newTestTrade()

	err := tr.ConfirmPartner(player.Blue)
	if !errors.Is(err, ErrNotAccepted) {
		t.Fatalf("want ErrNotAccepted, got %v", err)
	}

	if tr.State != Proposed {
		t.Fatalf("failed confirm changed state to %s", tr.State)
	}
}

func TestTransitions_IllegalAfterLockIn(t *testing.T) {
	t.Parallel()

	type tc struct {
		name string
		op   func(*Trade) error
	}

	ops := []tc{
		{name: "accept", op: func(tr *Trade) error { return tr.Accept(player.Green) }},
		{name: "confirm", op: func(tr *Trade) error { return tr.ConfirmPartner(player.Green) }},
	}

	states := []struct {
		name    string
		prepare func(t *testing.T) *Trade
	}{
		{
			name: "locked_in",
			prepare: func(t *testing.T) *Trade {
				t.Helper()
				tr := newTestTrade()
				mustAcceptAndConfirm(t, tr, player.Blue)

				return tr
			},
		},
		{
			name: "accepted",
			prepare: func(t *testing.T) *Trade {
				t.Helper()
				tr := newTestTrade()
				mustAcceptAndConfirm(t, tr, player.Blue)

				err := tr.Complete()
				if err != nil {
					t.Fatalf("complete: %v", err)
				}

				return tr
			},
		},
	}

	for _, st := range states {
		for _, op := range ops {
			t.Run(st.name+"_"+op.name, func(t *testing.T) {
				t.Parallel()

				tr := st.prepare(t)

				err := op.op(tr)
				if !errors.Is(err, ErrInvalidState) {
					t.Fatalf("want ErrInvalidState, got %v", err)
				}
			})
		}
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	t.Run("proposed_fails", func(t *testing.T) {
		t.Parallel()

		tr := newTestTrade()

		err := tr.Complete()
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("want ErrInvalidState, got %v", err)
		}

		if tr.State != Proposed {
			t.Fatalf("failed complete changed state to %s", tr.State)
		}
	})

	t.Run("locked_in_succeeds_once", func(t *testing.T) {
		t.Parallel()

		tr := newTestTrade()
		mustAcceptAndConfirm(t, tr, player.Blue)

		err := tr.Complete()
		if err != nil {
			t.Fatalf("complete: %v", err)
		}

		if tr.State != Accepted {
			t.Fatalf("state: want accepted, got %s", tr.State)
		}

		err = tr.Complete()
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("second complete: want ErrInvalidState, got %v", err)
		}
	})
}

func TestTrade_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	tr := newTestTrade()
	mustAcceptAndConfirm(t, tr, player.Blue)

	raw, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back := new(Trade)

	err = json.Unmarshal(raw, back)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.State != LockedIn {
		t.Fatalf("state: want locked_in, got %s", back.State)
	}

	if back.From != tr.From || back.Offering != tr.Offering || back.Wants != tr.Wants {
		t.Fatalf("round trip diverged: %+v vs %+v", back, tr)
	}

	partner, err := back.Partner()
	if err != nil {
		t.Fatalf("partner: %v", err)
	}

	if partner != player.Blue {
		t.Fatalf("partner: want blue, got %s", partner)
	}
}

func TestTrade_JSONRejectsInconsistentState(t *testing.T) {
	t.Parallel()

	type tc struct {
		name string
		raw  string
	}

	tests := []tc{
		{
			name: "locked_in_without_partner",
			raw: `{"from":"red","offering":{"ore":0,"grain":0,"wool":1,"brick":0,"lumber":1},
				"wants":{"ore":2,"grain":0,"wool":0,"brick":0,"lumber":0},
				"accepted_by":[],"state":"locked_in","created_at":"2026-01-01T00:00:00Z"}`,
		},
		{
			name: "proposed_with_partner",
			raw: `{"from":"red","offering":{"ore":0,"grain":0,"wool":1,"brick":0,"lumber":1},
				"wants":{"ore":2,"grain":0,"wool":0,"brick":0,"lumber":0},
				"accepted_by":["blue"],"to":"blue","state":"proposed","created_at":"2026-01-01T00:00:00Z"}`,
		},
		{
			name: "partner_is_proposer",
			raw: `{"from":"red","offering":{"ore":0,"grain":0,"wool":1,"brick":0,"lumber":1},
				"wants":{"ore":2,"grain":0,"wool":0,"brick":0,"lumber":0},
				"accepted_by":["red"],"to":"red","state":"locked_in","created_at":"2026-01-01T00:00:00Z"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			back := new(Trade)

			err := json.Unmarshal([]byte(tt.raw), back)
			if err == nil {
				t.Fatalf("expected a decode error")
			}
		})
	}
}

func mustAcceptAndConfirm(t *testing.T, tr *Trade, party player.Colour) {
	t.Helper()

	err := tr.Accept(party)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	err = tr.ConfirmPartner(party)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
}
