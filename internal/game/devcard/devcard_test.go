package devcard

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewStock_CanonicalCounts(t *testing.T) {
	t.Parallel()

	s := NewStock()

	want := map[Kind]int{
		YearOfPlenty:       2,
		Monopoly:           2,
		Knight:             14,
		RoadBuilding:       2,
		HiddenVictoryPoint: 5,
	}

	for kind, n := range want {
		if s.Count(kind) != n {
			t.Fatalf("%s: want %d, got %d", kind, n, s.Count(kind))
		}
	}

	if s.Remaining() != TotalCards {
		t.Fatalf("remaining: want %d, got %d", TotalCards, s.Remaining())
	}
}

func TestStock_DrawUntilExhausted(t *testing.T) {
	t.Parallel()

	s := NewStock()
	drawn := make(map[Kind]int)

	for i := range TotalCards {
		kind, err := s.DrawRandom()
		if err != nil {
			t.Fatalf("draw %d: unexpected error: %v", i+1, err)
		}

		drawn[kind]++
	}

	if s.Remaining() != 0 {
		t.Fatalf("remaining after 25 draws: want 0, got %d", s.Remaining())
	}

	// All 25 cards accounted for, none over-drawn.
	for _, kind := range Kinds() {
		if drawn[kind] != seedCount(kind) {
			t.Fatalf("%s drawn: want %d, got %d", kind, seedCount(kind), drawn[kind])
		}
	}

	_, err := s.DrawRandom()
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("26th draw: want ErrExhausted, got %v", err)
	}
}

func TestStock_ReturnRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStock()

	kind, err := s.DrawRandom()
	if err != nil {
		t.Fatalf("draw: %v", err)
	}

	if s.Remaining() != TotalCards-1 {
		t.Fatalf("remaining after draw: want %d, got %d", TotalCards-1, s.Remaining())
	}

	err = s.Return(kind)
	if err != nil {
		t.Fatalf("return: %v", err)
	}

	if s.Remaining() != TotalCards {
		t.Fatalf("remaining after return: want %d, got %d", TotalCards, s.Remaining())
	}
}

func TestStock_ReturnAboveCanonicalFails(t *testing.T) {
	t.Parallel()

	s := NewStock()

	err := s.Return(Monopoly)
	if !errors.Is(err, ErrOverReturn) {
		t.Fatalf("want ErrOverReturn, got %v", err)
	}

	if s.Count(Monopoly) != 2 {
		t.Fatalf("failed return mutated the stock: %d", s.Count(Monopoly))
	}
}

func TestStock_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStock()

	for range 3 {
		_, err := s.DrawRandom()
		if err != nil {
			t.Fatalf("draw: %v", err)
		}
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back := new(Stock)

	err = json.Unmarshal(raw, back)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, kind := range Kinds() {
		if back.Count(kind) != s.Count(kind) {
			t.Fatalf("%s: want %d, got %d", kind, s.Count(kind), back.Count(kind))
		}
	}
}

func TestStock_JSONRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	type tc struct {
		name string
		raw  string
	}

	tests := []tc{
		{name: "negative", raw: `{"knight":-1}`},
		{name: "above_seed", raw: `{"monopoly":3}`},
		{name: "unknown_kind", raw: `{"chapel":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			back := new(Stock)

			err := json.Unmarshal([]byte(tt.raw), back)
			if err == nil {
				t.Fatalf("expected a decode error for %s", tt.raw)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds() {
		parsed, err := ParseKind(kind.String())
		if err != nil {
			t.Fatalf("parse %s: %v", kind, err)
		}

		if parsed != kind {
			t.Fatalf("parse %s: got %s", kind, parsed)
		}
	}

	_, err := ParseKind("chapel")
	if err == nil {
		t.Fatalf("expected an error for unknown kind")
	}
}
