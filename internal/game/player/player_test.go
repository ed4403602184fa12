package player

import (
	"testing"

	"github.com/hexvale/frontier/internal/game/devcard"
)

func TestParseColour(t *testing.T) {
	t.Parallel()

	type tc struct {
		name    string
		in      string
		want    Colour
		wantErr bool
	}

	tests := []tc{
		{name: "red", in: "red", want: Red},
		{name: "green", in: "green", want: Green},
		{name: "blue", in: "blue", want: Blue},
		{name: "purple", in: "purple", want: Purple},
		{name: "custom_hex", in: "#1a2b3c", want: Colour("#1a2b3c")},
		{name: "empty", in: "", wantErr: true},
		{name: "unknown_name", in: "orange", wantErr: true},
		{name: "short_hex", in: "#abc", wantErr: true},
		{name: "uppercase_hex", in: "#1A2B3C", wantErr: true},
		{name: "non_hex_digits", in: "#12345z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseColour(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %q", tt.in)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Fatalf("colour: want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPlayer_Hand(t *testing.T) {
	t.Parallel()

	p := New(Red)
	p.DevCards = []devcard.Kind{devcard.Knight, devcard.Monopoly, devcard.Knight}

	if !p.HoldsCard(devcard.Knight) {
		t.Fatalf("expected hand to hold a knight")
	}

	if p.HoldsCard(devcard.RoadBuilding) {
		t.Fatalf("hand should not hold road building")
	}

	if !p.RemoveCard(devcard.Knight) {
		t.Fatalf("expected to remove a knight")
	}

	// One of the two knights remains.
	if !p.HoldsCard(devcard.Knight) {
		t.Fatalf("second knight should remain in hand")
	}

	if len(p.DevCards) != 2 {
		t.Fatalf("hand size: want 2, got %d", len(p.DevCards))
	}

	if p.RemoveCard(devcard.YearOfPlenty) {
		t.Fatalf("removing an unheld card should report false")
	}
}

func TestPlayer_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	p := New(Blue)
	p.DevCards = []devcard.Kind{devcard.Knight}

	clone := p.Clone()
	clone.DevCards[0] = devcard.Monopoly
	clone.Roads = 3

	if p.DevCards[0] != devcard.Knight {
		t.Fatalf("clone shares the hand slice with the original")
	}

	if p.Roads != 0 {
		t.Fatalf("clone shares scalar state with the original")
	}
}
