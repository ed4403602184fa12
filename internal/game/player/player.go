// Package player defines party identities and the per-party ledger.
package player

import (
	"fmt"

	"github.com/hexvale/frontier/internal/game/devcard"
	"github.com/hexvale/frontier/internal/game/resource"
)

// Colour identifies a party. It is either one of the four named
// colours or a custom "#rrggbb" identity. Colours are opaque: they are
// only ever compared for equality.
type Colour string

const (
	Red    Colour = "red"
	Green  Colour = "green"
	Blue   Colour = "blue"
	Purple Colour = "purple"
)

// ParseColour validates an external colour string.
func ParseColour(s string) (Colour, error) {
	switch s {
	case "red", "green", "blue", "purple":
		return Colour(s), nil
	}

	if isHexColour(s) {
		return Colour(s), nil
	}

	return "", fmt.Errorf("invalid colour %q", s)
}

func isHexColour(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}

	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}

	return true
}

// Player is one party's private ledger: its resources, its
// development-card hand, and its build tallies.
type Player struct {
	Colour        Colour         `json:"colour"`
	Resources     resource.Pool  `json:"resources"`
	DevCards      []devcard.Kind `json:"development_cards"`
	Roads         int            `json:"roads"`
	KnightsPlayed int            `json:"knights_played"`
}

// New returns a player with an empty ledger.
func New(colour Colour) *Player {
	return &Player{Colour: colour}
}

// HoldsCard reports whether the player's hand contains kind.
func (p *Player) HoldsCard(kind devcard.Kind) bool {
	for _, held := range p.DevCards {
		if held == kind {
			return true
		}
	}

	return false
}

// RemoveCard removes one instance of kind from the hand. It reports
// whether a card was removed.
func (p *Player) RemoveCard(kind devcard.Kind) bool {
	for i, held := range p.DevCards {
		if held == kind {
			p.DevCards = append(p.DevCards[:i], p.DevCards[i+1:]...)

			return true
		}
	}

	return false
}

// Clone returns an independent copy of the ledger.
func (p *Player) Clone() *Player {
	clone := *p
	clone.DevCards = append([]devcard.Kind(nil), p.DevCards...)

	return &clone
}
