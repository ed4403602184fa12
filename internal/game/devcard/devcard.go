// Package devcard holds the development-card kinds and the bank's
// counted card stock.
package devcard

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
)

// Kind is one of the five development-card kinds.
type Kind int

const (
	YearOfPlenty Kind = iota
	Monopoly
	Knight
	RoadBuilding
	HiddenVictoryPoint

	numKinds = 5
)

// Kinds returns all card kinds in the fixed iteration order.
func Kinds() [numKinds]Kind {
	return [numKinds]Kind{YearOfPlenty, Monopoly, Knight, RoadBuilding, HiddenVictoryPoint}
}

func (k Kind) String() string {
	switch k {
	case YearOfPlenty:
		return "year_of_plenty"
	case Monopoly:
		return "monopoly"
	case Knight:
		return "knight"
	case RoadBuilding:
		return "road_building"
	case HiddenVictoryPoint:
		return "hidden_victory_point"
	default:
		panic(fmt.Sprintf("devcard: kind out of range: %d", int(k)))
	}
}

// ParseKind parses an external card name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "year_of_plenty":
		return YearOfPlenty, nil
	case "monopoly":
		return Monopoly, nil
	case "knight":
		return Knight, nil
	case "road_building":
		return RoadBuilding, nil
	case "hidden_victory_point":
		return HiddenVictoryPoint, nil
	default:
		return 0, fmt.Errorf("unknown development card kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

// Canonical counts per kind; 25 cards in total.
const (
	seedYearOfPlenty       = 2
	seedMonopoly           = 2
	seedKnight             = 14
	seedRoadBuilding       = 2
	seedHiddenVictoryPoint = 5

	// TotalCards is the canonical deck size.
	TotalCards = seedYearOfPlenty + seedMonopoly + seedKnight + seedRoadBuilding + seedHiddenVictoryPoint
)

func seedCount(kind Kind) int {
	switch kind {
	case YearOfPlenty:
		return seedYearOfPlenty
	case Monopoly:
		return seedMonopoly
	case Knight:
		return seedKnight
	case RoadBuilding:
		return seedRoadBuilding
	case HiddenVictoryPoint:
		return seedHiddenVictoryPoint
	default:
		panic(fmt.Sprintf("devcard: kind out of range: %d", int(kind)))
	}
}

var (
	// ErrExhausted reports a draw from a stock with no cards left of
	// any kind.
	ErrExhausted = errors.New("no development cards available")

	// ErrOverReturn reports a return that would push a kind above its
	// canonical count.
	ErrOverReturn = errors.New("development card return exceeds canonical count")
)

// Stock is the bank's counted development-card inventory.
type Stock struct {
	counts map[Kind]int
}

// NewStock returns a stock seeded with the canonical counts.
func NewStock() *Stock {
	counts := make(map[Kind]int, numKinds)
	for _, kind := range Kinds() {
		counts[kind] = seedCount(kind)
	}

	return &Stock{counts: counts}
}

// DrawRandom removes and returns a uniformly random card among the
// kinds that still have stock, trying each kind at most once. It fails
// with ErrExhausted only when every kind is empty.
func (s *Stock) DrawRandom() (Kind, error) {
	kinds := Kinds()
	for _, i := range rand.Perm(len(kinds)) {
		kind := kinds[i]
		if s.counts[kind] > 0 {
			s.counts[kind]--

			return kind, nil
		}
	}

	return 0, ErrExhausted
}

// Return puts one card of kind back into the stock. Returning more
// cards than were ever drawn would break the 25-card total, so a
// return above the canonical count fails with ErrOverReturn.
func (s *Stock) Return(kind Kind) error {
	if s.counts[kind] >= seedCount(kind) {
		return fmt.Errorf("return %s at %d: %w", kind, s.counts[kind], ErrOverReturn)
	}

	s.counts[kind]++

	return nil
}

// Count returns the remaining cards of kind.
func (s *Stock) Count(kind Kind) int {
	return s.counts[kind]
}

// Remaining returns the total cards left in the stock.
func (s *Stock) Remaining() int {
	total := 0
	for _, n := range s.counts {
		total += n
	}

	return total
}

// Clone returns an independent copy of the stock.
func (s *Stock) Clone() *Stock {
	counts := make(map[Kind]int, len(s.counts))
	for kind, n := range s.counts {
		counts[kind] = n
	}

	return &Stock{counts: counts}
}

// MarshalJSON encodes the stock as a mapping from card name to count.
func (s *Stock) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.counts)
}

// UnmarshalJSON decodes the stock, rejecting counts outside [0, seed].
func (s *Stock) UnmarshalJSON(b []byte) error {
	var counts map[Kind]int

	err := json.Unmarshal(b, &counts)
	if err != nil {
		return fmt.Errorf("decode stock: %w", err)
	}

	full := make(map[Kind]int, numKinds)
	for _, kind := range Kinds() {
		n := counts[kind]
		if n < 0 || n > seedCount(kind) {
			return fmt.Errorf("%s count %d outside [0, %d]", kind, n, seedCount(kind))
		}

		full[kind] = n
	}

	s.counts = full

	return nil
}
