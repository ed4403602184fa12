// Package resource defines the five tradable resource kinds and the
// Pool multiset that every other economy component moves around.
package resource

import "fmt"

// Kind is one of the five resource kinds.
type Kind int

const (
	Ore Kind = iota
	Grain
	Wool
	Brick
	Lumber

	numKinds = 5
)

// Kinds returns all resource kinds in the fixed iteration order.
func Kinds() [numKinds]Kind {
	return [numKinds]Kind{Ore, Grain, Wool, Brick, Lumber}
}

func (k Kind) String() string {
	switch k {
	case Ore:
		return "ore"
	case Grain:
		return "grain"
	case Wool:
		return "wool"
	case Brick:
		return "brick"
	case Lumber:
		return "lumber"
	default:
		panic(fmt.Sprintf("resource: kind out of range: %d", int(k)))
	}
}

// ParseKind parses an external resource name. Unknown names are an
// error, not a panic; this input crosses the API boundary.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "ore":
		return Ore, nil
	case "grain":
		return Grain, nil
	case "wool":
		return Wool, nil
	case "brick":
		return Brick, nil
	case "lumber":
		return Lumber, nil
	default:
		return 0, fmt.Errorf("unknown resource kind %q", s)
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
