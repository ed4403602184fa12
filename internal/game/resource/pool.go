package resource

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnderflow reports an arithmetic operation that would drive a
// resource count below zero. Counts never wrap or clamp.
var ErrUnderflow = errors.New("resource count underflow")

// Pool is a multiset of the five resource kinds. It is a comparable
// value type; two pools are equal when all five counts are equal.
// The zero value is the empty pool.
type Pool struct {
	Ore    int `json:"ore"`
	Grain  int `json:"grain"`
	Wool   int `json:"wool"`
	Brick  int `json:"brick"`
	Lumber int `json:"lumber"`
}

// Zero returns the empty pool.
func Zero() Pool {
	return Pool{}
}

// Uniform returns a pool holding amount of every kind.
func Uniform(amount int) Pool {
	return Pool{Ore: amount, Grain: amount, Wool: amount, Brick: amount, Lumber: amount}
}

// Explicit returns a pool with the given per-kind counts.
func Explicit(ore, grain, wool, brick, lumber int) Pool {
	return Pool{Ore: ore, Grain: grain, Wool: wool, Brick: brick, Lumber: lumber}
}

// Single returns a pool holding amount of exactly one kind.
func Single(kind Kind, amount int) Pool {
	var p Pool
	p.Set(kind, amount)

	return p
}

// Get returns the count for kind.
func (p Pool) Get(kind Kind) int {
	switch kind {
	case Ore:
		return p.Ore
	case Grain:
		return p.Grain
	case Wool:
		return p.Wool
	case Brick:
		return p.Brick
	case Lumber:
		return p.Lumber
	default:
		panic(fmt.Sprintf("resource: kind out of range: %d", int(kind)))
	}
}

// Set replaces the count for kind.
func (p *Pool) Set(kind Kind, value int) {
	switch kind {
	case Ore:
		p.Ore = value
	case Grain:
		p.Grain = value
	case Wool:
		p.Wool = value
	case Brick:
		p.Brick = value
	case Lumber:
		p.Lumber = value
	default:
		panic(fmt.Sprintf("resource: kind out of range: %d", int(kind)))
	}
}

// Add returns the element-wise sum of p and other.
func (p Pool) Add(other Pool) Pool {
	return Pool{
		Ore:    p.Ore + other.Ore,
		Grain:  p.Grain + other.Grain,
		Wool:   p.Wool + other.Wool,
		Brick:  p.Brick + other.Brick,
		Lumber: p.Lumber + other.Lumber,
	}
}

// AddAssign adds other into p.
func (p *Pool) AddAssign(other Pool) {
	*p = p.Add(other)
}

// Sub returns the element-wise difference p - other. If any kind would
// go negative it returns ErrUnderflow and p is unaffected; there is no
// partial result.
func (p Pool) Sub(other Pool) (Pool, error) {
	result := Pool{
		Ore:    p.Ore - other.Ore,
		Grain:  p.Grain - other.Grain,
		Wool:   p.Wool - other.Wool,
		Brick:  p.Brick - other.Brick,
		Lumber: p.Lumber - other.Lumber,
	}

	for _, kind := range Kinds() {
		if result.Get(kind) < 0 {
			return Pool{}, fmt.Errorf("subtract %d %s from %d: %w",
				other.Get(kind), kind, p.Get(kind), ErrUnderflow)
		}
	}

	return result, nil
}

// SubAssign subtracts other from p, failing with ErrUnderflow and
// leaving p unchanged if any count would go negative.
func (p *Pool) SubAssign(other Pool) error {
	result, err := p.Sub(other)
	if err != nil {
		return err
	}

	*p = result

	return nil
}

// Scale returns p with every count multiplied by factor.
func (p Pool) Scale(factor int) Pool {
	return Pool{
		Ore:    p.Ore * factor,
		Grain:  p.Grain * factor,
		Wool:   p.Wool * factor,
		Brick:  p.Brick * factor,
		Lumber: p.Lumber * factor,
	}
}

// Covers reports whether p holds at least other of every kind.
func (p Pool) Covers(other Pool) bool {
	_, err := p.Sub(other)

	return err == nil
}

// Each calls fn for every (kind, count) pair in the fixed kind order.
func (p Pool) Each(fn func(kind Kind, count int)) {
	for _, kind := range Kinds() {
		fn(kind, p.Get(kind))
	}
}

// Total returns the number of resource units in the pool.
func (p Pool) Total() int {
	return p.Ore + p.Grain + p.Wool + p.Brick + p.Lumber
}

// IsZero reports whether the pool is empty.
func (p Pool) IsZero() bool {
	return p == Pool{}
}

// UnmarshalJSON decodes a pool, rejecting negative counts.
func (p *Pool) UnmarshalJSON(b []byte) error {
	type plain Pool

	var decoded plain

	err := json.Unmarshal(b, &decoded)
	if err != nil {
		return fmt.Errorf("decode pool: %w", err)
	}

	pool := Pool(decoded)
	for _, kind := range Kinds() {
		if pool.Get(kind) < 0 {
			return fmt.Errorf("negative %s count %d", kind, pool.Get(kind))
		}
	}

	*p = pool

	return nil
}
