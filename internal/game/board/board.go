// Package board builds the static hex tile layout. The board has no
// behavior beyond construction and adjacency lookup; production
// decisions read (tile id, resource kind, token value) triples off it.
package board

import (
	"fmt"
	"math/rand/v2"

	"github.com/hexvale/frontier/internal/game/resource"
)

// Radius is the board's hex radius; a radius-2 axial grid has 19 tiles.
const Radius = 2

// NumTiles is the tile count of a radius-2 board.
const NumTiles = 19

// Coord is an axial hex coordinate.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Tile is one hex. A nil Resource marks the desert; the desert carries
// no token.
type Tile struct {
	ID       int            `json:"id"`
	Coord    Coord          `json:"coord"`
	Resource *resource.Kind `json:"resource,omitempty"`
	Token    int            `json:"token,omitempty"`
}

// Board is the fixed tile layout, randomized once at construction.
type Board struct {
	Tiles []Tile `json:"tiles"`
}

// Canonical terrain multiset: 18 producing tiles plus one desert.
func terrainDeck() []*resource.Kind {
	counts := []struct {
		kind resource.Kind
		n    int
	}{
		{resource.Ore, 3},
		{resource.Brick, 3},
		{resource.Grain, 4},
		{resource.Wool, 4},
		{resource.Lumber, 4},
	}

	deck := make([]*resource.Kind, 0, NumTiles)
	for _, c := range counts {
		for range c.n {
			kind := c.kind
			deck = append(deck, &kind)
		}
	}

	deck = append(deck, nil) // desert

	return deck
}

// Canonical token multiset for the 18 producing tiles; no 7.
func tokenDeck() []int {
	return []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}
}

// New returns a board with terrain and tokens shuffled over the
// radius-2 grid.
func New() Board {
	coords := gridCoords()

	terrain := terrainDeck()
	rand.Shuffle(len(terrain), func(i, j int) {
		terrain[i], terrain[j] = terrain[j], terrain[i]
	})

	tokens := tokenDeck()
	rand.Shuffle(len(tokens), func(i, j int) {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	})

	tiles := make([]Tile, 0, NumTiles)
	next := 0

	for i, coord := range coords {
		tile := Tile{ID: i, Coord: coord, Resource: terrain[i]}
		if tile.Resource != nil {
			tile.Token = tokens[next]
			next++
		}

		tiles = append(tiles, tile)
	}

	return Board{Tiles: tiles}
}

func gridCoords() []Coord {
	coords := make([]Coord, 0, NumTiles)

	for q := -Radius; q <= Radius; q++ {
		for r := -Radius; r <= Radius; r++ {
			if abs(q+r) > Radius {
				continue
			}

			coords = append(coords, Coord{Q: q, R: r})
		}
	}

	return coords
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}

// Tile returns the tile with the given id.
func (b Board) Tile(id int) (Tile, error) {
	if id < 0 || id >= len(b.Tiles) {
		return Tile{}, fmt.Errorf("no tile with id %d", id)
	}

	return b.Tiles[id], nil
}

// Neighbors returns the ids of the tiles adjacent to id, in no
// particular order.
func (b Board) Neighbors(id int) ([]int, error) {
	tile, err := b.Tile(id)
	if err != nil {
		return nil, err
	}

	directions := [6]Coord{
		{Q: 1, R: 0}, {Q: 1, R: -1}, {Q: 0, R: -1},
		{Q: -1, R: 0}, {Q: -1, R: 1}, {Q: 0, R: 1},
	}

	byCoord := make(map[Coord]int, len(b.Tiles))
	for _, t := range b.Tiles {
		byCoord[t.Coord] = t.ID
	}

	var neighbors []int

	for _, d := range directions {
		c := Coord{Q: tile.Coord.Q + d.Q, R: tile.Coord.R + d.R}
		if n, ok := byCoord[c]; ok {
			neighbors = append(neighbors, n)
		}
	}

	return neighbors, nil
}
