package board

import (
	"encoding/json"
	"testing"

	"github.com/hexvale/frontier/internal/game/resource"
)

func TestNew_Layout(t *testing.T) {
	t.Parallel()

	b := New()

	if len(b.Tiles) != NumTiles {
		t.Fatalf("tiles: want %d, got %d", NumTiles, len(b.Tiles))
	}

	terrain := make(map[resource.Kind]int)
	deserts := 0
	tokens := make(map[int]int)

	for i, tile := range b.Tiles {
		if tile.ID != i {
			t.Fatalf("tile %d carries id %d", i, tile.ID)
		}

		if tile.Resource == nil {
			deserts++

			if tile.Token != 0 {
				t.Fatalf("desert tile %d carries token %d", tile.ID, tile.Token)
			}

			continue
		}

		terrain[*tile.Resource]++
		tokens[tile.Token]++
	}

	if deserts != 1 {
		t.Fatalf("deserts: want 1, got %d", deserts)
	}

	wantTerrain := map[resource.Kind]int{
		resource.Ore:    3,
		resource.Brick:  3,
		resource.Grain:  4,
		resource.Wool:   4,
		resource.Lumber: 4,
	}

	for kind, n := range wantTerrain {
		if terrain[kind] != n {
			t.Fatalf("%s tiles: want %d, got %d", kind, n, terrain[kind])
		}
	}

	wantTokens := map[int]int{
		2: 1, 3: 2, 4: 2, 5: 2, 6: 2, 8: 2, 9: 2, 10: 2, 11: 2, 12: 1,
	}

	for value, n := range wantTokens {
		if tokens[value] != n {
			t.Fatalf("token %d: want %d, got %d", value, n, tokens[value])
		}
	}

	if tokens[7] != 0 {
		t.Fatalf("board carries a 7 token")
	}
}

func TestTileLookup(t *testing.T) {
	t.Parallel()

	b := New()

	tile, err := b.Tile(0)
	if err != nil {
		t.Fatalf("tile 0: %v", err)
	}

	if tile.ID != 0 {
		t.Fatalf("tile id: want 0, got %d", tile.ID)
	}

	_, err = b.Tile(NumTiles)
	if err == nil {
		t.Fatalf("expected an error for an out-of-range tile id")
	}

	_, err = b.Tile(-1)
	if err == nil {
		t.Fatalf("expected an error for a negative tile id")
	}
}

func TestNeighbors(t *testing.T) {
	t.Parallel()

	b := New()

	for _, tile := range b.Tiles {
		neighbors, err := b.Neighbors(tile.ID)
		if err != nil {
			t.Fatalf("neighbors of %d: %v", tile.ID, err)
		}

		// Interior tiles have 6 neighbors, edge tiles 3 or 4.
		if len(neighbors) < 3 || len(neighbors) > 6 {
			t.Fatalf("tile %d: %d neighbors", tile.ID, len(neighbors))
		}

		// Adjacency is symmetric.
		for _, n := range neighbors {
			back, err := b.Neighbors(n)
			if err != nil {
				t.Fatalf("neighbors of %d: %v", n, err)
			}

			found := false

			for _, candidate := range back {
				if candidate == tile.ID {
					found = true

					break
				}
			}

			if !found {
				t.Fatalf("tile %d lists %d but not vice versa", tile.ID, n)
			}
		}
	}

	// The center tile touches six tiles.
	for _, tile := range b.Tiles {
		if tile.Coord == (Coord{}) {
			neighbors, err := b.Neighbors(tile.ID)
			if err != nil {
				t.Fatalf("center neighbors: %v", err)
			}

			if len(neighbors) != 6 {
				t.Fatalf("center neighbors: want 6, got %d", len(neighbors))
			}
		}
	}
}

func TestBoard_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	b := New()

	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Board

	err = json.Unmarshal(raw, &back)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(back.Tiles) != len(b.Tiles) {
		t.Fatalf("tiles: want %d, got %d", len(b.Tiles), len(back.Tiles))
	}

	for i, tile := range b.Tiles {
		got := back.Tiles[i]
		if got.ID != tile.ID || got.Coord != tile.Coord || got.Token != tile.Token {
			t.Fatalf("tile %d diverged: %+v vs %+v", i, got, tile)
		}

		switch {
		case tile.Resource == nil && got.Resource != nil:
			t.Fatalf("tile %d gained terrain", i)
		case tile.Resource != nil && (got.Resource == nil || *got.Resource != *tile.Resource):
			t.Fatalf("tile %d terrain diverged", i)
		}
	}
}
