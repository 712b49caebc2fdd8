// Package tile maps z/x/y tile coordinates onto a rectangle of the noise
// domain so a field can be browsed like a slippy map.
package tile

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxZoom bounds the zoom levels the server accepts.
const MaxZoom = 20

// Coords is a tile coordinate (z/x/y). Y grows downwards as in web maps.
type Coords struct {
	Z uint32 // Zoom level
	X uint32 // Column
	Y uint32 // Row
}

// NewCoords creates a new Coords from zoom, x, y values
func NewCoords(z, x, y uint32) Coords {
	return Coords{Z: z, X: x, Y: y}
}

// String returns the tile coordinate as "z{zoom}_x{x}_y{y}"
func (c Coords) String() string {
	return fmt.Sprintf("z%d_x%d_y%d", c.Z, c.X, c.Y)
}

// Path returns the file name for this tile
func (c Coords) Path(extension string) string {
	return fmt.Sprintf("%s.%s", c.String(), extension)
}

// Tile returns the maptile.Tile for this coordinate
func (c Coords) Tile() maptile.Tile {
	return maptile.New(c.X, c.Y, maptile.Zoom(c.Z))
}

// Valid reports whether x and y lie inside the zoom level.
func (c Coords) Valid() bool {
	return c.Z <= MaxZoom && c.Tile().Valid()
}

// Parent returns the tile one zoom level up that contains c.
func (c Coords) Parent() Coords {
	if c.Z == 0 {
		return c
	}
	p := c.Tile().Parent()
	return NewCoords(uint32(p.Z), p.X, p.Y)
}

// Children returns the four tiles one zoom level down.
func (c Coords) Children() []Coords {
	kids := c.Tile().Children()
	out := make([]Coords, len(kids))
	for i, k := range kids {
		out[i] = NewCoords(uint32(k.Z), k.X, k.Y)
	}
	return out
}

// Bound returns the part of world covered by the tile. Zoom 0 is the whole
// world; row 0 is at world.Max.Y.
func (c Coords) Bound(world orb.Bound) orb.Bound {
	n := float64(uint64(1) << c.Z)
	w := (world.Max.X() - world.Min.X()) / n
	h := (world.Max.Y() - world.Min.Y()) / n

	minX := world.Min.X() + float64(c.X)*w
	maxY := world.Max.Y() - float64(c.Y)*h

	return orb.Bound{
		Min: orb.Point{minX, maxY - h},
		Max: orb.Point{minX + w, maxY},
	}
}

// ParseCoords parses a tile string like "z13_x4297_y2754" into Coords
func ParseCoords(s string) (Coords, error) {
	var c Coords
	_, err := fmt.Sscanf(s, "z%d_x%d_y%d", &c.Z, &c.X, &c.Y)
	if err != nil {
		return c, fmt.Errorf("invalid tile coordinate format: %s", s)
	}
	return c, nil
}

// TileRange represents a range of tiles at one zoom level
type TileRange struct {
	Z          uint32
	MinX, MaxX uint32
	MinY, MaxY uint32
}

// FullRange covers every tile of zoom level z.
func FullRange(z uint32) TileRange {
	last := uint32(1)<<z - 1
	return TileRange{Z: z, MaxX: last, MaxY: last}
}

// ForEach calls the given function for each tile in the range, row by row
func (r TileRange) ForEach(fn func(Coords)) {
	for y := r.MinY; y <= r.MaxY; y++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			fn(NewCoords(r.Z, x, y))
		}
	}
}

// Count returns the total number of tiles in this range
func (r TileRange) Count() int {
	return int(r.MaxX-r.MinX+1) * int(r.MaxY-r.MinY+1)
}
