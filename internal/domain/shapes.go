package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// Shape is a named piece template. Instances are produced by a Catalog.
type Shape struct {
	Name   string
	Blocks []BlockPosition
}

var palette = []string{
	"#ff3b3b",
	"#00d4aa",
	"#0099ff",
	"#00ff88",
	"#ffdd00",
	"#ff6bcf",
	"#9d4edd",
	"#ff8500",
	"#06ffa5",
	"#ff0080",
	"#00ffff",
	"#8a2be2",
	"#ff1493",
	"#00ff00",
	"#ffd700",
}

var shapes = []Shape{
	{Name: "single", Blocks: []BlockPosition{{0, 0}}},

	{Name: "double-h", Blocks: []BlockPosition{{0, 0}, {1, 0}}},
	{Name: "double-v", Blocks: []BlockPosition{{0, 0}, {0, 1}}},

	{Name: "triple-h", Blocks: []BlockPosition{{0, 0}, {1, 0}, {2, 0}}},
	{Name: "triple-v", Blocks: []BlockPosition{{0, 0}, {0, 1}, {0, 2}}},
	{Name: "L-shape", Blocks: []BlockPosition{{0, 0}, {0, 1}, {1, 1}}},
	{Name: "corner", Blocks: []BlockPosition{{0, 0}, {1, 0}, {0, 1}}},

	{Name: "quad-h", Blocks: []BlockPosition{{0, 0}, {1, 0}, {2, 0}, {3, 0}}},
	{Name: "quad-v", Blocks: []BlockPosition{{0, 0}, {0, 1}, {0, 2}, {0, 3}}},
	{Name: "square", Blocks: []BlockPosition{{0, 0}, {1, 0}, {0, 1}, {1, 1}}},
	{Name: "T-shape", Blocks: []BlockPosition{{1, 0}, {0, 1}, {1, 1}, {2, 1}}},
	{Name: "Z-shape", Blocks: []BlockPosition{{0, 0}, {1, 0}, {1, 1}, {2, 1}}},
	{Name: "S-shape", Blocks: []BlockPosition{{1, 0}, {2, 0}, {0, 1}, {1, 1}}},
	{Name: "L-big", Blocks: []BlockPosition{{0, 0}, {0, 1}, {0, 2}, {1, 2}}},
	{Name: "J-big", Blocks: []BlockPosition{{1, 0}, {1, 1}, {1, 2}, {0, 2}}},

	{Name: "penta-h", Blocks: []BlockPosition{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}},
	{Name: "penta-v", Blocks: []BlockPosition{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}},
	{Name: "plus", Blocks: []BlockPosition{{1, 0}, {0, 1}, {1, 1}, {2, 1}, {1, 2}}},
	{Name: "cross-big", Blocks: []BlockPosition{{2, 0}, {0, 1}, {1, 1}, {2, 1}, {3, 1}}},

	{Name: "dog", Blocks: []BlockPosition{{0, 0}, {1, 0}, {1, 1}, {2, 1}, {2, 2}}},
	{Name: "stairs", Blocks: []BlockPosition{{0, 2}, {1, 1}, {1, 2}, {2, 0}, {2, 1}}},
}

// Shapes returns a copy of the template library.
func Shapes() []Shape {
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = Shape{Name: s.Name, Blocks: append([]BlockPosition(nil), s.Blocks...)}
	}
	return out
}

// Palette returns a copy of the colours pieces are drawn from.
func Palette() []string {
	return append([]string(nil), palette...)
}

// ShapeByName looks up a template by name.
func ShapeByName(name string) (Shape, bool) {
	for _, s := range shapes {
		if s.Name == name {
			return Shape{Name: s.Name, Blocks: append([]BlockPosition(nil), s.Blocks...)}, true
		}
	}
	return Shape{}, false
}

// Catalog produces uniquely identified, randomly coloured pieces.
// A Catalog is not safe for concurrent use.
type Catalog struct {
	rng    *rand.Rand
	nextID uint64
}

// NewCatalog constructs a Catalog with provided rng or a time-seeded default.
func NewCatalog(rng *rand.Rand) *Catalog {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Catalog{rng: rng}
}

// GeneratePieces draws count pieces, each with a uniformly chosen template and colour.
func (c *Catalog) GeneratePieces(count int) []Piece {
	if count <= 0 {
		return nil
	}
	pieces := make([]Piece, 0, count)
	for i := 0; i < count; i++ {
		shape := shapes[c.rng.Intn(len(shapes))]
		color := palette[c.rng.Intn(len(palette))]
		pieces = append(pieces, c.NewPiece(shape, color))
	}
	return pieces
}

// NewPiece instantiates shape with the given colour and a fresh id.
func (c *Catalog) NewPiece(shape Shape, color string) Piece {
	c.nextID++
	return Piece{
		ID:     fmt.Sprintf("shape-%d", c.nextID),
		Blocks: append([]BlockPosition(nil), shape.Blocks...),
		Color:  color,
		Name:   shape.Name,
	}
}

// NormalizeBlocks shifts blocks so that the minimum x and y are both 0.
func NormalizeBlocks(blocks []BlockPosition) []BlockPosition {
	if len(blocks) == 0 {
		return nil
	}
	minX, minY := blocks[0].X, blocks[0].Y
	for _, b := range blocks[1:] {
		minX = min(minX, b.X)
		minY = min(minY, b.Y)
	}
	out := make([]BlockPosition, len(blocks))
	for i, b := range blocks {
		out[i] = BlockPosition{X: b.X - minX, Y: b.Y - minY}
	}
	return out
}

// RotatePiece turns p a quarter turn, mapping (x, y) to (-y, x), and renormalises.
// The result keeps p's id, colour and name.
func RotatePiece(p Piece) Piece {
	rotated := make([]BlockPosition, len(p.Blocks))
	for i, b := range p.Blocks {
		rotated[i] = BlockPosition{X: -b.Y, Y: b.X}
	}
	out := p
	out.Blocks = NormalizeBlocks(rotated)
	return out
}
