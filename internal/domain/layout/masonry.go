package layout

import "math"

// Masonry tuning.
const (
	minColumns     = 5
	maxColumns     = 14
	columnsPerRoot = 2.2

	// maxScanRows bounds the greedy row scan. A tile that finds no room
	// within it drops to column 0 of a fresh row below the scanned area.
	// Fallback tiles stack downward and are left out of the centring box.
	maxScanRows = 200

	// xlScale and duoScale are the scale tiers that earn bigger tiles.
	xlScale  = 1.34
	duoScale = 1.22

	// jitterFraction is the largest per-axis jitter as a fraction of cell size.
	jitterFraction = 0.1
)

// tile is a footprint in grid cells.
type tile struct {
	w int
	h int
}

var (
	tileXL   = tile{w: 2, h: 2}
	tileWide = tile{w: 2, h: 1}
	tileTall = tile{w: 1, h: 2}
	tileOne  = tile{w: 1, h: 1}
)

// placement is a tile anchored at column x, row y.
type placement struct {
	x, y     int
	tile     tile
	fallback bool
}

// tileForScale keeps visual weight with rank: the larger the scale, the
// larger the footprint. Mid-tier orientation is a seeded coin flip.
func tileForScale(scale float64, rng *generator) tile {
	switch {
	case scale >= xlScale:
		return tileXL
	case scale >= duoScale:
		if rng.Float64() < 0.5 {
			return tileWide
		}
		return tileTall
	default:
		return tileOne
	}
}

// columnsFor aims for a landscape wall that widens as the roster grows.
func columnsFor(n int) int {
	c := int(math.Ceil(math.Sqrt(float64(n)) * columnsPerRoot))
	return min(maxColumns, max(minColumns, c))
}

// grid tracks occupied cells; rows grow on demand. overflow counts rows
// used by fallback tiles below the scanned area.
type grid struct {
	columns  int
	cells    [][]bool
	overflow int
}

func newGrid(columns int) *grid {
	return &grid{columns: columns}
}

func (g *grid) occupied(r, c int) bool {
	if r >= len(g.cells) {
		return false
	}
	return g.cells[r][c]
}

func (g *grid) fits(r, c int, t tile) bool {
	if c+t.w > g.columns {
		return false
	}
	for dy := 0; dy < t.h; dy++ {
		for dx := 0; dx < t.w; dx++ {
			if g.occupied(r+dy, c+dx) {
				return false
			}
		}
	}
	return true
}

func (g *grid) mark(r, c int, t tile) {
	for len(g.cells) < r+t.h {
		g.cells = append(g.cells, make([]bool, g.columns))
	}
	for dy := 0; dy < t.h; dy++ {
		for dx := 0; dx < t.w; dx++ {
			g.cells[r+dy][c+dx] = true
		}
	}
}

// place scans rows from the top and, inside each row, tries start columns
// in a seeded shuffled order. The first free spot wins.
func (g *grid) place(t tile, rng *generator) placement {
	starts := g.columns - t.w + 1
	for r := 0; r < maxScanRows; r++ {
		for _, c := range shuffledColumns(starts, rng) {
			if g.fits(r, c, t) {
				g.mark(r, c, t)
				return placement{x: c, y: r, tile: t}
			}
		}
	}
	p := placement{x: 0, y: maxScanRows + g.overflow, tile: t, fallback: true}
	g.overflow += t.h
	return p
}

// shuffledColumns is a Fisher-Yates permutation of [0,n).
func shuffledColumns(n int, rng *generator) []int {
	cols := make([]int, max(n, 0))
	for i := range cols {
		cols[i] = i
	}
	for i := len(cols) - 1; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		cols[i], cols[j] = cols[j], cols[i]
	}
	return cols
}

// packTiles assigns one tile per scale (rank order) and places them.
func packTiles(scales []float64, rng *generator) (placements []placement, columns int) {
	columns = columnsFor(len(scales))

	tiles := make([]tile, len(scales))
	for i, s := range scales {
		tiles[i] = tileForScale(s, rng)
	}

	g := newGrid(columns)
	placements = make([]placement, len(tiles))
	for i, t := range tiles {
		placements[i] = g.place(t, rng)
	}
	return placements, columns
}

// boundsCentre is the grid-space centre of the packed tiles. Fallback
// tiles only count when nothing else was placed.
func boundsCentre(placements []placement) (cx, cy float64) {
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := math.MinInt, math.MinInt
	for _, fallbacks := range []bool{false, true} {
		for _, p := range placements {
			if p.fallback != fallbacks {
				continue
			}
			minX, minY = min(minX, p.x), min(minY, p.y)
			maxX, maxY = max(maxX, p.x+p.tile.w), max(maxY, p.y+p.tile.h)
		}
		if minX != math.MaxInt {
			break
		}
	}
	if minX == math.MaxInt {
		return 0, 0
	}
	return float64(minX+maxX) / 2, float64(minY+maxY) / 2
}

// tileCentre is the jitter-free world position of a placement.
func tileCentre(p placement, cx, cy float64) [2]float64 {
	return [2]float64{
		(float64(p.x) + float64(p.tile.w)/2 - cx) * CellWidth,
		(cy - (float64(p.y) + float64(p.tile.h)/2)) * CellHeight,
	}
}

// masonryPositions packs one tile per scale (rank order) and returns
// centred world positions with seeded jitter.
func masonryPositions(scales []float64, rng *generator) (positions [][2]float64, columns int) {
	placements, columns := packTiles(scales, rng)
	cx, cy := boundsCentre(placements)

	positions = make([][2]float64, len(placements))
	for i, p := range placements {
		jitterX := (rng.Float64() - 0.5) * jitterFraction * CellWidth
		jitterY := (rng.Float64() - 0.5) * jitterFraction * CellHeight
		c := tileCentre(p, cx, cy)
		positions[i] = [2]float64{c[0] + jitterX, c[1] + jitterY}
	}
	return positions, columns
}
