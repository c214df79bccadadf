package layout

// Pattern lists how many slots each row holds, top row first.
type Pattern []int

// DefaultPatterns are the hand-tuned arrangements for small walls, keyed
// by contestant count. Rank 0 takes the middle slot of the top row, or the
// left one of the centre pair when that row is even.
var DefaultPatterns = map[int]Pattern{
	1: {1},
	2: {2},
	3: {1, 2},
	4: {1, 3},
	5: {2, 3},
	6: {1, 2, 3},
	7: {1, 3, 3},
	8: {2, 3, 3},
	9: {3, 3, 3},
}

// slots expands a pattern into (x,y) offsets in rank order. Rows fill top
// to bottom; inside a row the centre column fills first, then outward
// left before right.
func (p Pattern) slots() [][2]float64 {
	out := make([][2]float64, 0, p.size())
	rows := len(p)
	for r, count := range p {
		y := (float64(rows-1)/2 - float64(r)) * CellHeight
		for _, col := range centreOut(count) {
			x := (float64(col) - float64(count-1)/2) * CellWidth
			out = append(out, [2]float64{x, y})
		}
	}
	return out
}

func (p Pattern) size() int {
	n := 0
	for _, c := range p {
		n += c
	}
	return n
}

// centreOut returns column indices for a row of count slots, middle first.
func centreOut(count int) []int {
	cols := make([]int, 0, count)
	mid := (count - 1) / 2
	cols = append(cols, mid)
	for step := 1; len(cols) < count; step++ {
		if left := mid - step; left >= 0 {
			cols = append(cols, left)
		}
		if right := mid + step; right < count && len(cols) < count {
			cols = append(cols, right)
		}
	}
	return cols
}

// curatedPositions lays out n slots from the table. ok is false when the
// table has no usable pattern for n.
func curatedPositions(n int, patterns map[int]Pattern) ([][2]float64, bool) {
	p, found := patterns[n]
	if !found || p.size() != n {
		return nil, false
	}
	return p.slots(), true
}
