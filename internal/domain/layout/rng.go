package layout

import (
	"hash/fnv"
	"strconv"

	"github.com/okian/duelwall/internal/domain/model"
)

const (
	generatorIncrement = 0x6d2b79f5
	twoPow32           = 4294967296.0
)

// generator is a 32-bit seeded PRNG (mulberry32). A new one is created per
// layout call and passed explicitly; it never leaks between calls.
type generator struct {
	state uint32
}

func newGenerator(seed uint32) *generator {
	return &generator{state: seed}
}

// Float64 returns the next value in [0,1).
func (g *generator) Float64() float64 {
	g.state += generatorIncrement
	t := g.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / twoPow32
}

// Seed derives the layout seed from the ranked roster. The same roster
// content always yields the same seed; override is XORed in so callers
// can re-roll while staying reproducible.
func Seed(sorted []model.Contestant, override uint32) uint32 {
	h := fnv.New32a()
	buf := make([]byte, 0, 32)
	for i, c := range sorted {
		buf = buf[:0]
		if i > 0 {
			buf = append(buf, '|')
		}
		buf = strconv.AppendInt(buf, c.ID, 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(c.Rating), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(c.Matches), 10)
		_, _ = h.Write(buf)
	}
	return h.Sum32() ^ override
}
