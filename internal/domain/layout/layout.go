// Package layout maps a ranked roster onto wall instances. Small walls use
// a curated table, large walls a seeded masonry pack, and anything the
// table cannot express falls back to a golden-angle spiral.
package layout

import (
	"fmt"
	"strings"

	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/internal/domain/rating"
)

// Visual bounds.
const (
	MinScale     = 0.92
	MaxScale     = 1.45
	MinPixelSize = 88.0
	MaxPixelSize = 280.0

	// CellWidth and CellHeight are world units per grid cell.
	CellWidth  = 1.4
	CellHeight = 1.6

	// DepthStep pushes each lower rank slightly behind the previous one.
	DepthStep = 0.012

	// CuratedMax is the largest roster served from the curated table in auto mode.
	CuratedMax = 9
)

// Mode selects the placement strategy.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeCurated Mode = "curated"
	ModeMasonry Mode = "masonry"
	ModeRadial  Mode = "radial"
)

// ParseMode accepts a mode name case-insensitively. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeCurated, ModeMasonry, ModeRadial:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

type settings struct {
	override uint32
	mode     Mode
	patterns map[int]Pattern
}

// Option configures a single layout call.
type Option func(*settings)

// WithSeedOverride XORs v into the content seed.
func WithSeedOverride(v uint32) Option {
	return func(s *settings) { s.override = v }
}

// WithMode forces a placement strategy. Unknown or empty modes mean auto.
func WithMode(m Mode) Option {
	return func(s *settings) {
		if m != "" {
			s.mode = m
		}
	}
}

// WithCuratedPatterns replaces the curated table.
func WithCuratedPatterns(patterns map[int]Pattern) Option {
	return func(s *settings) { s.patterns = patterns }
}

// Result is a computed wall plus the parameters that produced it.
type Result struct {
	Instances []model.WallInstance
	// Mode is the strategy actually used, never ModeAuto.
	Mode    Mode
	Seed    uint32
	Columns int
}

// Resolve lays out roster and returns the instances in rank order.
func Resolve(roster []model.Contestant, opts ...Option) []model.WallInstance {
	return Plan(roster, opts...).Instances
}

// Plan lays out roster. The input slice is not modified and the output
// depends only on its content and the options.
func Plan(roster []model.Contestant, opts ...Option) Result {
	s := settings{mode: ModeAuto, patterns: DefaultPatterns}
	for _, opt := range opts {
		opt(&s)
	}

	n := len(roster)
	if n == 0 {
		return Result{Instances: []model.WallInstance{}, Mode: modeFor(s, 0)}
	}

	sorted := rating.SortByConservativeScore(roster)
	scores := make([]float64, n)
	lo, hi := 0.0, 0.0
	for i, c := range sorted {
		scores[i] = rating.ContestantScore(c)
		if i == 0 || scores[i] < lo {
			lo = scores[i]
		}
		if i == 0 || scores[i] > hi {
			hi = scores[i]
		}
	}

	scales := make([]float64, n)
	pixels := make([]float64, n)
	for i, sc := range scores {
		scales[i], pixels[i] = scaleFor(sc, lo, hi)
	}

	seed := Seed(sorted, s.override)
	rng := newGenerator(seed)

	mode := modeFor(s, n)
	var (
		positions [][2]float64
		columns   int
	)
	switch mode {
	case ModeCurated:
		var ok bool
		if positions, ok = curatedPositions(n, s.patterns); !ok {
			mode = ModeRadial
			positions = radialPositions(n)
		}
	case ModeMasonry:
		positions, columns = masonryPositions(scales, rng)
	default:
		mode = ModeRadial
		positions = radialPositions(n)
	}

	out := make([]model.WallInstance, n)
	for i, c := range sorted {
		out[i] = model.WallInstance{
			Contestant: c,
			Score:      scores[i],
			Scale:      scales[i],
			PixelSize:  pixels[i],
			Position:   [3]float64{positions[i][0], positions[i][1], -float64(i) * DepthStep},
			Order:      i,
		}
	}
	return Result{Instances: out, Mode: mode, Seed: seed, Columns: columns}
}

func modeFor(s settings, n int) Mode {
	switch s.mode {
	case ModeCurated, ModeMasonry, ModeRadial:
		return s.mode
	}
	if n <= CuratedMax {
		return ModeCurated
	}
	return ModeMasonry
}
