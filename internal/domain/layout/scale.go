package layout

import "math"

const logisticSteepness = 4.0

// emphasis maps score onto the logistic curve between the roster's min and
// max score. ok is false when every score is equal.
func emphasis(score, lo, hi float64) (weight float64, ok bool) {
	if hi == lo {
		return 0, false
	}
	normalized := math.Min(1, math.Max(0, (score-lo)/(hi-lo)))
	return 1 / (1 + math.Exp(-logisticSteepness*(normalized-0.5))), true
}

// scaleFor returns the render scale and pixel size for score.
func scaleFor(score, lo, hi float64) (scale, pixelSize float64) {
	w, ok := emphasis(score, lo, hi)
	if !ok {
		return (MinScale + MaxScale) / 2, (MinPixelSize + MaxPixelSize) / 2
	}
	return MinScale + w*(MaxScale-MinScale), MinPixelSize + w*(MaxPixelSize-MinPixelSize)
}
