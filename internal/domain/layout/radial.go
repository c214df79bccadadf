package layout

import "math"

const (
	radialSpacing = 1.25
	radialSquash  = 0.82
)

// goldenAngle is π(3-√5), the phyllotaxis divergence angle.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// radialPositions places n points on a golden-angle spiral, index 0 at the
// origin. The spiral never overlaps and works for any n.
func radialPositions(n int) [][2]float64 {
	out := make([][2]float64, n)
	for i := 1; i < n; i++ {
		radius := radialSpacing * math.Sqrt(float64(i))
		angle := float64(i) * goldenAngle
		out[i] = [2]float64{radius * math.Cos(angle), radius * math.Sin(angle) * radialSquash}
	}
	return out
}
