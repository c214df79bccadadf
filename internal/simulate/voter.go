package simulate

// RandomSource yields uniform floats in [0,1).
type RandomSource interface {
	Float64() float64
}

// Vote picks a winner under the Bradley-Terry model: A wins with
// probability a/(a+b) of the non-tie mass.
func Vote(a, b, tieRate float64, rnd RandomSource) string {
	if tieRate > 0 && rnd.Float64() < tieRate {
		return "tie"
	}
	if a+b <= 0 || rnd.Float64() < a/(a+b) {
		return "a"
	}
	return "b"
}
