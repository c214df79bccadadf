package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Generate builds n synthetic contestants. Strengths are exp(N(0, spread))
// so that Bradley-Terry odds between neighbours stay moderate.
func Generate(n int, spread float64, seed uint64) []Contestant {
	rnd := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]Contestant, n)
	for i := range out {
		name := fmt.Sprintf("sim-%03d", i+1)
		out[i] = Contestant{
			Name:     name,
			ImageRef: "https://picsum.photos/seed/" + name + "/256",
			Strength: math.Exp(rnd.NormFloat64() * spread),
		}
	}
	return out
}

// CSV renders contestants in the roster import format.
func CSV(contestants []Contestant) string {
	var b strings.Builder
	b.WriteString("name,image_url\n")
	for _, c := range contestants {
		b.WriteString(c.Name)
		b.WriteByte(',')
		b.WriteString(c.ImageRef)
		b.WriteByte('\n')
	}
	return b.String()
}
