package catalog

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// SyntheticTarget builds a stand-in catalog entry when the archive is
// unreachable. Parameters are seeded from the target id, so the same id
// always yields the same star and cached and fresh results agree.
func SyntheticTarget(id string) *Target {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	radius := round(0.3+rng.Float64()*1.5, 2)

	sectorCount := 1 + rng.Intn(3)
	sectors := make([]int, 0, sectorCount)
	next := 1 + rng.Intn(20)
	for i := 0; i < sectorCount; i++ {
		sectors = append(sectors, next)
		next += 1 + rng.Intn(26)
	}

	return &Target{
		ID:        id,
		RA:        round(rng.Float64()*360, 4),
		Dec:       round(rng.Float64()*180-90, 4),
		Magnitude: round(8+rng.Float64()*6, 2),
		Teff:      round(3200+rng.Float64()*4000, 0),
		// Main-sequence approximation: mass tracks radius
		Radius:   radius,
		Mass:     round(math.Pow(radius, 1.25), 2),
		Distance: round(20+rng.Float64()*480, 1),
		Sectors:  sectors,
		Source:   SourceSynthetic,
	}
}

// ------------------------------------------------------------------------------------------------------
func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
