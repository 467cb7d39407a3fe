package predictions

import "sort"

// TopBreeds acota el ranking de razas por usuario.
const TopBreeds = 10

// BreedStat es la entrada del ranking de razas de un usuario.
type BreedStat struct {
	Breed         string  `json:"breed"`
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// ComputeBreedStats es una función pura sobre el set recuperado: cuenta las
// predicciones por raza con su confianza promedio, ordenadas por frecuencia
// descendente y cortadas a TopBreeds. Mismo resultado en todos los backends.
func ComputeBreedStats(items []Prediction) []BreedStat {
	counts := make(map[string]int)
	sums := make(map[string]float64)

	for _, p := range items {
		breed := p.Breed
		if breed == "" {
			breed = "Unknown"
		}
		counts[breed]++
		sums[breed] += p.Confidence
	}

	out := make([]BreedStat, 0, len(counts))
	for breed, count := range counts {
		out = append(out, BreedStat{
			Breed:         breed,
			Count:         count,
			AvgConfidence: sums[breed] / float64(count),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Breed < out[j].Breed
	})

	if len(out) > TopBreeds {
		out = out[:TopBreeds]
	}
	return out
}

// TopK devuelve los k índices de mayor probabilidad, descendente.
func TopK(probs []float64, k int) []int {
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return probs[idx[i]] > probs[idx[j]]
	})
	if len(idx) > k {
		idx = idx[:k]
	}
	return idx
}
