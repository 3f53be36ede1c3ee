package domain

// SizeFromDepth calcula el tamaño de posición a partir de la profundidad del
// orderbook por pata: min(profundidades) × capPct/100, recortado al máximo
// absoluto opcional (maxUSD ≤ 0 lo desactiva) y nunca negativo.
func SizeFromDepth(depthPerLegUSD []float64, capPct, maxUSD float64) float64 {
	if len(depthPerLegUSD) == 0 {
		return 0
	}
	minDepth := depthPerLegUSD[0]
	for _, d := range depthPerLegUSD[1:] {
		if d < minDepth {
			minDepth = d
		}
	}
	size := minDepth * capPct / 100
	if maxUSD > 0 && size > maxUSD {
		size = maxUSD
	}
	if size < 0 {
		return 0
	}
	return size
}
