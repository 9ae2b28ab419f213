package metrics

// ResolvePrices turns a sparse date→price mapping into a complete one over
// the given dates. Known quotes fill forward; a leading gap back-fills from
// the first known quote; the fallback only applies when no quote is known at
// all. Step-function policy, no interpolation between known points.
//
// The output has exactly one strictly positive entry per input date as long
// as the fallback is positive.
func ResolvePrices(dates []string, sparsePrices map[string]float64, fallback float64) map[string]float64 {
	resolved := make(map[string]float64, len(dates))

	lastKnownPrice := fallback
	for _, date := range dates {
		if price, ok := sparsePrices[date]; ok && price > 0 {
			lastKnownPrice = price
			break
		}
	}

	for _, date := range dates {
		if price, ok := sparsePrices[date]; ok && price > 0 {
			lastKnownPrice = price
		}
		resolved[date] = lastKnownPrice
	}

	return resolved
}
