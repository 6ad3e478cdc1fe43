// Package dice provides the randomness abstraction for the Duskfall combat
// engine. Every formula in the engine draws randomness through an injected
// Source, so encounters are reproducible under a seeded source and tests can
// substitute fixed values.
package dice

// Source is the randomness provider for the engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// D20 rolls a twenty-sided die using src.
//
// Postcondition: Returns a value in [1, 20].
func D20(src Source) int {
	return src.Intn(20) + 1
}

// VariancePercent returns a bounded damage/heal variance multiplier as an
// integer percentage in [100-spread, 100+spread].
//
// Precondition: spread >= 0; src must be non-nil.
func VariancePercent(src Source, spread int) int {
	if spread <= 0 {
		return 100
	}
	return 100 - spread + src.Intn(2*spread+1)
}

// Float64 returns a uniform value in [0, 1) derived from src, so callers
// needing a probability draw share the same injected randomness as the
// integer rolls.
func Float64(src Source) float64 {
	const buckets = 1 << 30
	return float64(src.Intn(buckets)) / float64(buckets)
}
