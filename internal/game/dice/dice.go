// Package dice provides the injectable randomness abstraction used by the
// NPC decision engine for opportunistic purchases and target selection.
package dice

// Source is the randomness provider.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Chance reports whether a uniform roll in [0, 100) falls below percent.
//
// Postcondition: Returns false when percent <= 0 and true when percent >= 100,
// without consuming a roll in either case.
func Chance(src Source, percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return src.Intn(100) < percent
}

// Pick returns a uniformly chosen index into a collection of length n.
//
// Precondition: n > 0.
// Postcondition: Returns a value in [0, n).
func Pick(src Source, n int) int {
	if n == 1 {
		return 0
	}
	return src.Intn(n)
}
