// Package dice provides the core randomness abstraction and roll-result types
// for the Helios combat engine.
package dice

import "fmt"

// PoolResult holds the full audit trail for a single pool of combat dice.
//
// Postcondition: Hits(threshold) counts only values >= threshold.
type PoolResult struct {
	Sides int   // faces per die
	Dice  []int // individual die results, each in [1, Sides]
}

// Hits returns the number of dice at or above threshold.
//
// Postcondition: 0 <= return value <= len(r.Dice).
func (r PoolResult) Hits(threshold int) int {
	hits := 0
	for _, d := range r.Dice {
		if d >= threshold {
			hits++
		}
	}
	return hits
}

// String returns a human-readable audit string in the format:
//
//	"3d10 → [4 9 2]"
//
// Precondition: r.Sides >= 2.
func (r PoolResult) String() string {
	if r.Sides < 2 {
		panic("dice: PoolResult.String() precondition violated: Sides must be >= 2")
	}
	return fmt.Sprintf("%dd%d → %v", len(r.Dice), r.Sides, r.Dice)
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// PoolRoller rolls whole dice pools. Roller is the logging implementation;
// consumers that roll pools should depend on this interface so every pool
// passes through one audited path.
type PoolRoller interface {
	// Pool rolls count dice with the given number of sides.
	//
	// Precondition: count >= 0; sides >= 2.
	Pool(count, sides int) PoolResult
}

// RollPool rolls count dice with the given number of sides using src.
//
// Precondition: count >= 0; sides >= 2; src must be non-nil.
// Postcondition: len(result.Dice) == count and every die is in [1, sides].
func RollPool(count, sides int, src Source) PoolResult {
	if sides < 2 {
		panic("dice: RollPool called with sides < 2")
	}
	rolled := make([]int, count)
	for i := range rolled {
		rolled[i] = src.Intn(sides) + 1
	}
	return PoolResult{Sides: sides, Dice: rolled}
}
