package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// All pools are logged at debug level with die count, sides, and results.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each pool to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn returns a random int in [0, n) from the wrapped Source, so a Roller can
// itself be used wherever a Source is expected.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// Pool rolls count dice with the given sides and logs the result at debug level.
//
// Precondition: count >= 0; sides >= 2.
// Postcondition: result logged; returns the rolled PoolResult.
func (r *Roller) Pool(count, sides int) PoolResult {
	result := RollPool(count, sides, r.src)
	r.logger.Debug("dice pool",
		zap.Int("count", count),
		zap.Int("sides", sides),
		zap.Ints("dice", result.Dice),
	)
	return result
}
