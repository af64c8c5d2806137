package combat

// EventType identifies what a combat Event records.
type EventType int

const (
	// EventBarrageRolled records one side's anti-fighter barrage dice.
	EventBarrageRolled EventType = iota
	// EventRetreatAnnounced records a validated retreat announcement.
	EventRetreatAnnounced
	// EventDiceRolled records one side's combat dice for a round.
	EventDiceRolled
	// EventUnitSustained records a hit cancelled by sustain damage.
	EventUnitSustained
	// EventUnitDestroyed records a unit destroyed by an assigned hit.
	EventUnitDestroyed
	// EventRetreatExecuted records a physically executed retreat.
	EventRetreatExecuted
	// EventRetreatVoided records an announced retreat skipped because the
	// opposing side had no units left at execution time.
	EventRetreatVoided
	// EventOverflowRemoved records a unit removed by post-combat capacity cleanup.
	EventOverflowRemoved
	// EventCombatEnded records the terminal outcome.
	EventCombatEnded
)

// String returns the event type's canonical name.
func (t EventType) String() string {
	switch t {
	case EventBarrageRolled:
		return "barrage_rolled"
	case EventRetreatAnnounced:
		return "retreat_announced"
	case EventDiceRolled:
		return "dice_rolled"
	case EventUnitSustained:
		return "unit_sustained"
	case EventUnitDestroyed:
		return "unit_destroyed"
	case EventRetreatExecuted:
		return "retreat_executed"
	case EventRetreatVoided:
		return "retreat_voided"
	case EventOverflowRemoved:
		return "overflow_removed"
	case EventCombatEnded:
		return "combat_ended"
	default:
		return "unknown"
	}
}

// Event records one thing that happened during combat resolution. The ordered
// event slice on a Result is the full audit trail of the combat.
type Event struct {
	// Round is the round number the event occurred in.
	Round int
	// Step is the step the event occurred in.
	Step Step
	// Type identifies what happened.
	Type EventType
	// ParticipantID is the side the event concerns.
	ParticipantID string
	// UnitID is the unit the event concerns, when it concerns one.
	UnitID string
	// Rolls holds die faces for roll events.
	Rolls []int
	// Hits is the hit count for roll events.
	Hits int
	// Narrative is a human-readable description.
	Narrative string
}
