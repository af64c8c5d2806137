package unit

// Unit is a live unit instance occupying a system or planet. It is a view
// onto game state: the combat engine reads its capability fields and issues
// mutation commands through the game-state collaborator, never directly.
type Unit struct {
	// ID uniquely identifies this runtime instance.
	ID string
	// TemplateID is the source template's ID.
	TemplateID string
	// Name is copied from the template for display.
	Name string
	// Owner is the player ID that controls this unit.
	Owner string
	// Class is the unit's combat role.
	Class Class
	// CombatThreshold is the minimum die value that scores a combat hit.
	CombatThreshold int
	// CombatDice is the number of combat dice rolled per round.
	CombatDice int
	// BarrageThreshold is the anti-fighter barrage hit threshold; zero = none.
	BarrageThreshold int
	// BarrageDice is the number of barrage dice rolled in round one.
	BarrageDice int
	// SustainCapacity is the number of hits one sustain use cancels; zero = none.
	SustainCapacity int
	// Damaged is true once the unit has sustained damage. A damaged unit keeps
	// all other capabilities but cannot sustain again until repaired.
	Damaged bool
	// Move is the unit's move value; zero means it cannot retreat on its own.
	Move int
	// Capacity is the number of transportable units this unit can carry.
	Capacity int
}

// New creates a live unit instance from a template, owned by owner.
//
// Precondition: id and owner must be non-empty; tmpl must be non-nil.
// Postcondition: The unit starts undamaged with the template's stat line.
func New(id string, tmpl *Template, owner string) *Unit {
	return &Unit{
		ID:               id,
		TemplateID:       tmpl.ID,
		Name:             tmpl.Name,
		Owner:            owner,
		Class:            tmpl.Class,
		CombatThreshold:  tmpl.CombatThreshold,
		CombatDice:       tmpl.CombatDice,
		BarrageThreshold: tmpl.BarrageThreshold,
		BarrageDice:      tmpl.BarrageDice,
		SustainCapacity:  tmpl.SustainCapacity,
		Move:             tmpl.Move,
		Capacity:         tmpl.Capacity,
	}
}

// CanSustain reports whether the unit may cancel a hit with sustain damage.
//
// Postcondition: Returns true iff SustainCapacity > 0 and the unit is
// undamaged.
func (u *Unit) CanSustain() bool {
	return u.SustainCapacity > 0 && !u.Damaged
}

// CanMove reports whether the unit can relocate on its own during a retreat.
func (u *Unit) CanMove() bool {
	return u.Move > 0
}

// HasBarrage reports whether the unit rolls anti-fighter barrage dice.
func (u *Unit) HasBarrage() bool {
	return u.BarrageThreshold > 0 && u.BarrageDice > 0
}
