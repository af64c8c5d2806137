// Package galaxy provides the Helios map model: systems, planets, adjacency,
// and the arena of live units. Units live in one collection keyed by ID;
// systems and planets hold only ID references, so ownership never cycles.
package galaxy

// System represents one map location where fleets meet and combat is evaluated.
type System struct {
	// ID uniquely identifies this system.
	ID string
	// Name is the short display name of the system.
	Name string
	// Adjacent lists the IDs of neighboring systems.
	Adjacent []string
	// Planets lists the IDs of planets inside this system.
	Planets []string
}

// IsAdjacentTo reports whether other is listed as a neighbor of this system.
//
// Postcondition: Returns true iff other appears in s.Adjacent.
func (s *System) IsAdjacentTo(other string) bool {
	for _, id := range s.Adjacent {
		if id == other {
			return true
		}
	}
	return false
}

// Planet represents a planet within a system, the scope of ground combat.
type Planet struct {
	// ID uniquely identifies this planet.
	ID string
	// SystemID is the system this planet belongs to.
	SystemID string
	// Name is the short display name of the planet.
	Name string
	// Controller is the player ID controlling the planet; empty = uncontrolled.
	Controller string
}
