package combat

import (
	"fmt"

	"github.com/cory-johannsen/helios/internal/game/unit"
)

// RetreatAnnouncement records one side's declared retreat for the current
// round, distinguishing "announced" from "already executed".
type RetreatAnnouncement struct {
	// ParticipantID is the announcing side.
	ParticipantID string
	// Destination is the validated destination system.
	Destination string
	// Executed is true once the retreat has been physically performed.
	Executed bool
}

// RetreatManager validates retreat announcements and executes unit
// relocation for one combat round. A fresh manager is created each round:
// announcements do not carry over.
//
// Invariant: at most one announcement per round, and once the defender
// announces, the attacker's announcement is rejected for that round.
type RetreatManager struct {
	gs           GameState
	systemID     string
	announcement *RetreatAnnouncement
	announcedBy  Role
}

// NewRetreatManager creates a RetreatManager for the combat in systemID.
//
// Precondition: gs must be non-nil; systemID must be the combat location.
func NewRetreatManager(gs GameState, systemID string) *RetreatManager {
	return &RetreatManager{gs: gs, systemID: systemID}
}

// Announcement returns the round's announcement, or nil when none was made.
func (m *RetreatManager) Announcement() *RetreatAnnouncement {
	return m.announcement
}

// EligibleDestinations returns every system p could legally retreat to:
// adjacent to the combat location, empty or friendly to the retreating side,
// and not a system the side's units most recently arrived from unless the
// side already has units there.
//
// Postcondition: Returns a sorted subset of the adjacent systems.
func (m *RetreatManager) EligibleDestinations(p Participant) []string {
	var eligible []string
	for _, dest := range m.gs.AdjacentSystems(m.systemID) {
		if m.validateDestination(p, dest) == nil {
			eligible = append(eligible, dest)
		}
	}
	return eligible
}

// Announce records p's intent to retreat to destination.
//
// Precondition: destination must be an eligible destination for p.
// Postcondition: Returns ErrRetreatNotEligible when the attacker announces
// after the defender, when the side has already announced, or when the side
// has no eligible destination; returns ErrInvalidRetreatTarget when the
// destination itself is illegal. On success the announcement is recorded.
func (m *RetreatManager) Announce(p Participant, destination string) error {
	if m.announcement != nil {
		if m.announcedBy == RoleDefender && p.Role == RoleAttacker {
			return fmt.Errorf("attacker may not announce after the defender: %w", ErrRetreatNotEligible)
		}
		return fmt.Errorf("side %q already announced this round: %w", m.announcement.ParticipantID, ErrRetreatNotEligible)
	}
	if len(m.EligibleDestinations(p)) == 0 {
		return fmt.Errorf("side %q has no eligible destination: %w", p.ID, ErrRetreatNotEligible)
	}
	if err := m.validateDestination(p, destination); err != nil {
		return err
	}
	m.announcement = &RetreatAnnouncement{ParticipantID: p.ID, Destination: destination}
	m.announcedBy = p.Role
	return nil
}

// validateDestination checks a single candidate destination for p.
func (m *RetreatManager) validateDestination(p Participant, destination string) error {
	if !m.gs.IsAdjacent(m.systemID, destination) {
		return fmt.Errorf("system %q is not adjacent to %q: %w", destination, m.systemID, ErrInvalidRetreatTarget)
	}
	if !m.gs.IsEmptyOrFriendly(destination, p.Players) {
		return fmt.Errorf("system %q is hostile-occupied: %w", destination, ErrInvalidRetreatTarget)
	}
	if m.isBarredOrigin(p, destination) {
		return fmt.Errorf("system %q is the origin the side arrived from and holds no friendly units: %w", destination, ErrInvalidRetreatTarget)
	}
	return nil
}

// isBarredOrigin reports whether destination is a system the side's units
// most recently arrived from. Re-entry is allowed when the side already has
// units there.
func (m *RetreatManager) isBarredOrigin(p Participant, destination string) bool {
	origin := false
	for _, u := range m.sideUnits(p) {
		if m.gs.LastArrivedFrom(u.ID) == destination {
			origin = true
			break
		}
	}
	if !origin {
		return false
	}
	for _, u := range m.gs.SpaceUnits(destination) {
		if p.Owns(u.Owner) {
			return false
		}
	}
	return true
}

// Execute physically performs p's announced retreat. Every unit with a
// positive move value is relocated to the destination; transportable units
// (fighters and ground forces) ride along up to the movers' combined
// capacity; everything else is removed from the combat area. If the opposing
// side already has zero units, the retreat is voided, not consumed, and
// nothing moves. On a successful physical retreat a command token is placed
// at the destination for each relocating owner.
//
// Precondition: p must be the announcing side.
// Postcondition: Returns the relocated and removed unit IDs; on a void both
// are nil and Executed stays false.
func (m *RetreatManager) Execute(p Participant, opposingUnits []*unit.Unit) (retreated, removed []string, err error) {
	if m.announcement == nil || m.announcement.ParticipantID != p.ID {
		return nil, nil, fmt.Errorf("side %q has no announced retreat: %w", p.ID, ErrRetreatNotEligible)
	}
	if m.announcement.Executed {
		return nil, nil, fmt.Errorf("retreat for side %q already executed: %w", p.ID, ErrRetreatNotEligible)
	}
	if len(opposingUnits) == 0 {
		// Opponent is gone: the retreat is voided, not consumed.
		return nil, nil, nil
	}

	dest := m.announcement.Destination
	var movers, riders, stranded []*unit.Unit
	capacity := 0
	for _, u := range m.sideUnits(p) {
		switch {
		case u.CanMove():
			movers = append(movers, u)
			capacity += u.Capacity
		case u.Class.Transportable():
			riders = append(riders, u)
		default:
			stranded = append(stranded, u)
		}
	}

	relocatedOwners := make(map[string]bool)
	for _, u := range movers {
		if err := m.gs.RelocateUnit(u.ID, dest); err != nil {
			return retreated, removed, fmt.Errorf("executing retreat: %w", err)
		}
		retreated = append(retreated, u.ID)
		relocatedOwners[u.Owner] = true
	}
	for _, u := range riders {
		if capacity > 0 {
			if err := m.gs.RelocateUnit(u.ID, dest); err != nil {
				return retreated, removed, fmt.Errorf("executing retreat: %w", err)
			}
			retreated = append(retreated, u.ID)
			relocatedOwners[u.Owner] = true
			capacity--
			continue
		}
		// No transport left: the unit cannot follow and is removed.
		if err := m.gs.RemoveUnit(u.ID); err != nil {
			return retreated, removed, fmt.Errorf("executing retreat: %w", err)
		}
		removed = append(removed, u.ID)
	}
	for _, u := range stranded {
		if err := m.gs.RemoveUnit(u.ID); err != nil {
			return retreated, removed, fmt.Errorf("executing retreat: %w", err)
		}
		removed = append(removed, u.ID)
	}

	m.announcement.Executed = true
	for owner := range relocatedOwners {
		m.gs.PlaceCommandToken(dest, owner)
	}
	return retreated, removed, nil
}

// sideUnits returns p's units currently in the combat system's space area.
func (m *RetreatManager) sideUnits(p Participant) []*unit.Unit {
	var out []*unit.Unit
	for _, u := range m.gs.SpaceUnits(m.systemID) {
		if p.Owns(u.Owner) {
			out = append(out, u)
		}
	}
	return out
}
