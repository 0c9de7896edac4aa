package engine

import "slices"

// Clone returns a deep copy so callers can mutate freely.
func (s State) Clone() State {
	out := State{
		Teams:           make([]Team, len(s.Teams)),
		AvailablePool:   slices.Clone(s.AvailablePool),
		ActiveTeamIndex: s.ActiveTeamIndex,
	}
	if out.AvailablePool == nil {
		out.AvailablePool = []Participant{}
	}
	for i, t := range s.Teams {
		members := slices.Clone(t.Members)
		if members == nil {
			members = []Participant{}
		}
		out.Teams[i] = Team{Captain: t.Captain, Members: members}
	}
	return out
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// DerivePhase reports the resting phase for a draft with no spin in flight.
func DerivePhase(s State) Phase {
	if s.Complete() {
		return PhaseComplete
	}
	return PhaseIdle
}

// Participants lists everyone in the draft: captains, members, then the pool.
func (s State) Participants() []Participant {
	var out []Participant
	for _, t := range s.Teams {
		out = append(out, t.Captain)
		out = append(out, t.Members...)
	}
	return append(out, s.AvailablePool...)
}
