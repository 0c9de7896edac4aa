package engine

import (
	"errors"
	"slices"
)

var ErrDraftComplete = errors.New("draft already completed")
var ErrNoCaptains = errors.New("roster has no captains")
var ErrIndexOutOfRange = errors.New("selection index out of range")
var ErrWrongTurn = errors.New("invalid turn")
var ErrSelectionPending = errors.New("a selection is already in progress")
var ErrNotSpinning = errors.New("no spin in progress")
var ErrNoPendingSelection = errors.New("no selection awaiting confirmation")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSpinning Phase = "spinning"
	PhasePending  Phase = "pending"
	PhaseComplete Phase = "complete"
)

// Session is one draft run: the roster it was built from, the draft itself
// and where the select -> confirm -> commit sequence stands. Selected is only
// meaningful while spinning or pending.
type Session struct {
	Roster   []Participant `json:"roster"`
	Draft    State         `json:"draft"`
	Phase    Phase         `json:"phase"`
	Selected int           `json:"selected"`
}

type CommandType string

const (
	CmdSpin         CommandType = "Spin"
	CmdSpinComplete CommandType = "SpinComplete"
	CmdConfirm      CommandType = "Confirm"
	CmdReset        CommandType = "Reset"
	CmdLoadRoster   CommandType = "LoadRoster"
)

/*
	CmdSpin         -> EvtCandidateSelected
	CmdSpinComplete -> EvtSpinCompleted
	CmdConfirm      -> EvtParticipantDrafted -> EvtTurnAdvanced (-> EvtDraftCompleted)
	CmdReset        -> EvtDraftReset
	CmdLoadRoster   -> EvtRosterLoaded
*/

type Command struct {
	Type   CommandType
	Roster []Participant // CmdLoadRoster only
}

type EventType string

const (
	EvtCandidateSelected  EventType = "CandidateSelected"
	EvtSpinCompleted      EventType = "SpinCompleted"
	EvtParticipantDrafted EventType = "ParticipantDrafted"
	EvtTurnAdvanced       EventType = "TurnAdvanced"
	EvtDraftCompleted     EventType = "DraftCompleted"
	EvtDraftReset         EventType = "DraftReset"
	EvtRosterLoaded       EventType = "RosterLoaded"
)

type Event struct {
	Type        EventType
	Index       int
	Participant string
	Team        string // captain name
	Roster      []Participant
}

func NewSession(roster []Participant) Session {
	s := Session{Roster: slices.Clone(roster), Draft: Initialize(roster)}
	s.Phase = DerivePhase(s.Draft)
	return s
}

// Restore wraps a previously saved draft. Any in-flight spin is lost.
func Restore(roster []Participant, draft State) Session {
	s := Session{Roster: slices.Clone(roster), Draft: draft.Clone()}
	s.Phase = DerivePhase(s.Draft)
	return s
}

func Apply(s Session, cmd Command, rng Rand) ([]Event, Session, error) {
	newSession := s

	switch cmd.Type {
	case CmdSpin:
		switch s.Phase {
		case PhaseComplete:
			return nil, s, ErrDraftComplete
		case PhaseSpinning, PhasePending:
			return nil, s, ErrSelectionPending
		}
		if len(s.Draft.Teams) == 0 {
			return nil, s, ErrNoCaptains
		}

		idx, ok := SelectCandidate(s.Draft, rng)
		if !ok {
			return nil, s, ErrDraftComplete
		}

		newSession.Selected = idx
		newSession.Phase = PhaseSpinning
		events := []Event{
			{Type: EvtCandidateSelected, Index: idx, Participant: s.Draft.AvailablePool[idx].Name},
		}
		return events, newSession, nil

	case CmdSpinComplete:
		if s.Phase != PhaseSpinning {
			return nil, s, ErrNotSpinning
		}
		newSession.Phase = PhasePending
		return []Event{{Type: EvtSpinCompleted, Index: s.Selected}}, newSession, nil

	case CmdConfirm:
		switch s.Phase {
		case PhaseComplete:
			return nil, s, ErrDraftComplete
		case PhasePending:
		default:
			return nil, s, ErrNoPendingSelection
		}

		draft, err := Commit(s.Draft, s.Selected)
		if err != nil {
			return nil, s, err
		}
		team := s.Draft.Teams[s.Draft.ActiveTeamIndex]
		picked := s.Draft.AvailablePool[s.Selected]

		events := []Event{
			{Type: EvtParticipantDrafted, Index: s.Selected, Participant: picked.Name, Team: team.Captain.Name},
			{Type: EvtTurnAdvanced},
		}

		newSession.Draft = draft
		newSession.Selected = 0
		newSession.Phase = DerivePhase(draft)

		// Completion
		if newSession.Phase == PhaseComplete {
			events = append(events, Event{Type: EvtDraftCompleted})
		}
		return events, newSession, nil

	case CmdReset:
		newSession.Draft = Reset(s.Roster)
		newSession.Selected = 0
		newSession.Phase = DerivePhase(newSession.Draft)
		return []Event{{Type: EvtDraftReset}}, newSession, nil

	case CmdLoadRoster:
		newSession = NewSession(cmd.Roster)
		return []Event{{Type: EvtRosterLoaded, Roster: slices.Clone(cmd.Roster)}}, newSession, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// Reduce replays events on top of a fresh session for roster.
func Reduce(roster []Participant, events []Event) Session {
	s := NewSession(roster)
	for _, event := range events {
		switch event.Type {
		case EvtCandidateSelected:
			s.Selected = event.Index
			s.Phase = PhaseSpinning
		case EvtSpinCompleted:
			s.Phase = PhasePending
		case EvtParticipantDrafted:
			// Commit also passes the turn, so EvtTurnAdvanced has nothing left to do.
			if draft, err := Commit(s.Draft, event.Index); err == nil {
				s.Draft = draft
			}
			s.Selected = 0
			s.Phase = DerivePhase(s.Draft)
		case EvtDraftCompleted:
			s.Phase = PhaseComplete
		case EvtDraftReset:
			s.Draft = Reset(s.Roster)
			s.Selected = 0
			s.Phase = DerivePhase(s.Draft)
		case EvtRosterLoaded:
			s = NewSession(event.Roster)
		}
	}
	return s
}
