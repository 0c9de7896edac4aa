package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

var ErrNotFound = errors.New("draft not found")
var ErrCorruptState = errors.New("stored draft is corrupt")
var ErrInvalidInput = errors.New("input and code cannot be empty")

const (
	// The browser version kept its state under this fixed key; one per draft here.
	draftKeyPrefix  = "teamSelectorState:"
	rosterKeyPrefix = "teamSelectorRoster:"
	draftsSetKey    = "teamSelectorDrafts"
)

type SaveDraftInput struct {
	Code  string
	State engine.State
}

type GetDraftInput struct {
	Code string
}

type SaveRosterInput struct {
	Code   string
	Roster []engine.Participant
}

type GetRosterInput struct {
	Code string
}

type DeleteDraftInput struct {
	Code string
}

func DraftKey(code string) string  { return draftKeyPrefix + code }
func RosterKey(code string) string { return rosterKeyPrefix + code }

func decodeDraft(data []byte) (*engine.State, error) {
	var s engine.State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if err := validateDraft(s); err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeRoster(data []byte) ([]engine.Participant, error) {
	var r []engine.Participant
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return r, nil
}

// validateDraft rejects decoded states the engine could not resume from.
func validateDraft(s engine.State) error {
	if len(s.Teams) == 0 {
		if s.ActiveTeamIndex != 0 {
			return fmt.Errorf("%w: active team %d with no teams", ErrCorruptState, s.ActiveTeamIndex)
		}
		return nil
	}
	if s.ActiveTeamIndex < 0 || s.ActiveTeamIndex >= len(s.Teams) {
		return fmt.Errorf("%w: active team %d of %d", ErrCorruptState, s.ActiveTeamIndex, len(s.Teams))
	}
	seen := map[string]bool{}
	for _, p := range s.Participants() {
		if seen[p.Name] {
			return fmt.Errorf("%w: %q appears twice", ErrCorruptState, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
