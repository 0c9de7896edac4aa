package types

import (
	"github.com/DoyleJ11/team-draft-backend/internal/engine"
	"github.com/DoyleJ11/team-draft-backend/internal/lobby"
	"github.com/DoyleJ11/team-draft-backend/internal/wheel"
)

const (
	MsgStateSnapshot = "StateSnapshot"
	MsgError         = "Error"
)

type ClientMessage struct {
	Type string `json:"type"` // "Spin" | "SpinComplete" | "Confirm" | "Reset"
}

type ServerMessage struct {
	Type       string               `json:"type"` // "StateSnapshot" | "Error"
	Version    int                  `json:"version,omitempty"`
	Code       string               `json:"code,omitempty"`
	Session    *engine.Session      `json:"session,omitempty"`
	Wheel      *wheel.View          `json:"wheel,omitempty"`
	Balance    []engine.SkillCounts `json:"balance,omitempty"`
	TurnOrder  []string             `json:"turnOrder,omitempty"`
	ActiveTeam string               `json:"activeTeam,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// NewSnapshotMessage renders a lobby snapshot for the wire. Balance holds one
// SkillCounts per team, in team order.
func NewSnapshotMessage(snap lobby.Snapshot) ServerMessage {
	session := snap.Session
	w := snap.Wheel

	balance := make([]engine.SkillCounts, len(session.Draft.Teams))
	for i, team := range session.Draft.Teams {
		balance[i] = engine.CountSkills(team)
	}

	msg := ServerMessage{
		Type:      MsgStateSnapshot,
		Version:   snap.Version,
		Code:      snap.Code,
		Session:   &session,
		Wheel:     &w,
		Balance:   balance,
		TurnOrder: engine.TurnOrder(session.Draft),
	}
	if team, ok := session.Draft.ActiveTeam(); ok && !session.Draft.Complete() {
		msg.ActiveTeam = team.Captain.Name
	}
	return msg
}

func NewErrorMessage(err error) ServerMessage {
	return ServerMessage{Type: MsgError, Error: err.Error()}
}
