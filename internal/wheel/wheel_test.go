package wheel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "Ada", Label("Ada"))
	assert.Equal(t, "Exactly15Chars!", Label("Exactly15Chars!"))
	assert.Equal(t, "Bartholomew Fit...", Label("Bartholomew Fitzgerald"))
	assert.Equal(t, strings.Repeat("Å", 15)+"...", Label(strings.Repeat("Å", 16)))
}

func TestBuild(t *testing.T) {
	roster := []engine.Participant{{Name: "Cap", IsCaptain: true}}
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		roster = append(roster, engine.Participant{Name: n})
	}
	s := engine.NewSession(roster)

	idle := Build(s)
	require.Len(t, idle.Items, 6)
	assert.False(t, idle.Spinning)
	assert.Equal(t, idle.Items[0].Color, idle.Items[5].Color)
	assert.NotEqual(t, idle.Items[0].Color, idle.Items[1].Color)

	s.Phase = engine.PhaseSpinning
	s.Selected = 4
	spinning := Build(s)
	assert.True(t, spinning.Spinning)
	assert.Equal(t, 4, spinning.TargetIndex)

	s.Phase = engine.PhasePending
	pending := Build(s)
	assert.False(t, pending.Spinning)
	assert.Equal(t, 4, pending.TargetIndex)
}
