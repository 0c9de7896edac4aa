// Package wheel describes what the client's spinning wheel renders. The wheel
// is cosmetic: it lands on a target the engine already chose and reports back
// when the animation ends.
package wheel

import "github.com/DoyleJ11/team-draft-backend/internal/engine"

const maxLabelRunes = 15

var palette = []string{"#FFD6D6", "#D6E4FF", "#FFE4CC", "#D6FFD6", "#E6D6FF"}

type Segment struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

type View struct {
	Items       []Segment `json:"items"`
	TargetIndex int       `json:"targetIndex"`
	Spinning    bool      `json:"spinning"`
}

// Build renders the wheel for the current pool.
func Build(s engine.Session) View {
	v := View{
		Items:    make([]Segment, len(s.Draft.AvailablePool)),
		Spinning: s.Phase == engine.PhaseSpinning,
	}
	for i, p := range s.Draft.AvailablePool {
		v.Items[i] = Segment{Label: Label(p.Name), Color: palette[i%len(palette)]}
	}
	if s.Phase == engine.PhaseSpinning || s.Phase == engine.PhasePending {
		v.TargetIndex = s.Selected
	}
	return v
}

func Label(name string) string {
	r := []rune(name)
	if len(r) <= maxLabelRunes {
		return name
	}
	return string(r[:maxLabelRunes]) + "..."
}
