package engine

type SkillCategory string

const (
	SkillFrontend  SkillCategory = "frontend"
	SkillBackend   SkillCategory = "backend"
	SkillMobile    SkillCategory = "mobile"
	SkillFullstack SkillCategory = "fullstack"
)

// Participant is identified by Name.
type Participant struct {
	Name          string        `json:"name"`
	Department    string        `json:"department"`
	RawSkills     string        `json:"rawSkills"`
	SkillCategory SkillCategory `json:"skillCategory"`
	IsCaptain     bool          `json:"isCaptain"`
	Email         string        `json:"email"`
}

type Team struct {
	Captain Participant   `json:"captain"`
	Members []Participant `json:"members"`
}

// State is the persisted draft. A participant lives in exactly one place:
// the pool or one team's members.
type State struct {
	Teams           []Team        `json:"teams"`
	AvailablePool   []Participant `json:"availablePool"`
	ActiveTeamIndex int           `json:"activeTeamIndex"`
}

type SkillCounts struct {
	Frontend  int `json:"frontend"`
	Backend   int `json:"backend"`
	Mobile    int `json:"mobile"`
	Fullstack int `json:"fullstack"`
}

// Rand is the random source used by SelectCandidate.
type Rand interface {
	Intn(n int) int
}

// Initialize builds a fresh draft: one team per captain, everyone else in the
// pool, input order preserved.
func Initialize(participants []Participant) State {
	s := State{
		Teams:         []Team{},
		AvailablePool: []Participant{},
	}
	for _, p := range participants {
		if p.IsCaptain {
			s.Teams = append(s.Teams, Team{Captain: p, Members: []Participant{}})
			continue
		}
		s.AvailablePool = append(s.AvailablePool, p)
	}
	return s
}

// Reset discards all progress and rebuilds from the roster.
func Reset(roster []Participant) State {
	return Initialize(roster)
}

func (s State) Complete() bool {
	return len(s.AvailablePool) == 0
}

// ActiveTeam returns the team whose turn it is.
func (s State) ActiveTeam() (Team, bool) {
	if s.ActiveTeamIndex < 0 || s.ActiveTeamIndex >= len(s.Teams) {
		return Team{}, false
	}
	return s.Teams[s.ActiveTeamIndex], true
}

func CountSkills(team Team) SkillCounts {
	var c SkillCounts
	for _, m := range team.Members {
		switch m.SkillCategory {
		case SkillFrontend:
			c.Frontend++
		case SkillBackend:
			c.Backend++
		case SkillMobile:
			c.Mobile++
		case SkillFullstack:
			c.Fullstack++
		}
	}
	return c
}

func (s State) ActiveBalance() SkillCounts {
	team, ok := s.ActiveTeam()
	if !ok {
		return SkillCounts{}
	}
	return CountSkills(team)
}

// PreferredPool returns the pool indices that best balance the active team.
// A team short on frontend gets frontend candidates, short on backend gets
// backend, and an even team gets fullstack. Mobile participants never match
// here and are only reachable through the full-pool fallback.
func PreferredPool(s State) []int {
	balance := s.ActiveBalance()
	needsFrontend := balance.Frontend < balance.Backend
	needsBackend := balance.Backend < balance.Frontend

	var out []int
	for i, p := range s.AvailablePool {
		switch {
		case needsFrontend:
			if p.SkillCategory == SkillFrontend {
				out = append(out, i)
			}
		case needsBackend:
			if p.SkillCategory == SkillBackend {
				out = append(out, i)
			}
		default:
			if p.SkillCategory == SkillFullstack {
				out = append(out, i)
			}
		}
	}
	return out
}

// SelectCandidate picks uniformly from the preferred pool, or from the whole
// pool when nothing is preferred. The index is into AvailablePool.
func SelectCandidate(s State, rng Rand) (int, bool) {
	if s.Complete() || len(s.Teams) == 0 {
		return 0, false
	}

	candidates := PreferredPool(s)
	if len(candidates) == 0 {
		candidates = make([]int, len(s.AvailablePool))
		for i := range candidates {
			candidates[i] = i
		}
	}
	return candidates[rng.Intn(len(candidates))], true
}

// Commit moves the pool participant at index onto the active team and passes
// the turn. The returned state shares no slices with s.
func Commit(s State, index int) (State, error) {
	if s.Complete() {
		return s, ErrDraftComplete
	}
	if len(s.Teams) == 0 {
		return s, ErrNoCaptains
	}
	if _, ok := s.ActiveTeam(); !ok {
		return s, ErrWrongTurn
	}
	if index < 0 || index >= len(s.AvailablePool) {
		return s, ErrIndexOutOfRange
	}

	next := s.Clone()
	picked := next.AvailablePool[index]
	next.AvailablePool = append(next.AvailablePool[:index], next.AvailablePool[index+1:]...)

	active := next.ActiveTeamIndex
	next.Teams[active].Members = append(next.Teams[active].Members, picked)
	next.ActiveTeamIndex = NextTeam(active, len(next.Teams))
	return next, nil
}
