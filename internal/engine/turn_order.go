package engine

// NextTeam is the team after current in a round-robin of n teams.
func NextTeam(current, n int) int {
	if n <= 0 {
		return 0
	}
	return (current + 1) % n
}

// TurnOrder lists the captains in the order they pick, starting with the
// active one.
func TurnOrder(s State) []string {
	order := make([]string, 0, len(s.Teams))
	if _, ok := s.ActiveTeam(); !ok {
		return order
	}
	idx := s.ActiveTeamIndex
	for range s.Teams {
		order = append(order, s.Teams[idx].Captain.Name)
		idx = NextTeam(idx, len(s.Teams))
	}
	return order
}
