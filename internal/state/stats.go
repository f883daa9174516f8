package state

func (s State) refreshStats() (State, []Effect) {
	s, token := s.nextToken()
	s.Stats.Token = token
	s.Stats.Loading = true
	return s, []Effect{FetchStats{Token: token}}
}

// statsLoaded replaces the aggregates wholesale. A failed refresh keeps the
// previous numbers without bothering the user.
func (s State) statsLoaded(a StatsLoaded) State {
	if a.Token != s.Stats.Token {
		return s
	}
	s.Stats.Loading = false
	if a.Err != nil {
		return s
	}
	s.Stats.Stats = a.Stats
	s.Stats.Loaded = true
	return s
}
