package room

// Two fixed teams; enabling team mode distributes everyone across them.
var teamIDs = []string{"team-1", "team-2"}

func (r *Room) teamByID(id string) *Team {
	for _, t := range r.Teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ToggleTeamMode flips between classic and team play. Enabling creates the
// teams and distributes every teamless player; disabling drops all team
// state. Rejected once the game is running.
func (r *Room) ToggleTeamMode() bool {
	if r.IsStarted {
		return false
	}
	if r.Settings.Mode == ModeTeam {
		r.Settings.Mode = ModeClassic
		r.Teams = nil
		for _, p := range r.Players {
			p.TeamID = ""
		}
		return true
	}
	r.Settings.Mode = ModeTeam
	r.Teams = make([]*Team, 0, len(teamIDs))
	for _, id := range teamIDs {
		r.Teams = append(r.Teams, &Team{ID: id})
	}
	for _, p := range r.Players {
		if p.TeamID == "" {
			r.AddToLeastLoadedTeam(p.ID)
		}
	}
	return true
}

// AddToLeastLoadedTeam assigns the player to the team with the fewest
// members, ties broken by first-encountered order. No-op in classic mode or
// once the game has started.
func (r *Room) AddToLeastLoadedTeam(playerID string) bool {
	if r.Settings.Mode != ModeTeam || r.IsStarted {
		return false
	}
	p := r.Player(playerID)
	if p == nil || p.TeamID != "" {
		return false
	}
	var target *Team
	for _, t := range r.Teams {
		if target == nil || len(t.Members) < len(target.Members) {
			target = t
		}
	}
	if target == nil {
		return false
	}
	target.Members = append(target.Members, playerID)
	p.TeamID = target.ID
	return true
}

// RemoveFromTeam takes a player off their team. Rejected while the game is
// running.
func (r *Room) RemoveFromTeam(playerID string) bool {
	if r.IsStarted {
		return false
	}
	return r.RemoveFromTeamUnchecked(playerID)
}

// RemoveFromTeamUnchecked also serves the disconnect path, where membership
// must be cleaned up regardless of game state.
func (r *Room) RemoveFromTeamUnchecked(playerID string) bool {
	p := r.Player(playerID)
	for _, t := range r.Teams {
		for i, id := range t.Members {
			if id == playerID {
				t.Members = append(t.Members[:i], t.Members[i+1:]...)
				if p != nil {
					p.TeamID = ""
				}
				return true
			}
		}
	}
	return false
}

// SwitchTeam moves a player to the given team. Rejected while the game is
// running.
func (r *Room) SwitchTeam(playerID, teamID string) bool {
	if r.IsStarted || r.Settings.Mode != ModeTeam {
		return false
	}
	target := r.teamByID(teamID)
	p := r.Player(playerID)
	if target == nil || p == nil || p.TeamID == teamID {
		return false
	}
	r.RemoveFromTeamUnchecked(playerID)
	target.Members = append(target.Members, playerID)
	p.TeamID = target.ID
	return true
}

// TeamMembers returns the member ids of a team, nil for unknown ids.
func (r *Room) TeamMembers(teamID string) []string {
	if t := r.teamByID(teamID); t != nil {
		return t.Members
	}
	return nil
}
