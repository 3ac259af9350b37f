package roles

// Enumerate returns every Assignment of roles to the given players that
// satisfies the dealing rules: one Hitler, FascistCount(n) fascists,
// and the rest liberals. Assignments are produced Hitler-major, in
// seating order, with fascists chosen as order-independent combinations.
func Enumerate(players []string) ([]Assignment, error) {
	seats, err := newSeating(players)
	if err != nil {
		return nil, err
	}

	nFascists, _ := FascistCount(len(players))
	n, _ := CountAssignments(len(players))
	result := make([]Assignment, 0, n)
	enumerateFunc(seats, nFascists, func(roles []Role) {
		result = append(result, Assignment{seats: seats, roles: roles})
	})

	return result, nil
}

// enumerateFunc calls cb with the role slice of each valid assignment.
// Each slice passed to cb is freshly allocated and owned by the callee.
func enumerateFunc(seats *seating, nFascists int, cb func(roles []Role)) {
	n := len(seats.names)
	for hitler := 0; hitler < n; hitler++ {
		current := make([]Role, n)
		for i := range current {
			current[i] = Liberal
		}
		current[hitler] = Hitler
		chooseFascists(current, 0, nFascists, cb)
	}
}

// chooseFascists fills the remaining fascist seats among positions
// >= start, recursing over combinations without repetition.
func chooseFascists(current []Role, start, remaining int, cb func(roles []Role)) {
	if remaining == 0 {
		cb(append([]Role(nil), current...))
		return
	}

	for i := start; i < len(current); i++ {
		// Not enough seats left to place the remaining fascists.
		if len(current)-i < remaining {
			return
		}
		if current[i] != Liberal {
			continue
		}

		current[i] = Fascist
		chooseFascists(current, i+1, remaining-1, cb)
		current[i] = Liberal
	}
}

// CountAssignments returns the number of valid assignments for a game
// with the given number of players: n * C(n-1, fascists).
func CountAssignments(numPlayers int) (int, error) {
	nFascists, err := FascistCount(numPlayers)
	if err != nil {
		return 0, err
	}

	return numPlayers * binomial(numPlayers-1, nFascists), nil
}

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}

	result := 1
	for i := 1; i <= k; i++ {
		result = result * (n - k + i) / i
	}
	return result
}
