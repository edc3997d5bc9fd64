// Package duel implements the simultaneous-choice variant: both players
// act in the same round, which resolves once both choices are in.
package duel

import (
	"maps"

	"gameroom/internal/game"
)

// Choice is one of the three symbols in the cyclic beats relation.
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// beats maps each choice to the choice it defeats.
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Paper:    Rock,
	Scissors: Paper,
}

// Duel implements game.Variant.
type Duel struct{}

func (Duel) Info() game.Info {
	return game.Info{Name: "duel", MinPlayers: 2, MaxPlayers: 2}
}

func (Duel) NewState(players []int64) game.State {
	st := &State{
		Choices: make(map[int64]Choice, len(players)),
		Scores:  make(map[int64]int, len(players)),
	}
	for _, id := range players {
		st.Scores[id] = 0
	}
	return st
}

// State holds pending choices and cumulative scores.
type State struct {
	Choices         map[int64]Choice `json:"-"` // pending, cleared each round
	Scores          map[int64]int    `json:"scores"`
	Round           int              `json:"round"`
	LastRoundWinner *int64           `json:"lastRoundWinner,omitempty"`
}

type stateView struct {
	Scores          map[int64]int   `json:"scores"`
	Round           int             `json:"round"`
	LastRoundWinner *int64          `json:"lastRoundWinner,omitempty"`
	Chosen          []int64         `json:"chosen"` // who has a pending choice, not what it is
}

// AddPlayer starts a late joiner at zero. Unreachable in practice since
// a duel fills at its minimum, but the interface requires it.
func (st *State) AddPlayer(user int64) {
	st.Scores[user] = 0
}

func (st *State) Snapshot() any {
	chosen := make([]int64, 0, len(st.Choices))
	for id := range st.Choices {
		chosen = append(chosen, id)
	}
	return stateView{
		Scores:          maps.Clone(st.Scores),
		Round:           st.Round,
		LastRoundWinner: st.LastRoundWinner,
		Chosen:          chosen,
	}
}

// FinishWinner picks the higher cumulative score. Equal scores are a draw.
func (st *State) FinishWinner(players []int64) (int64, bool) {
	var winner int64
	best := -1
	tied := false
	for _, id := range players {
		switch score := st.Scores[id]; {
		case score > best:
			winner, best, tied = id, score, false
		case score == best:
			tied = true
		}
	}
	if tied {
		return 0, false
	}
	return winner, true
}

// Result reports what a submitted choice did to the round.
type Result struct {
	Resolved    bool   `json:"resolved"`
	Round       int    `json:"round,omitempty"`       // the round just resolved
	RoundWinner *int64 `json:"roundWinner,omitempty"` // nil = tie when resolved
}

// Submit records a pending choice and resolves the round once both
// players have one. Scores persist across rounds; choices do not.
func Submit(s *game.Session, user int64, choice Choice) (Result, error) {
	if _, ok := beats[choice]; !ok {
		return Result{}, game.Validation(game.CodeInvalidChoice, "unknown choice %q", choice)
	}
	s.Lock()
	defer s.Unlock()
	if err := s.EnsurePlayingLocked(user); err != nil {
		return Result{}, err
	}
	st := s.State.(*State)
	if _, dup := st.Choices[user]; dup {
		return Result{}, game.Conflict(game.CodeAlreadyActed, "user %d already chose this round", user)
	}
	st.Choices[user] = choice

	if len(st.Choices) < len(s.Players) {
		return Result{}, nil
	}

	a, b := s.Players[0], s.Players[1]
	res := Result{Resolved: true, Round: st.Round + 1}
	switch {
	case st.Choices[a] == st.Choices[b]:
		// tie, no score change
	case beats[st.Choices[a]] == st.Choices[b]:
		st.Scores[a]++
		res.RoundWinner = &a
	default:
		st.Scores[b]++
		res.RoundWinner = &b
	}
	st.LastRoundWinner = res.RoundWinner
	st.Round++
	st.Choices = make(map[int64]Choice, len(s.Players))
	return res, nil
}
